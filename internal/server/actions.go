package server

import (
	"net/http"

	"hr-bridge/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

// Intercepted recruiter actions. Each handler records a domain event and
// reports whether the append was stored or suppressed as a duplicate.

func (s *Server) Shortlist(c echo.Context) error {
	var req domain.ShortlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	event, stored, err := s.eventService.Shortlist(ctx, req)
	if err != nil {
		log.WithError(err).Error("Failed to record shortlist event")
		return s.actionError(c, err)
	}

	return s.actionResponse(c, event, stored)
}

func (s *Server) ScheduleInterview(c echo.Context) error {
	var req domain.InterviewScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	event, stored, err := s.eventService.ScheduleInterview(ctx, req)
	if err != nil {
		log.WithError(err).Error("Failed to record interview event")
		return s.actionError(c, err)
	}

	return s.actionResponse(c, event, stored)
}

func (s *Server) Hire(c echo.Context) error {
	var req domain.ShortlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	event, stored, err := s.eventService.Hire(ctx, req)
	if err != nil {
		log.WithError(err).Error("Failed to record hire event")
		return s.actionError(c, err)
	}

	return s.actionResponse(c, event, stored)
}

func (s *Server) InjectStuckCandidate(c echo.Context) error {
	var req domain.ShortlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	event, err := s.eventService.InjectStuckCandidate(ctx, req)
	if err != nil {
		log.WithError(err).Error("Failed to inject stuck candidate")
		return s.actionError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"status":    "injected_old_shortlisted_event",
		"event_id":  event.EventID,
		"timestamp": event.Timestamp,
	})
}

func (s *Server) actionResponse(c echo.Context, event *domain.HREvent, stored bool) error {
	if !stored {
		return c.JSON(http.StatusOK, map[string]string{
			"status":   "duplicate_suppressed",
			"event_id": event.EventID,
		})
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"status":   "success",
		"event_id": event.EventID,
	})
}

func (s *Server) actionError(c echo.Context, err error) error {
	switch err {
	case domain.ErrTenantRequired, domain.ErrEntityRequired:
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
