package server

import (
	"net/http"

	"hr-bridge/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

// Read-only ledger endpoints. All reads are tenant-scoped; an unknown tenant
// returns an empty list, never an error.

func (s *Server) ListTenants(c echo.Context) error {
	ctx := c.Request().Context()
	tenants, err := s.tenants.ListTenants(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list tenants")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
	if tenants == nil {
		tenants = []string{}
	}
	return c.JSON(http.StatusOK, tenants)
}

func (s *Server) ListEvents(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "tenant_id is required",
		})
	}

	ctx := c.Request().Context()
	events, err := s.eventService.ListEvents(ctx, tenantID)
	if err != nil {
		log.WithError(err).WithField("tenant_id", tenantID).Error("Failed to list events")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
	if events == nil {
		events = []domain.HREvent{}
	}
	return c.JSON(http.StatusOK, events)
}

func (s *Server) ListAlerts(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "tenant_id is required",
		})
	}

	ctx := c.Request().Context()
	alerts, err := s.ruleService.ListAlerts(ctx, tenantID)
	if err != nil {
		log.WithError(err).WithField("tenant_id", tenantID).Error("Failed to list alerts")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

func (s *Server) ListERPSignals(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "tenant_id is required",
		})
	}

	ctx := c.Request().Context()
	signals, err := s.erpService.ListSignals(ctx, tenantID)
	if err != nil {
		log.WithError(err).WithField("tenant_id", tenantID).Error("Failed to list ERP signals")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
	if signals == nil {
		signals = []domain.ERPSignal{}
	}
	return c.JSON(http.StatusOK, signals)
}
