package server

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"hr-bridge/internal/domain"
	"hr-bridge/internal/repository"
	"hr-bridge/internal/service"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

type Server struct {
	eventService service.EventServiceInterface
	ruleService  *service.RuleService
	erpService   *service.ERPService
	orchestrator *service.SyncOrchestrator
	tenants      repository.TenantLister
	db           *sql.DB
}

// NewServer wires HTTP handlers to the domain services. db may be nil when
// the service runs on in-memory ledgers; the health check then reports
// healthy without a ping.
func NewServer(
	eventService service.EventServiceInterface,
	ruleService *service.RuleService,
	erpService *service.ERPService,
	orchestrator *service.SyncOrchestrator,
	tenants repository.TenantLister,
	db *sql.DB,
) *Server {
	return &Server{
		eventService: eventService,
		ruleService:  ruleService,
		erpService:   erpService,
		orchestrator: orchestrator,
		tenants:      tenants,
		db:           db,
	}
}

func (s *Server) HealthCheck(c echo.Context) error {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			log.WithField("error", err).Error("Health check failed: database is down")
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "database connection error",
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "HR Event Bridge (Multi-tenant) Operational",
	})
}

// Process runs the full evaluation pass: rule engine then ERP mapper for
// every tenant partition. Per-tenant failures land in the report, not in the
// response status.
func (s *Server) Process(c echo.Context) error {
	ctx := c.Request().Context()

	reports, err := s.orchestrator.RunAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to run processing pass")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "processing pass failed",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "Processing Complete",
		"timestamp": time.Now().UTC(),
		"tenants":   reports,
	})
}

func (s *Server) ExplainEntity(c echo.Context) error {
	entityID := c.Param("entity_id")
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "tenant_id is required",
		})
	}

	ctx := c.Request().Context()
	explanation, err := s.eventService.ExplainEntity(ctx, tenantID, entityID)
	if err != nil {
		if errors.Is(err, domain.ErrNoHistory) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "no history found for this entity in this tenant",
			})
		}
		log.WithError(err).WithFields(log.Fields{
			"tenant_id": tenantID,
			"entity_id": entityID,
		}).Error("Failed to explain entity")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, explanation)
}
