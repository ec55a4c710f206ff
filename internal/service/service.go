package service

import (
	"context"
	"fmt"
	"time"

	"hr-bridge/internal/domain"
	"hr-bridge/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const stuckCandidateBackdate = 4 * 24 * time.Hour

type EventServiceInterface interface {
	RecordEvent(ctx context.Context, req domain.RecordEventRequest) (*domain.HREvent, bool, error)
	Shortlist(ctx context.Context, req domain.ShortlistRequest) (*domain.HREvent, bool, error)
	ScheduleInterview(ctx context.Context, req domain.InterviewScheduleRequest) (*domain.HREvent, bool, error)
	Hire(ctx context.Context, req domain.ShortlistRequest) (*domain.HREvent, bool, error)
	InjectStuckCandidate(ctx context.Context, req domain.ShortlistRequest) (*domain.HREvent, error)
	ListEvents(ctx context.Context, tenantID string) ([]domain.HREvent, error)
	ExplainEntity(ctx context.Context, tenantID, entityID string) (*domain.EntityExplanation, error)
}

// EventService is the ingestion boundary: it stamps identity and time onto
// producer input and appends it to the tenant's event log.
type EventService struct {
	events repository.EventRepository
	alerts repository.AlertRepository
}

func NewEventService(events repository.EventRepository, alerts repository.AlertRepository) *EventService {
	return &EventService{events: events, alerts: alerts}
}

// RecordEvent appends a domain event to its tenant partition. The second
// return value reports whether the event was stored; false means an event
// with the same idempotency key already exists and the append was
// suppressed.
func (s *EventService) RecordEvent(ctx context.Context, req domain.RecordEventRequest) (*domain.HREvent, bool, error) {
	if req.TenantID == "" {
		return nil, false, domain.ErrTenantRequired
	}
	if req.EntityID == "" {
		return nil, false, domain.ErrEntityRequired
	}
	if req.Action == "" {
		return nil, false, fmt.Errorf("action is required")
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	timestamp := req.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	event := &domain.HREvent{
		EventID:        uuid.NewString(),
		TenantID:       req.TenantID,
		IdempotencyKey: idempotencyKey,
		EntityType:     req.EntityType,
		EntityID:       req.EntityID,
		Action:         req.Action,
		ActorID:        req.ActorID,
		ActorRole:      req.ActorRole,
		Timestamp:      timestamp,
		Payload:        req.Payload,
	}

	stored, err := s.events.Append(ctx, event)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"tenant_id": req.TenantID,
			"action":    req.Action,
		}).Error("Failed to record event")
		return nil, false, fmt.Errorf("failed to record event: %w", err)
	}

	return event, stored, nil
}

func (s *EventService) Shortlist(ctx context.Context, req domain.ShortlistRequest) (*domain.HREvent, bool, error) {
	return s.RecordEvent(ctx, domain.RecordEventRequest{
		TenantID:       req.TenantID,
		IdempotencyKey: req.IdempotencyKey,
		EntityType:     domain.EntityTypeCandidate,
		EntityID:       req.CandidateID,
		Action:         domain.ActionShortlisted,
		ActorID:        req.RecruiterID,
		ActorRole:      domain.RoleRecruiter,
	})
}

func (s *EventService) ScheduleInterview(ctx context.Context, req domain.InterviewScheduleRequest) (*domain.HREvent, bool, error) {
	return s.RecordEvent(ctx, domain.RecordEventRequest{
		TenantID:       req.TenantID,
		IdempotencyKey: req.IdempotencyKey,
		EntityType:     domain.EntityTypeCandidate,
		EntityID:       req.CandidateID,
		Action:         domain.ActionInterviewScheduled,
		ActorID:        req.RecruiterID,
		ActorRole:      domain.RoleRecruiter,
		Payload: map[string]interface{}{
			"scheduled_time": req.TimeSlot.UTC().Format(time.RFC3339),
		},
	})
}

func (s *EventService) Hire(ctx context.Context, req domain.ShortlistRequest) (*domain.HREvent, bool, error) {
	return s.RecordEvent(ctx, domain.RecordEventRequest{
		TenantID:       req.TenantID,
		IdempotencyKey: req.IdempotencyKey,
		EntityType:     domain.EntityTypeCandidate,
		EntityID:       req.CandidateID,
		Action:         domain.ActionHired,
		ActorID:        req.RecruiterID,
		ActorRole:      domain.RoleRecruiter,
	})
}

// InjectStuckCandidate records a SHORTLISTED event backdated far enough to
// trip the shortlist SLA on the next evaluation. Debug tooling only.
func (s *EventService) InjectStuckCandidate(ctx context.Context, req domain.ShortlistRequest) (*domain.HREvent, error) {
	event, _, err := s.RecordEvent(ctx, domain.RecordEventRequest{
		TenantID:   req.TenantID,
		EntityType: domain.EntityTypeCandidate,
		EntityID:   req.CandidateID,
		Action:     domain.ActionShortlisted,
		ActorID:    "SYSTEM_DEBUG",
		ActorRole:  domain.RoleDebugSystem,
		Timestamp:  time.Now().UTC().Add(-stuckCandidateBackdate),
	})
	return event, err
}

func (s *EventService) ListEvents(ctx context.Context, tenantID string) ([]domain.HREvent, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	return s.events.ListByTenant(ctx, tenantID)
}

// ExplainEntity summarizes everything recorded about one entity in a tenant
// partition: alert count with the latest reason, and the last action seen.
func (s *EventService) ExplainEntity(ctx context.Context, tenantID, entityID string) (*domain.EntityExplanation, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	if entityID == "" {
		return nil, domain.ErrEntityRequired
	}

	events, err := s.events.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	alerts, err := s.alerts.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}

	var entityEvents []domain.HREvent
	for _, event := range events {
		if event.EntityID == entityID {
			entityEvents = append(entityEvents, event)
		}
	}

	var entityAlerts []domain.Alert
	for _, alert := range alerts {
		if alert.EntityID == entityID {
			entityAlerts = append(entityAlerts, alert)
		}
	}

	if len(entityEvents) == 0 && len(entityAlerts) == 0 {
		return nil, domain.ErrNoHistory
	}

	summary := fmt.Sprintf("History for %s (Tenant: %s): ", entityID, tenantID)
	if len(entityAlerts) > 0 {
		latest := entityAlerts[len(entityAlerts)-1]
		summary += fmt.Sprintf("Target flagged with %d alerts. Latest: %s. ", len(entityAlerts), latest.Reason)
	}
	if len(entityEvents) > 0 {
		last := entityEvents[len(entityEvents)-1]
		summary += fmt.Sprintf("Last action recorded: %s by %s.", last.Action, last.ActorRole)
	}

	return &domain.EntityExplanation{
		EntityID:       entityID,
		TenantID:       tenantID,
		Explanation:    summary,
		RawEventsCount: len(entityEvents),
		RawAlertsCount: len(entityAlerts),
	}, nil
}
