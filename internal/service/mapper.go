package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hr-bridge/internal/domain"
	"hr-bridge/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SignalPublisher forwards emitted signals to an external sink. Delivery is
// best-effort; the signal ledger, not the sink, carries the dedup contract.
type SignalPublisher interface {
	Publish(ctx context.Context, signal domain.ERPSignal) error
}

// translationRule maps a matching event to an outbound ERP signal. The
// dispatch loop is rule-agnostic; new translations are new table entries.
type translationRule struct {
	match func(domain.HREvent) bool
	build func(domain.HREvent, time.Time) domain.ERPSignal
}

type ERPService struct {
	events    repository.EventRepository
	signals   repository.SignalRepository
	publisher SignalPublisher
	rules     []translationRule
	now       func() time.Time
}

func NewERPService(events repository.EventRepository, signals repository.SignalRepository, publisher SignalPublisher) *ERPService {
	return &ERPService{
		events:    events,
		signals:   signals,
		publisher: publisher,
		rules:     defaultTranslationRules(),
		now:       time.Now,
	}
}

func defaultTranslationRules() []translationRule {
	return []translationRule{
		{
			match: func(e domain.HREvent) bool {
				return e.Action == domain.ActionHired && e.EntityType == domain.EntityTypeCandidate
			},
			build: buildEmployeeCreated,
		},
	}
}

// buildEmployeeCreated translates a candidate hire into an EMPLOYEE_CREATED
// signal under contract v2.0. The employee ID is derived from the candidate
// ID by prefix substitution; the effective date is the sync date, not the
// event date.
func buildEmployeeCreated(event domain.HREvent, now time.Time) domain.ERPSignal {
	employeeID := strings.Replace(event.EntityID, "cand_", "emp_", 1)

	return domain.ERPSignal{
		SignalID:        uuid.NewString(),
		ContractVersion: domain.ContractVersion,
		TenantID:        event.TenantID,
		EventType:       domain.SignalEmployeeCreated,
		EntityID:        employeeID,
		EffectiveDate:   now.UTC().Format("2006-01-02"),
		Payload: map[string]interface{}{
			"hr_reference_id":      event.EntityID,
			"hiring_manager_id":    event.ActorID,
			"onboarding_status":    "PENDING",
			"data_integrity_check": "VALIDATED",
		},
		AuditTrail: map[string]interface{}{
			domain.AuditOriginalEventID:   event.EventID,
			domain.AuditOriginalTimestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
			domain.AuditTraceContext:      domain.TraceContext(event.TenantID, event.EntityID),
		},
	}
}

// Sync walks the tenant's event log in order and emits a signal for every
// event that matches a translation rule and has no signal linked to it yet.
// The processed set is rebuilt from the signal ledger on every pass, so a
// re-run over the same events emits nothing new.
func (s *ERPService) Sync(ctx context.Context, tenantID string) ([]domain.ERPSignal, error) {
	existing, err := s.signals.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing erp signals: %w", err)
	}

	processed := make(map[string]struct{}, len(existing))
	for _, signal := range existing {
		if id := signal.OriginalEventID(); id != "" {
			processed[id] = struct{}{}
		}
	}

	events, err := s.events.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for erp sync: %w", err)
	}

	now := s.now()

	var emitted []domain.ERPSignal
	for _, event := range events {
		if _, ok := processed[event.EventID]; ok {
			continue
		}

		for _, rule := range s.rules {
			if !rule.match(event) {
				continue
			}

			signal := rule.build(event, now)
			if err := s.signals.Append(ctx, &signal); err != nil {
				return emitted, fmt.Errorf("failed to append erp signal: %w", err)
			}

			s.forward(ctx, signal)

			processed[event.EventID] = struct{}{}
			emitted = append(emitted, signal)
		}
	}

	return emitted, nil
}

func (s *ERPService) forward(ctx context.Context, signal domain.ERPSignal) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, signal); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"tenant_id": signal.TenantID,
			"signal_id": signal.SignalID,
		}).Warn("Failed to forward ERP signal to broker")
	}
}

// ListSignals exposes a tenant's signal ledger in log order.
func (s *ERPService) ListSignals(ctx context.Context, tenantID string) ([]domain.ERPSignal, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	return s.signals.ListByTenant(ctx, tenantID)
}
