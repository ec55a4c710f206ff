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

// SLARule pairs a candidate stage with the maximum time an entity may stay
// in it. Adding a stage means adding a row here; the evaluation loop never
// changes.
type SLARule struct {
	Status    string
	Threshold time.Duration
	Severity  string
	AlertType string
	Reason    func(days int) string
}

func defaultSLARules() []SLARule {
	return []SLARule{
		{
			Status:    domain.ActionInterviewScheduled,
			Threshold: 7 * 24 * time.Hour,
			Severity:  domain.SeverityCritical,
			AlertType: domain.AlertTypeSLABreachStuck,
			Reason: func(days int) string {
				return fmt.Sprintf("SLA Breach: Candidate stuck in INTERVIEW for %d days", days)
			},
		},
		{
			Status:    domain.ActionShortlisted,
			Threshold: 3 * 24 * time.Hour,
			Severity:  domain.SeverityCritical,
			AlertType: domain.AlertTypeSLABreachStuck,
			Reason: func(days int) string {
				return fmt.Sprintf("SLA Breach: Candidate shortlisted but no action for %d days", days)
			},
		},
	}
}

type RuleService struct {
	events repository.EventRepository
	alerts repository.AlertRepository
	rules  []SLARule
}

func NewRuleService(events repository.EventRepository, alerts repository.AlertRepository) *RuleService {
	return &RuleService{
		events: events,
		alerts: alerts,
		rules:  defaultSLARules(),
	}
}

type alertKey struct {
	entityID string
	reason   string
}

// Evaluate rebuilds the tenant's candidate state from the full event log,
// fires an alert for every stage that exceeded its threshold, and suppresses
// breaches already recorded with an identical reason string. Re-running the
// evaluation is safe: the pass recomputes its dedup set from the store on
// every call and appends nothing that is already there.
func (s *RuleService) Evaluate(ctx context.Context, tenantID string, now time.Time) ([]domain.Alert, error) {
	events, err := s.events.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for rule evaluation: %w", err)
	}

	state := ReconstructState(events)
	if len(state) == 0 {
		return nil, nil
	}

	existing, err := s.alerts.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing alerts: %w", err)
	}

	recorded := make(map[alertKey]struct{}, len(existing))
	for _, alert := range existing {
		recorded[alertKey{entityID: alert.EntityID, reason: alert.Reason}] = struct{}{}
	}

	var raised []domain.Alert
	for entityID, status := range state {
		for _, rule := range s.rules {
			if status.Status != rule.Status {
				continue
			}

			timeInStage := now.Sub(status.EnteredAt)
			if timeInStage <= rule.Threshold {
				continue
			}

			days := int(timeInStage.Hours() / 24)
			reason := rule.Reason(days)

			key := alertKey{entityID: entityID, reason: reason}
			if _, ok := recorded[key]; ok {
				log.WithFields(log.Fields{
					"tenant_id": tenantID,
					"entity_id": entityID,
				}).Debug("Breach already reported, suppressing alert")
				continue
			}

			alert := domain.Alert{
				AlertID:     uuid.NewString(),
				TenantID:    tenantID,
				AlertType:   rule.AlertType,
				Severity:    rule.Severity,
				EntityID:    entityID,
				Reason:      reason,
				TriggeredAt: now,
				Metadata: map[string]interface{}{
					"days_in_stage":  days,
					"threshold_days": int(rule.Threshold.Hours() / 24),
				},
			}

			if err := s.alerts.Append(ctx, &alert); err != nil {
				return raised, fmt.Errorf("failed to append alert: %w", err)
			}

			recorded[key] = struct{}{}
			raised = append(raised, alert)
		}
	}

	return raised, nil
}

// ListAlerts exposes a tenant's alert ledger in log order.
func (s *RuleService) ListAlerts(ctx context.Context, tenantID string) ([]domain.Alert, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	return s.alerts.ListByTenant(ctx, tenantID)
}
