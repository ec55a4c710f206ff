package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hr-bridge/internal/domain"

	log "github.com/sirupsen/logrus"
)

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) *postgresEventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Append(ctx context.Context, event *domain.HREvent) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return false, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	// Conditional insert keeps the at-most-one-event-per-idempotency-key
	// invariant even under concurrent writers.
	query := `
		INSERT INTO hr_events (
			event_id, tenant_id, idempotency_key,
			entity_type, entity_id, action,
			actor_id, actor_role, occurred_at, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, idempotency_key) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		event.EventID,
		event.TenantID,
		event.IdempotencyKey,
		event.EntityType,
		event.EntityID,
		event.Action,
		event.ActorID,
		event.ActorRole,
		event.Timestamp,
		payload,
	)

	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"tenant_id": event.TenantID,
			"event_id":  event.EventID,
		}).Error("Failed to append event")
		return false, fmt.Errorf("failed to append event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not determine rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.WithFields(log.Fields{
			"tenant_id":       event.TenantID,
			"idempotency_key": event.IdempotencyKey,
		}).Info("Duplicate event detected, skipping")
		return false, nil
	}

	log.WithFields(log.Fields{
		"tenant_id": event.TenantID,
		"action":    event.Action,
		"entity_id": event.EntityID,
	}).Info("Event appended")
	return true, nil
}

func (r *postgresEventRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.HREvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT event_id, tenant_id, idempotency_key,
			entity_type, entity_id, action,
			actor_id, actor_role, occurred_at, payload
		FROM hr_events
		WHERE tenant_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		log.WithError(err).WithField("tenant_id", tenantID).Error("Failed to list events")
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []domain.HREvent
	for rows.Next() {
		var event domain.HREvent
		var payload []byte

		err := rows.Scan(
			&event.EventID,
			&event.TenantID,
			&event.IdempotencyKey,
			&event.EntityType,
			&event.EntityID,
			&event.Action,
			&event.ActorID,
			&event.ActorRole,
			&event.Timestamp,
			&payload,
		)

		if err != nil {
			log.WithError(err).WithField("tenant_id", tenantID).Error("Failed to scan event row")
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		// Malformed payloads are skipped, not fatal: one bad record must
		// not make the whole partition unreadable.
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Payload); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"tenant_id": tenantID,
					"event_id":  event.EventID,
				}).Warn("Skipping event with malformed payload")
				continue
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over event rows: %w", err)
	}

	return events, nil
}
