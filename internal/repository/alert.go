package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hr-bridge/internal/domain"

	log "github.com/sirupsen/logrus"
)

type postgresAlertRepository struct {
	db *sql.DB
}

func NewPostgresAlertRepository(db *sql.DB) *postgresAlertRepository {
	return &postgresAlertRepository{db: db}
}

func (r *postgresAlertRepository) Append(ctx context.Context, alert *domain.Alert) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	metadata, err := json.Marshal(alert.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal alert metadata: %w", err)
	}

	// Conditional insert on (tenant_id, entity_id, reason): the same breach
	// is never recorded twice even when two evaluation passes race.
	query := `
		INSERT INTO hr_alerts (
			alert_id, tenant_id, alert_type, severity,
			entity_id, reason, triggered_at, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, entity_id, reason) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		alert.AlertID,
		alert.TenantID,
		alert.AlertType,
		alert.Severity,
		alert.EntityID,
		alert.Reason,
		alert.TriggeredAt,
		metadata,
	)

	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"tenant_id": alert.TenantID,
			"alert_id":  alert.AlertID,
		}).Error("Failed to append alert")
		return fmt.Errorf("failed to append alert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not determine rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.WithFields(log.Fields{
			"tenant_id": alert.TenantID,
			"entity_id": alert.EntityID,
		}).Info("Duplicate alert suppressed")
		return nil
	}

	log.WithFields(log.Fields{
		"tenant_id":  alert.TenantID,
		"alert_type": alert.AlertType,
		"reason":     alert.Reason,
	}).Info("Alert raised")
	return nil
}

func (r *postgresAlertRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT alert_id, tenant_id, alert_type, severity,
			entity_id, reason, triggered_at, metadata
		FROM hr_alerts
		WHERE tenant_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		log.WithError(err).WithField("tenant_id", tenantID).Error("Failed to list alerts")
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var alert domain.Alert
		var metadata []byte

		err := rows.Scan(
			&alert.AlertID,
			&alert.TenantID,
			&alert.AlertType,
			&alert.Severity,
			&alert.EntityID,
			&alert.Reason,
			&alert.TriggeredAt,
			&metadata,
		)

		if err != nil {
			log.WithError(err).WithField("tenant_id", tenantID).Error("Failed to scan alert row")
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &alert.Metadata); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"tenant_id": tenantID,
					"alert_id":  alert.AlertID,
				}).Warn("Skipping alert with malformed metadata")
				continue
			}
		}

		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over alert rows: %w", err)
	}

	return alerts, nil
}
