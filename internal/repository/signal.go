package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hr-bridge/internal/domain"

	log "github.com/sirupsen/logrus"
)

type postgresSignalRepository struct {
	db *sql.DB
}

func NewPostgresSignalRepository(db *sql.DB) *postgresSignalRepository {
	return &postgresSignalRepository{db: db}
}

func (r *postgresSignalRepository) Append(ctx context.Context, signal *domain.ERPSignal) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	payload, err := json.Marshal(signal.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal signal payload: %w", err)
	}

	auditTrail, err := json.Marshal(signal.AuditTrail)
	if err != nil {
		return fmt.Errorf("failed to marshal signal audit trail: %w", err)
	}

	// original_event_id is stored as its own column so the dedup invariant
	// (one signal per source event per tenant) holds as a conditional insert.
	query := `
		INSERT INTO erp_signals (
			signal_id, contract_version, tenant_id, event_type,
			entity_id, effective_date, payload, audit_trail, original_event_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, original_event_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		signal.SignalID,
		signal.ContractVersion,
		signal.TenantID,
		signal.EventType,
		signal.EntityID,
		signal.EffectiveDate,
		payload,
		auditTrail,
		signal.OriginalEventID(),
	)

	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"tenant_id": signal.TenantID,
			"signal_id": signal.SignalID,
		}).Error("Failed to append ERP signal")
		return fmt.Errorf("failed to append erp signal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not determine rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.WithFields(log.Fields{
			"tenant_id":         signal.TenantID,
			"original_event_id": signal.OriginalEventID(),
		}).Info("Duplicate ERP signal suppressed")
		return nil
	}

	log.WithFields(log.Fields{
		"tenant_id":  signal.TenantID,
		"event_type": signal.EventType,
		"entity_id":  signal.EntityID,
	}).Info("ERP signal emitted")
	return nil
}

func (r *postgresSignalRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.ERPSignal, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT signal_id, contract_version, tenant_id, event_type,
			entity_id, effective_date, payload, audit_trail
		FROM erp_signals
		WHERE tenant_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		log.WithError(err).WithField("tenant_id", tenantID).Error("Failed to list ERP signals")
		return nil, fmt.Errorf("failed to list erp signals: %w", err)
	}
	defer rows.Close()

	var signals []domain.ERPSignal
	for rows.Next() {
		var signal domain.ERPSignal
		var payload, auditTrail []byte

		err := rows.Scan(
			&signal.SignalID,
			&signal.ContractVersion,
			&signal.TenantID,
			&signal.EventType,
			&signal.EntityID,
			&signal.EffectiveDate,
			&payload,
			&auditTrail,
		)

		if err != nil {
			log.WithError(err).WithField("tenant_id", tenantID).Error("Failed to scan ERP signal row")
			return nil, fmt.Errorf("failed to scan erp signal row: %w", err)
		}

		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &signal.Payload); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"tenant_id": tenantID,
					"signal_id": signal.SignalID,
				}).Warn("Skipping ERP signal with malformed payload")
				continue
			}
		}
		if len(auditTrail) > 0 {
			if err := json.Unmarshal(auditTrail, &signal.AuditTrail); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"tenant_id": tenantID,
					"signal_id": signal.SignalID,
				}).Warn("Skipping ERP signal with malformed audit trail")
				continue
			}
		}

		signals = append(signals, signal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over erp signal rows: %w", err)
	}

	return signals, nil
}
