package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hr-bridge/internal/domain"

	log "github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

const queryTimeout = 5 * time.Second

// Repositories are interface-driven so the rule engine, ERP mapper and
// orchestrator never assume a particular persistence medium. Every read is
// tenant-scoped; a partition with no records yields an empty sequence, not
// an error.
type EventRepository interface {
	// Append inserts the event into its tenant partition. It returns false
	// (no insert) when an event with the same idempotency key already
	// exists in that partition.
	Append(ctx context.Context, event *domain.HREvent) (bool, error)
	// ListByTenant returns the tenant's full event sequence in log order,
	// oldest first.
	ListByTenant(ctx context.Context, tenantID string) ([]domain.HREvent, error)
}

type AlertRepository interface {
	// Append inserts the alert unless an alert with the same entity_id and
	// reason already exists in the tenant partition.
	Append(ctx context.Context, alert *domain.Alert) error
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Alert, error)
}

type SignalRepository interface {
	// Append inserts the signal unless a signal referencing the same
	// original_event_id already exists in the tenant partition.
	Append(ctx context.Context, signal *domain.ERPSignal) error
	ListByTenant(ctx context.Context, tenantID string) ([]domain.ERPSignal, error)
}

type TenantLister interface {
	// ListTenants enumerates every partition with at least one record
	// across the event, alert and signal ledgers.
	ListTenants(ctx context.Context) ([]string, error)
}

type postgresTenantRepository struct {
	db *sql.DB
}

func NewPostgresTenantRepository(db *sql.DB) *postgresTenantRepository {
	return &postgresTenantRepository{db: db}
}

func (r *postgresTenantRepository) ListTenants(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT tenant_id FROM hr_events
		UNION
		SELECT tenant_id FROM hr_alerts
		UNION
		SELECT tenant_id FROM erp_signals
		ORDER BY tenant_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.WithError(err).Error("Failed to list tenants")
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var tenantID string
		if err := rows.Scan(&tenantID); err != nil {
			return nil, fmt.Errorf("failed to scan tenant row: %w", err)
		}
		tenants = append(tenants, tenantID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over tenant rows: %w", err)
	}

	return tenants, nil
}
