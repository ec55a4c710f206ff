package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-bridge/internal/domain"
	"hr-bridge/internal/repository"
)

type capturingPublisher struct {
	published []domain.ERPSignal
	err       error
}

func (p *capturingPublisher) Publish(_ context.Context, signal domain.ERPSignal) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, signal)
	return nil
}

func seedHireEvent(t *testing.T, store *repository.MemoryStore, tenantID, entityID string) domain.HREvent {
	t.Helper()
	event := domain.HREvent{
		EventID:        uuid.NewString(),
		TenantID:       tenantID,
		IdempotencyKey: uuid.NewString(),
		EntityType:     domain.EntityTypeCandidate,
		EntityID:       entityID,
		Action:         domain.ActionHired,
		ActorID:        "rec_007",
		ActorRole:      domain.RoleRecruiter,
		Timestamp:      time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
	}
	stored, err := store.Append(context.Background(), &event)
	require.NoError(t, err)
	require.True(t, stored)
	return event
}

func TestERPServiceSync(t *testing.T) {
	ctx := context.Background()
	syncTime := time.Date(2026, 3, 8, 15, 30, 0, 0, time.UTC)

	t.Run("hired candidate emits one employee created signal", func(t *testing.T) {
		store := repository.NewMemoryStore()
		source := seedHireEvent(t, store, "acme_corp", "cand_42")

		erp := NewERPService(store.EventRepo(), store.SignalRepo(), nil)
		erp.now = func() time.Time { return syncTime }

		emitted, err := erp.Sync(ctx, "acme_corp")
		require.NoError(t, err)
		require.Len(t, emitted, 1)

		signal := emitted[0]
		assert.Equal(t, domain.SignalEmployeeCreated, signal.EventType)
		assert.Equal(t, "2.0", signal.ContractVersion)
		assert.Equal(t, "emp_42", signal.EntityID)
		assert.Equal(t, "2026-03-08", signal.EffectiveDate)
		assert.Equal(t, "cand_42", signal.Payload["hr_reference_id"])
		assert.Equal(t, "rec_007", signal.Payload["hiring_manager_id"])
		assert.Equal(t, "PENDING", signal.Payload["onboarding_status"])
		assert.Equal(t, "VALIDATED", signal.Payload["data_integrity_check"])
		assert.Equal(t, source.EventID, signal.AuditTrail[domain.AuditOriginalEventID])
		assert.Equal(t, "HR_FLOW_acme_corp_cand_42", signal.AuditTrail[domain.AuditTraceContext])
	})

	t.Run("re-running the sync emits nothing new", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedHireEvent(t, store, "acme_corp", "cand_42")

		erp := NewERPService(store.EventRepo(), store.SignalRepo(), nil)

		first, err := erp.Sync(ctx, "acme_corp")
		require.NoError(t, err)
		require.Len(t, first, 1)

		second, err := erp.Sync(ctx, "acme_corp")
		require.NoError(t, err)
		assert.Empty(t, second)

		signals, err := store.ListSignalsByTenant(ctx, "acme_corp")
		require.NoError(t, err)
		assert.Len(t, signals, 1)
	})

	t.Run("non-hire events are not translated", func(t *testing.T) {
		store := repository.NewMemoryStore()
		stored, err := store.Append(ctx, &domain.HREvent{
			EventID:        uuid.NewString(),
			TenantID:       "acme_corp",
			IdempotencyKey: uuid.NewString(),
			EntityType:     domain.EntityTypeCandidate,
			EntityID:       "cand_1",
			Action:         domain.ActionShortlisted,
			Timestamp:      time.Now().UTC(),
		})
		require.NoError(t, err)
		require.True(t, stored)

		erp := NewERPService(store.EventRepo(), store.SignalRepo(), nil)

		emitted, err := erp.Sync(ctx, "acme_corp")
		require.NoError(t, err)
		assert.Empty(t, emitted)
	})

	t.Run("hired employee entity is not translated", func(t *testing.T) {
		store := repository.NewMemoryStore()
		stored, err := store.Append(ctx, &domain.HREvent{
			EventID:        uuid.NewString(),
			TenantID:       "acme_corp",
			IdempotencyKey: uuid.NewString(),
			EntityType:     domain.EntityTypeEmployee,
			EntityID:       "emp_9",
			Action:         domain.ActionHired,
			Timestamp:      time.Now().UTC(),
		})
		require.NoError(t, err)
		require.True(t, stored)

		erp := NewERPService(store.EventRepo(), store.SignalRepo(), nil)

		emitted, err := erp.Sync(ctx, "acme_corp")
		require.NoError(t, err)
		assert.Empty(t, emitted)
	})

	t.Run("emitted signals are forwarded to the publisher", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedHireEvent(t, store, "acme_corp", "cand_42")

		sink := &capturingPublisher{}
		erp := NewERPService(store.EventRepo(), store.SignalRepo(), sink)

		emitted, err := erp.Sync(ctx, "acme_corp")
		require.NoError(t, err)
		require.Len(t, emitted, 1)
		require.Len(t, sink.published, 1)
		assert.Equal(t, emitted[0].SignalID, sink.published[0].SignalID)
	})

	t.Run("publisher failure does not block emission", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedHireEvent(t, store, "acme_corp", "cand_42")

		sink := &capturingPublisher{err: errors.New("broker down")}
		erp := NewERPService(store.EventRepo(), store.SignalRepo(), sink)

		emitted, err := erp.Sync(ctx, "acme_corp")
		require.NoError(t, err)
		assert.Len(t, emitted, 1)

		signals, err := store.ListSignalsByTenant(ctx, "acme_corp")
		require.NoError(t, err)
		assert.Len(t, signals, 1)
	})
}
