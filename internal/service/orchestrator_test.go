package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-bridge/internal/domain"
	"hr-bridge/internal/repository"
)

// faultyEventRepo fails every read for one tenant and delegates the rest.
type faultyEventRepo struct {
	inner        repository.EventRepository
	brokenTenant string
}

func (r *faultyEventRepo) Append(ctx context.Context, event *domain.HREvent) (bool, error) {
	return r.inner.Append(ctx, event)
}

func (r *faultyEventRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.HREvent, error) {
	if tenantID == r.brokenTenant {
		return nil, errors.New("partition storage unavailable")
	}
	return r.inner.ListByTenant(ctx, tenantID)
}

type staticTenantLister struct {
	tenants []string
	err     error
}

func (l *staticTenantLister) ListTenants(context.Context) ([]string, error) {
	return l.tenants, l.err
}

func TestSyncOrchestratorRunAll(t *testing.T) {
	ctx := context.Background()

	t.Run("processes every tenant and reports per-tenant outcomes", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedCandidateEvent(t, store, "acme_corp", "cand_stuck", domain.ActionShortlisted, time.Now().UTC().Add(-4*24*time.Hour))
		seedHireEvent(t, store, "globex_inc", "cand_7")

		rules := NewRuleService(store.EventRepo(), store.AlertRepo())
		erp := NewERPService(store.EventRepo(), store.SignalRepo(), nil)
		orchestrator := NewSyncOrchestrator(store, rules, erp, 4)

		reports, err := orchestrator.RunAll(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 2)

		byTenant := make(map[string]TenantReport, len(reports))
		for _, report := range reports {
			byTenant[report.TenantID] = report
		}

		assert.Equal(t, 1, byTenant["acme_corp"].AlertsRaised)
		assert.Equal(t, 0, byTenant["acme_corp"].SignalsEmitted)
		assert.Empty(t, byTenant["acme_corp"].Error)

		assert.Equal(t, 0, byTenant["globex_inc"].AlertsRaised)
		assert.Equal(t, 1, byTenant["globex_inc"].SignalsEmitted)
	})

	t.Run("a failing tenant does not abort the others", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedCandidateEvent(t, store, "acme_corp", "cand_stuck", domain.ActionShortlisted, time.Now().UTC().Add(-4*24*time.Hour))

		events := &faultyEventRepo{inner: store.EventRepo(), brokenTenant: "globex_inc"}
		rules := NewRuleService(events, store.AlertRepo())
		erp := NewERPService(events, store.SignalRepo(), nil)
		lister := &staticTenantLister{tenants: []string{"acme_corp", "globex_inc"}}
		orchestrator := NewSyncOrchestrator(lister, rules, erp, 2)

		reports, err := orchestrator.RunAll(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 2)

		byTenant := make(map[string]TenantReport, len(reports))
		for _, report := range reports {
			byTenant[report.TenantID] = report
		}

		assert.Equal(t, 1, byTenant["acme_corp"].AlertsRaised)
		assert.NotEmpty(t, byTenant["globex_inc"].Error)

		alerts, listErr := store.ListAlertsByTenant(ctx, "acme_corp")
		require.NoError(t, listErr)
		assert.Len(t, alerts, 1)
	})

	t.Run("tenant enumeration failure surfaces as an error", func(t *testing.T) {
		store := repository.NewMemoryStore()
		rules := NewRuleService(store.EventRepo(), store.AlertRepo())
		erp := NewERPService(store.EventRepo(), store.SignalRepo(), nil)
		lister := &staticTenantLister{err: errors.New("directory scan failed")}
		orchestrator := NewSyncOrchestrator(lister, rules, erp, 2)

		_, err := orchestrator.RunAll(ctx)
		require.Error(t, err)
	})

	t.Run("re-running the full pass is idempotent", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedHireEvent(t, store, "acme_corp", "cand_42")

		rules := NewRuleService(store.EventRepo(), store.AlertRepo())
		erp := NewERPService(store.EventRepo(), store.SignalRepo(), nil)
		orchestrator := NewSyncOrchestrator(store, rules, erp, 1)

		_, err := orchestrator.RunAll(ctx)
		require.NoError(t, err)
		_, err = orchestrator.RunAll(ctx)
		require.NoError(t, err)

		signals, err := store.ListSignalsByTenant(ctx, "acme_corp")
		require.NoError(t, err)
		assert.Len(t, signals, 1)
	})
}
