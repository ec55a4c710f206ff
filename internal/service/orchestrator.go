package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hr-bridge/internal/repository"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TenantReport captures the outcome of one tenant's evaluation pass.
type TenantReport struct {
	TenantID       string `json:"tenant_id"`
	AlertsRaised   int    `json:"alerts_raised"`
	SignalsEmitted int    `json:"signals_emitted"`
	Error          string `json:"error,omitempty"`
}

// SyncOrchestrator drives the rule engine and the ERP mapper across every
// known tenant. Passes for distinct tenants run in parallel; a keyed mutex
// guarantees at most one in-flight pass per tenant, so the read-modify-append
// sequence of a pass is never interleaved with another pass over the same
// partition.
type SyncOrchestrator struct {
	tenants     repository.TenantLister
	rules       *RuleService
	erp         *ERPService
	maxParallel int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSyncOrchestrator(tenants repository.TenantLister, rules *RuleService, erp *ERPService, maxParallel int) *SyncOrchestrator {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return &SyncOrchestrator{
		tenants:     tenants,
		rules:       rules,
		erp:         erp,
		maxParallel: maxParallel,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (o *SyncOrchestrator) tenantLock(tenantID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[tenantID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[tenantID] = lock
	}
	return lock
}

// RunAll evaluates rules and syncs ERP signals for every tenant partition.
// A failing tenant is reported and skipped; it never aborts the other
// tenants, and the failed pass is safe to retry on the next invocation
// because every operation is idempotent against the store.
func (o *SyncOrchestrator) RunAll(ctx context.Context) ([]TenantReport, error) {
	tenants, err := o.tenants.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate tenants: %w", err)
	}

	log.WithField("tenants", len(tenants)).Info("Running global rule evaluation and ERP sync")

	reports := make([]TenantReport, len(tenants))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxParallel)

	for i, tenantID := range tenants {
		i, tenantID := i, tenantID
		g.Go(func() error {
			reports[i] = o.runTenant(gctx, tenantID)
			return nil
		})
	}

	// Goroutines never return errors; failures live in the reports.
	_ = g.Wait()

	return reports, nil
}

func (o *SyncOrchestrator) runTenant(ctx context.Context, tenantID string) TenantReport {
	lock := o.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	report := TenantReport{TenantID: tenantID}
	var failures []string

	alerts, err := o.rules.Evaluate(ctx, tenantID, time.Now().UTC())
	if err != nil {
		log.WithError(err).WithField("tenant_id", tenantID).Error("Rule evaluation failed, deferring to next run")
		failures = append(failures, fmt.Sprintf("rule evaluation: %v", err))
	}
	report.AlertsRaised = len(alerts)

	signals, err := o.erp.Sync(ctx, tenantID)
	if err != nil {
		log.WithError(err).WithField("tenant_id", tenantID).Error("ERP sync failed, deferring to next run")
		failures = append(failures, fmt.Sprintf("erp sync: %v", err))
	}
	report.SignalsEmitted = len(signals)

	report.Error = strings.Join(failures, "; ")

	log.WithFields(log.Fields{
		"tenant_id":       tenantID,
		"alerts_raised":   report.AlertsRaised,
		"signals_emitted": report.SignalsEmitted,
	}).Info("Tenant pass complete")

	return report
}
