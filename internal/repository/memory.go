package repository

import (
	"context"
	"sort"
	"sync"

	"hr-bridge/internal/domain"
)

// MemoryStore keeps all three ledgers in process memory. It backs tests and
// database-less deployments, and implements the same partition isolation and
// dedup invariants as the Postgres repositories.
type MemoryStore struct {
	mu      sync.RWMutex
	events  map[string][]domain.HREvent
	alerts  map[string][]domain.Alert
	signals map[string][]domain.ERPSignal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:  make(map[string][]domain.HREvent),
		alerts:  make(map[string][]domain.Alert),
		signals: make(map[string][]domain.ERPSignal),
	}
}

func (s *MemoryStore) Append(ctx context.Context, event *domain.HREvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.events[event.TenantID] {
		if existing.IdempotencyKey == event.IdempotencyKey {
			return false, nil
		}
	}

	s.events[event.TenantID] = append(s.events[event.TenantID], *event)
	return true, nil
}

func (s *MemoryStore) ListByTenant(ctx context.Context, tenantID string) ([]domain.HREvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]domain.HREvent, len(s.events[tenantID]))
	copy(events, s.events[tenantID])
	return events, nil
}

func (s *MemoryStore) AppendAlert(ctx context.Context, alert *domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.alerts[alert.TenantID] {
		if existing.EntityID == alert.EntityID && existing.Reason == alert.Reason {
			return nil
		}
	}

	s.alerts[alert.TenantID] = append(s.alerts[alert.TenantID], *alert)
	return nil
}

func (s *MemoryStore) ListAlertsByTenant(ctx context.Context, tenantID string) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts := make([]domain.Alert, len(s.alerts[tenantID]))
	copy(alerts, s.alerts[tenantID])
	return alerts, nil
}

func (s *MemoryStore) AppendSignal(ctx context.Context, signal *domain.ERPSignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.signals[signal.TenantID] {
		if existing.OriginalEventID() == signal.OriginalEventID() {
			return nil
		}
	}

	s.signals[signal.TenantID] = append(s.signals[signal.TenantID], *signal)
	return nil
}

func (s *MemoryStore) ListSignalsByTenant(ctx context.Context, tenantID string) ([]domain.ERPSignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	signals := make([]domain.ERPSignal, len(s.signals[tenantID]))
	copy(signals, s.signals[tenantID])
	return signals, nil
}

func (s *MemoryStore) ListTenants(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for tenantID, records := range s.events {
		if len(records) > 0 {
			seen[tenantID] = struct{}{}
		}
	}
	for tenantID, records := range s.alerts {
		if len(records) > 0 {
			seen[tenantID] = struct{}{}
		}
	}
	for tenantID, records := range s.signals {
		if len(records) > 0 {
			seen[tenantID] = struct{}{}
		}
	}

	tenants := make([]string, 0, len(seen))
	for tenantID := range seen {
		tenants = append(tenants, tenantID)
	}
	sort.Strings(tenants)
	return tenants, nil
}

// EventRepo, AlertRepo and SignalRepo adapt the shared store to the
// per-ledger repository interfaces.
func (s *MemoryStore) EventRepo() EventRepository { return s }

func (s *MemoryStore) AlertRepo() AlertRepository { return memoryAlertRepo{s} }

func (s *MemoryStore) SignalRepo() SignalRepository { return memorySignalRepo{s} }

type memoryAlertRepo struct{ store *MemoryStore }

func (r memoryAlertRepo) Append(ctx context.Context, alert *domain.Alert) error {
	return r.store.AppendAlert(ctx, alert)
}

func (r memoryAlertRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.Alert, error) {
	return r.store.ListAlertsByTenant(ctx, tenantID)
}

type memorySignalRepo struct{ store *MemoryStore }

func (r memorySignalRepo) Append(ctx context.Context, signal *domain.ERPSignal) error {
	return r.store.AppendSignal(ctx, signal)
}

func (r memorySignalRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.ERPSignal, error) {
	return r.store.ListSignalsByTenant(ctx, tenantID)
}
