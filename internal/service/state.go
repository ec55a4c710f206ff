package service

import (
	"hr-bridge/internal/domain"
)

// ReconstructState folds a tenant's full event sequence into the
// latest-known stage per candidate. Each candidate event overwrites the
// previous entry, so the winner is decided by position in the log, not by
// the timestamp value: the append order of the ledger is the source of
// truth even when producers deliver events out of chronological order.
// Non-candidate entity types do not participate in this projection.
func ReconstructState(events []domain.HREvent) domain.CandidateState {
	state := make(domain.CandidateState)
	for _, event := range events {
		if event.EntityType != domain.EntityTypeCandidate {
			continue
		}
		state[event.EntityID] = domain.CandidateStatus{
			Status:    event.Action,
			EnteredAt: event.Timestamp,
		}
	}
	return state
}
