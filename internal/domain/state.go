package domain

import "time"

// CandidateStatus is the latest-known stage for one candidate, derived by
// replaying the tenant's event log. It is never persisted; every evaluation
// pass rebuilds it from the full sequence.
type CandidateStatus struct {
	Status    string    `json:"status"`
	EnteredAt time.Time `json:"entered_at"`
}

// CandidateState maps candidate entity IDs to their latest-known stage.
type CandidateState map[string]CandidateStatus
