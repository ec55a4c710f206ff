package domain

import (
	"errors"
	"time"
)

// Event errors
var (
	ErrTenantRequired = errors.New("tenant ID is required")
	ErrEntityRequired = errors.New("entity ID is required")
	ErrNoHistory      = errors.New("no history found for this entity in this tenant")
)

// Entity types tracked by the state reconstruction.
const (
	EntityTypeCandidate = "candidate"
	EntityTypeEmployee  = "employee"
)

// Candidate lifecycle actions.
const (
	ActionShortlisted        = "SHORTLISTED"
	ActionInterviewScheduled = "INTERVIEW_SCHEDULED"
	ActionHired              = "HIRED"
)

// Actor roles attached to events.
const (
	RoleRecruiter   = "RECRUITER"
	RoleSystem      = "SYSTEM"
	RoleDebugSystem = "DEBUG_SYSTEM"
)

// HREvent is one record in a tenant's append-only event log. Identity is
// EventID; IdempotencyKey guarantees at-most-one stored event per key per
// tenant. Events are never mutated or deleted once appended.
type HREvent struct {
	EventID        string                 `json:"event_id"`
	TenantID       string                 `json:"tenant_id"`
	IdempotencyKey string                 `json:"idempotency_key"`
	EntityType     string                 `json:"entity_type"`
	EntityID       string                 `json:"entity_id"`
	Action         string                 `json:"action"`
	ActorID        string                 `json:"actor_id"`
	ActorRole      string                 `json:"actor_role"`
	Timestamp      time.Time              `json:"timestamp"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
}

// RecordEventRequest carries producer input for event ingestion. EventID and
// IdempotencyKey are generated when absent; a zero Timestamp means "now".
type RecordEventRequest struct {
	TenantID       string                 `json:"tenant_id"`
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
	EntityType     string                 `json:"entity_type"`
	EntityID       string                 `json:"entity_id"`
	Action         string                 `json:"action"`
	ActorID        string                 `json:"actor_id"`
	ActorRole      string                 `json:"actor_role"`
	Timestamp      time.Time              `json:"timestamp,omitempty"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
}

type ShortlistRequest struct {
	CandidateID    string `json:"candidate_id"`
	RecruiterID    string `json:"recruiter_id"`
	TenantID       string `json:"tenant_id"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type InterviewScheduleRequest struct {
	CandidateID    string    `json:"candidate_id"`
	RecruiterID    string    `json:"recruiter_id"`
	TimeSlot       time.Time `json:"time_slot"`
	TenantID       string    `json:"tenant_id"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
}

// EntityExplanation summarizes the recorded history of one entity inside a
// tenant partition, for operator-facing diagnostics.
type EntityExplanation struct {
	EntityID       string `json:"entity_id"`
	TenantID       string `json:"tenant_id"`
	Explanation    string `json:"explanation"`
	RawEventsCount int    `json:"raw_events_count"`
	RawAlertsCount int    `json:"raw_alerts_count"`
}
