package domain

import "fmt"

// ContractVersion is the ERP signal contract carried on every emitted
// signal. Consumers key compatibility decisions on this field.
const ContractVersion = "2.0"

// ERP signal event types (contract v2.0).
const (
	SignalEmployeeCreated     = "EMPLOYEE_CREATED"
	SignalOnboardingInitiated = "ONBOARDING_INITIATED"
	SignalSLAViolationReport  = "SLA_VIOLATION_REPORT"
)

// Audit trail keys required on every signal.
const (
	AuditOriginalEventID   = "original_event_id"
	AuditOriginalTimestamp = "original_timestamp"
	AuditTraceContext      = "trace_context"
)

// ERPSignal is an outbound, contract-versioned record translated from a
// domain event for the external system of record. The audit trail links it
// back to the originating event; at most one signal per original_event_id
// may exist in a tenant partition.
type ERPSignal struct {
	SignalID        string                 `json:"signal_id"`
	ContractVersion string                 `json:"contract_version"`
	TenantID        string                 `json:"tenant_id"`
	EventType       string                 `json:"event_type"`
	EntityID        string                 `json:"entity_id"`
	EffectiveDate   string                 `json:"effective_date"`
	Payload         map[string]interface{} `json:"payload"`
	AuditTrail      map[string]interface{} `json:"audit_trail"`
}

// OriginalEventID extracts the source event reference from the audit trail,
// returning "" when the trail is missing or malformed.
func (s *ERPSignal) OriginalEventID() string {
	if s.AuditTrail == nil {
		return ""
	}
	id, _ := s.AuditTrail[AuditOriginalEventID].(string)
	return id
}

// TraceContext builds the fixed-format trace reference for a signal's audit
// trail: HR_FLOW_{tenant_id}_{entity_id}, keyed on the source entity.
func TraceContext(tenantID, entityID string) string {
	return fmt.Sprintf("HR_FLOW_%s_%s", tenantID, entityID)
}
