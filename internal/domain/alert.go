package domain

import "time"

// Alert severities
const (
	SeverityInfo     = "INFO"
	SeverityWarn     = "WARN"
	SeverityCritical = "CRITICAL"
)

const AlertTypeSLABreachStuck = "SLA_BREACH_STUCK"

// ValidSeverities returns the list of accepted alert severities
func ValidSeverities() []string {
	return []string{SeverityInfo, SeverityWarn, SeverityCritical}
}

// Alert is an SLA-breach record raised by the rule engine. Alerts are
// append-only; the same breach is never re-reported while the reason string
// is unchanged (dedup on tenant + entity_id + reason).
type Alert struct {
	AlertID     string                 `json:"alert_id"`
	TenantID    string                 `json:"tenant_id"`
	AlertType   string                 `json:"alert_type"`
	Severity    string                 `json:"severity"`
	EntityID    string                 `json:"entity_id"`
	Reason      string                 `json:"reason"`
	TriggeredAt time.Time              `json:"triggered_at"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
