// Package model provides data models for the pool monitor.
package model

import "time"

// AlertAction is the decision the reconciliation step makes for one issue.
type AlertAction string

const (
	// ActionSendAlert means a notification must be dispatched: either the
	// first occurrence of the issue or a resend after the window elapsed.
	ActionSendAlert AlertAction = "send_alert"
	// ActionSuppress means the issue is already known and inside the
	// resend window; no notification is dispatched.
	ActionSuppress AlertAction = "suppress"
	// ActionSendRecovery means a previously alerted issue disappeared and
	// exactly one recovery notice must be dispatched.
	ActionSendRecovery AlertAction = "send_recovery"
)

// AlertRecord is the only durable entity: it tracks the notification
// history of one unresolved (pool, category) issue. A record exists if and
// only if the issue has been seen and not yet cleared.
type AlertRecord struct {
	PoolName      string        `json:"pool_name"`
	IssueCategory IssueCategory `json:"issue_category"`
	FirstSeen     time.Time     `json:"first_seen"`             // UTC, set once
	LastAlerted   *time.Time    `json:"last_alerted,omitempty"` // UTC
	AlertCount    int           `json:"alert_count"`
	Message       string        `json:"message,omitempty"` // latest issue text
}

// Key returns the store key for this record.
func (r *AlertRecord) Key() string {
	return r.PoolName + ":" + string(r.IssueCategory)
}

// AlertDecision pairs an issue with the action the store decided for it.
// For recoveries the Issue carries the pool and category of the cleared
// record with severity Ok.
type AlertDecision struct {
	Issue  Issue       `json:"issue"`
	Action AlertAction `json:"action"`
}

// NeedsDispatch returns true if this decision must be handed to a notifier.
func (d *AlertDecision) NeedsDispatch() bool {
	return d.Action == ActionSendAlert || d.Action == ActionSendRecovery
}
