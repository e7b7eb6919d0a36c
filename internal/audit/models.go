// Package audit records security-relevant auth events: who logged in, which
// handover tokens were minted, consumed, or rejected. Sinks are pluggable;
// production publishes to Kafka, tests read from memory.
package audit

import "time"

// Actions emitted by the auth flow.
const (
	ActionLoginSucceeded   = "login.succeeded"
	ActionLoginFailed      = "login.failed"
	ActionHandoverCreated  = "handover.created"
	ActionHandoverConsumed = "handover.consumed"
	ActionHandoverRejected = "handover.rejected"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	Origin    string    `json:"origin,omitempty"` // "native" or "web"
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
}
