package claim

import "time"

// History actions recorded on the audit trail.
const (
	ActionCreated         = "CREATED"
	ActionStatusChanged   = "STATUS_CHANGED"
	ActionAssigned        = "ASSIGNED"
	ActionReviewed        = "REVIEWED"
	ActionPaymentRejected = "PAYMENT_REJECTED"
)

// HistoryEntry is a single append-only audit record. Entries are never
// mutated or removed once appended.
type HistoryEntry struct {
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Actor       string    `json:"actor,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
