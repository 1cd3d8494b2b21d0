package activity

import "time"

// ActivityType represents the type of billing event.
type ActivityType string

const (
	TypeTimerStarted     ActivityType = "timer_started"
	TypeTimerStopped     ActivityType = "timer_stopped"
	TypeTimeEntryUpdated ActivityType = "time_entry_updated"
	TypeTimeEntryDeleted ActivityType = "time_entry_deleted"
	TypeInvoiceCreated   ActivityType = "invoice_created"
	TypeInvoiceUpdated   ActivityType = "invoice_updated"
	TypeInvoiceDeleted   ActivityType = "invoice_deleted"
	TypeLineItemAdded    ActivityType = "line_item_added"
	TypeLineItemUpdated  ActivityType = "line_item_updated"
	TypeLineItemRemoved  ActivityType = "line_item_removed"
	TypePaymentRecorded  ActivityType = "payment_recorded"
	TypePaymentDeleted   ActivityType = "payment_deleted"
	TypeStatusChanged    ActivityType = "status_changed"
)

// Entity types referenced by activity entries.
const (
	EntityTimeEntry = "time_entry"
	EntityInvoice   = "invoice"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ActivityType ActivityType `json:"type"`
	EntityType   string       `json:"entity_type"`
	EntityID     string       `json:"entity_id"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
