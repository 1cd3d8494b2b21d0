package timeentry

import (
	"time"

	"github.com/rpggio/billable/internal/money"
	"github.com/shopspring/decimal"
)

// Status is the timer lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
)

// Billing reports whether an entry has been invoiced, derived from its line item.
type Billing string

const (
	BillingUnbilled Billing = "unbilled"
	BillingBilled   Billing = "billed"
	BillingPaid     Billing = "paid"
)

// TimeEntry is one timed span of work.
type TimeEntry struct {
	ID              string              `json:"id"`
	ClientID        string              `json:"client_id"`
	ProjectID       string              `json:"project_id"`
	Task            string              `json:"task"`
	Notes           string              `json:"notes,omitempty"`
	StartTime       time.Time           `json:"start_time"`
	EndTime         *time.Time          `json:"end_time,omitempty"`
	DurationSeconds int64               `json:"duration_seconds"`
	Rate            decimal.NullDecimal `json:"rate"`
	Earnings        decimal.Decimal     `json:"earnings"`
	Status          Status              `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	// Read-only values joined in by the repository.
	ClientName  string  `json:"client_name,omitempty"`
	ProjectName string  `json:"project_name,omitempty"`
	InvoiceID   *string `json:"invoice_id,omitempty"`
	Billing     Billing `json:"billing"`
}

// Running reports whether the timer is still open.
func (e *TimeEntry) Running() bool {
	return e.Status == StatusRunning
}

// Locked reports whether the entry sits on a paid invoice.
func (e *TimeEntry) Locked() bool {
	return e.Billing == BillingPaid
}

// Complete closes the timer at end and derives duration and earnings.
func (e *TimeEntry) Complete(end time.Time) {
	e.EndTime = &end
	e.Status = StatusCompleted
	e.Recompute()
}

// Recompute derives duration and earnings from the stored times and rate.
func (e *TimeEntry) Recompute() {
	if e.EndTime == nil {
		e.DurationSeconds = 0
		e.Earnings = decimal.Zero
		return
	}
	e.DurationSeconds = money.DurationSeconds(e.StartTime, *e.EndTime)
	var rate *decimal.Decimal
	if e.Rate.Valid {
		rate = &e.Rate.Decimal
	}
	e.Earnings = money.Earnings(e.DurationSeconds, rate)
}

// UnbilledEntry is the row shape offered to invoice builders.
type UnbilledEntry struct {
	ID            string              `json:"id"`
	Task          string              `json:"task"`
	ProjectID     string              `json:"project_id"`
	ProjectName   string              `json:"project_name"`
	StartTime     time.Time           `json:"start_time"`
	EndTime       time.Time           `json:"end_time"`
	DurationHours decimal.Decimal     `json:"duration_hours"`
	Rate          decimal.NullDecimal `json:"rate"`
	Earnings      decimal.Decimal     `json:"earnings"`
}

// ProjectReport totals one project's entries.
type ProjectReport struct {
	ProjectID       string          `json:"project_id"`
	ProjectName     string          `json:"project_name"`
	Entries         []TimeEntry     `json:"entries"`
	DurationSeconds int64           `json:"duration_seconds"`
	Earnings        decimal.Decimal `json:"earnings"`
}

// ClientReport totals one client's entries, grouped by project.
type ClientReport struct {
	ClientID        string          `json:"client_id"`
	ClientName      string          `json:"client_name"`
	Projects        []ProjectReport `json:"projects"`
	EntryCount      int             `json:"entry_count"`
	DurationSeconds int64           `json:"duration_seconds"`
	DurationHours   decimal.Decimal `json:"duration_hours"`
	Earnings        decimal.Decimal `json:"earnings"`
}
