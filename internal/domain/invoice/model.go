package invoice

import (
	"time"

	"github.com/rpggio/billable/internal/money"
	"github.com/shopspring/decimal"
)

// Invoice bills a client for a set of line items. Subtotal and Total are
// derived from the line items and are recomputed on every change.
type Invoice struct {
	ID                  string          `json:"id"`
	ClientID            string          `json:"client_id"`
	InvoiceNumber       string          `json:"invoice_number"`
	Status              Status          `json:"status"`
	InvoiceDate         time.Time       `json:"invoice_date"`
	DueDate             time.Time       `json:"due_date"`
	PaidDate            *time.Time      `json:"paid_date,omitempty"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	Total               decimal.Decimal `json:"total"`
	Notes               string          `json:"notes,omitempty"`
	PaymentInstructions string          `json:"payment_instructions,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	LineItems []LineItem `json:"line_items,omitempty"`

	// Read-only values joined in by the repository.
	ClientName string          `json:"client_name,omitempty"`
	AmountPaid decimal.Decimal `json:"amount_paid"`

	// Derived on read, see Derive.
	Balance decimal.Decimal `json:"amount_due"`
	Overdue bool            `json:"overdue"`
}

// LineItem is one billed row. Amount is always round2(Quantity × Rate).
type LineItem struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	TimeEntryID *string         `json:"time_entry_id,omitempty"`
	ProjectID   *string         `json:"project_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	Position    int             `json:"position"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ComputeTotals derives Subtotal and Total from the line items.
func (inv *Invoice) ComputeTotals() {
	subtotal := decimal.Zero
	for i := range inv.LineItems {
		inv.LineItems[i].Amount = money.LineAmount(inv.LineItems[i].Quantity, inv.LineItems[i].Rate)
		subtotal = subtotal.Add(inv.LineItems[i].Amount)
	}
	inv.Subtotal = subtotal
	inv.Total = subtotal.Sub(inv.DiscountAmount)
}

// AmountDue is what remains after payments. Negative when overpaid.
func (inv *Invoice) AmountDue() decimal.Decimal {
	return inv.Total.Sub(inv.AmountPaid)
}

// IsOverdue reports a sent invoice whose due date is before today. Overdue
// invoices are not moved to StatusOverdue automatically.
func (inv *Invoice) IsOverdue(today time.Time) bool {
	return inv.Status == StatusSent && inv.DueDate.Before(Date(today))
}

// Derive fills Balance and Overdue as of today.
func (inv *Invoice) Derive(today time.Time) {
	inv.Balance = inv.AmountDue()
	inv.Overdue = inv.IsOverdue(today)
}

// Item returns the line item with the given ID.
func (inv *Invoice) Item(id string) (*LineItem, bool) {
	for i := range inv.LineItems {
		if inv.LineItems[i].ID == id {
			return &inv.LineItems[i], true
		}
	}
	return nil, false
}

// Date truncates t to its UTC calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
