package mcp

import (
	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/rpggio/billable/internal/domain/payment"
	"github.com/rpggio/billable/internal/domain/timeentry"
	"github.com/shopspring/decimal"
)

// Dates are accepted as "2006-01-02" or RFC 3339; timestamps as RFC 3339.

type IDParams struct {
	ID string `json:"id"`
}

type ClientParams struct {
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
	Country      string `json:"country,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type CreateProjectParams struct {
	ClientID string          `json:"client_id"`
	Name     string          `json:"name"`
	Rate     decimal.Decimal `json:"rate"`
}

type ListProjectsParams struct {
	ClientID string `json:"client_id,omitempty"`
}

type UpdateProjectParams struct {
	ID   string           `json:"id"`
	Name *string          `json:"name,omitempty"`
	Rate *decimal.Decimal `json:"rate,omitempty"`
}

type StartTimerParams struct {
	ClientID       string           `json:"client_id,omitempty"`
	ProjectID      string           `json:"project_id,omitempty"`
	Task           string           `json:"task,omitempty"`
	ExistingTask   string           `json:"existing_task,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	NewClientName  string           `json:"new_client_name,omitempty"`
	NewProjectName string           `json:"new_project_name,omitempty"`
	NewProjectRate *decimal.Decimal `json:"new_project_rate,omitempty"`
}

type ListTimeEntriesParams struct {
	ClientID  string            `json:"client_id,omitempty"`
	ProjectID string            `json:"project_id,omitempty"`
	Status    timeentry.Status  `json:"status,omitempty"`
	Billing   timeentry.Billing `json:"billing,omitempty"`
	Limit     int               `json:"limit,omitempty"`
	Offset    int               `json:"offset,omitempty"`
}

type UpdateTimeEntryParams struct {
	ID        string           `json:"id"`
	ClientID  *string          `json:"client_id,omitempty"`
	ProjectID *string          `json:"project_id,omitempty"`
	Task      *string          `json:"task,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
	StartTime *string          `json:"start_time,omitempty"`
	EndTime   *string          `json:"end_time,omitempty"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
}

type ListTasksParams struct {
	ProjectID string `json:"project_id"`
}

type ClientIDParams struct {
	ClientID string `json:"client_id"`
}

type LineItemParams struct {
	TimeEntryID *string          `json:"time_entry_id,omitempty"`
	ProjectID   *string          `json:"project_id,omitempty"`
	Description *string          `json:"description,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
}

func (p LineItemParams) input() invoice.LineItemInput {
	return invoice.LineItemInput{
		TimeEntryID: p.TimeEntryID,
		ProjectID:   p.ProjectID,
		Description: p.Description,
		Quantity:    p.Quantity,
		Rate:        p.Rate,
	}
}

type CreateInvoiceParams struct {
	ClientID            string           `json:"client_id"`
	InvoiceNumber       string           `json:"invoice_number,omitempty"`
	Status              invoice.Status   `json:"status,omitempty"`
	InvoiceDate         *string          `json:"invoice_date,omitempty"`
	DueDate             *string          `json:"due_date,omitempty"`
	DiscountAmount      *decimal.Decimal `json:"discount_amount,omitempty"`
	TaxRate             *decimal.Decimal `json:"tax_rate,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	PaymentInstructions string           `json:"payment_instructions,omitempty"`
	LineItems           []LineItemParams `json:"line_items"`
}

type ListInvoicesParams struct {
	ClientID string         `json:"client_id,omitempty"`
	Status   invoice.Status `json:"status,omitempty"`
	Overdue  bool           `json:"overdue,omitempty"`
	Unpaid   bool           `json:"unpaid,omitempty"`
	Limit    int            `json:"limit,omitempty"`
	Offset   int            `json:"offset,omitempty"`
}

type UpdateInvoiceParams struct {
	ID                  string           `json:"id"`
	InvoiceNumber       *string          `json:"invoice_number,omitempty"`
	Status              *invoice.Status  `json:"status,omitempty"`
	InvoiceDate         *string          `json:"invoice_date,omitempty"`
	DueDate             *string          `json:"due_date,omitempty"`
	PaidDate            *string          `json:"paid_date,omitempty"`
	DiscountAmount      *decimal.Decimal `json:"discount_amount,omitempty"`
	TaxRate             *decimal.Decimal `json:"tax_rate,omitempty"`
	Notes               *string          `json:"notes,omitempty"`
	PaymentInstructions *string          `json:"payment_instructions,omitempty"`
}

type AddLineItemParams struct {
	InvoiceID string `json:"invoice_id"`
	LineItemParams
}

type UpdateLineItemParams struct {
	InvoiceID  string `json:"invoice_id"`
	LineItemID string `json:"line_item_id"`
	LineItemParams
}

type RemoveLineItemParams struct {
	InvoiceID  string `json:"invoice_id"`
	LineItemID string `json:"line_item_id"`
}

type RecordPaymentParams struct {
	InvoiceID       string           `json:"invoice_id"`
	Amount          *decimal.Decimal `json:"amount"`
	PaymentDate     *string          `json:"payment_date"`
	PaymentMethod   payment.Method   `json:"payment_method"`
	ReferenceNumber string           `json:"reference_number,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

type SettleInvoiceParams struct {
	InvoiceID       string         `json:"invoice_id"`
	PaymentDate     *string        `json:"payment_date,omitempty"`
	PaymentMethod   payment.Method `json:"payment_method"`
	ReferenceNumber string         `json:"reference_number,omitempty"`
	Notes           string         `json:"notes,omitempty"`
}

type InvoiceIDParams struct {
	InvoiceID string `json:"invoice_id"`
}

type DeletePaymentParams struct {
	InvoiceID string `json:"invoice_id"`
	PaymentID string `json:"payment_id"`
}

type GetRecentActivityParams struct {
	EntityType   string `json:"entity_type,omitempty"`
	EntityID     string `json:"entity_id,omitempty"`
	ActivityType string `json:"activity_type,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// DeletedResponse acknowledges a delete.
type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// RunningTimerResponse reports the open timer, if any.
type RunningTimerResponse struct {
	Running bool                 `json:"running"`
	Entry   *timeentry.TimeEntry `json:"entry,omitempty"`
}
