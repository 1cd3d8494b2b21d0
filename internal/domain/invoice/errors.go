package invoice

import "github.com/rpggio/billable/internal/apperr"

var (
	// ErrInvoiceNotFound indicates the invoice doesn't exist.
	ErrInvoiceNotFound = apperr.New(apperr.ErrNotFound, "invoice not found")
	// ErrLineItemNotFound indicates the line item isn't on the invoice.
	ErrLineItemNotFound = apperr.New(apperr.ErrNotFound, "line item not found")
	// ErrPaidInvoiceLocked indicates a paid invoice edit touched more than its status.
	ErrPaidInvoiceLocked = apperr.New(apperr.ErrState, "a paid invoice can only change its status")
	// ErrLineItemsLocked indicates a line item change on a paid invoice.
	ErrLineItemsLocked = apperr.New(apperr.ErrState, "line items of a paid invoice can't be changed")
	// ErrTimeEntryUnavailable indicates a time entry that is running or already invoiced.
	ErrTimeEntryUnavailable = apperr.New(apperr.ErrConflict, "time entry is running or already invoiced")
	// ErrDuplicateNumber indicates the invoice number is taken.
	ErrDuplicateNumber = apperr.New(apperr.ErrConflict, "invoice number already exists")
)
