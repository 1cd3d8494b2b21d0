package payment

import "github.com/rpggio/billable/internal/apperr"

var (
	// ErrPaymentNotFound indicates the payment isn't on the invoice.
	ErrPaymentNotFound = apperr.New(apperr.ErrNotFound, "payment not found")
	// ErrNothingDue indicates the invoice has no outstanding amount.
	ErrNothingDue = apperr.New(apperr.ErrState, "invoice has no amount due")
)
