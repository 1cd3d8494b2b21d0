package payment

import (
	"time"

	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

// Reconcile re-derives an invoice's status from the total of its payments.
// It looks only at the current sum, so the order payments arrive or leave in
// does not matter:
//   - nothing paid returns the invoice to sent and clears the paid date;
//   - paying the total or more marks it paid, dated paidOn when given and
//     otherwise keeping the existing paid date;
//   - anything in between is partially paid.
//
// It returns the status the invoice had before.
func Reconcile(inv *invoice.Invoice, amountPaid decimal.Decimal, paidOn *time.Time, today time.Time) invoice.Status {
	inv.AmountPaid = amountPaid
	switch {
	case !amountPaid.IsPositive():
		from := invoice.TransitionStatus(inv, invoice.StatusSent, nil, today)
		inv.PaidDate = nil
		return from
	case amountPaid.GreaterThanOrEqual(inv.Total):
		return invoice.TransitionStatus(inv, invoice.StatusPaid, paidOn, today)
	default:
		return invoice.TransitionStatus(inv, invoice.StatusPartiallyPaid, nil, today)
	}
}
