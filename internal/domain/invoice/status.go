package invoice

import "time"

// Status is the invoice lifecycle state.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusSent          Status = "sent"
	StatusViewed        Status = "viewed"
	StatusPaid          Status = "paid"
	StatusPartiallyPaid Status = "partially_paid"
	StatusOverdue       Status = "overdue"
	StatusCancelled     Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusDraft,
	StatusSent,
	StatusViewed,
	StatusPaid,
	StatusPartiallyPaid,
	StatusOverdue,
	StatusCancelled,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// PaidLike reports statuses that carry a paid date.
func (s Status) PaidLike() bool {
	return s == StatusPaid || s == StatusPartiallyPaid
}

// Unpaid reports statuses still awaiting money.
func (s Status) Unpaid() bool {
	return s == StatusSent || s == StatusOverdue || s == StatusPartiallyPaid
}

// TransitionStatus moves inv to status `to` and maintains PaidDate. It is the
// only place that decides paid dates, for both direct edits and payment
// reconciliation:
//   - an explicit paidDate is always applied;
//   - entering paid without a paid date sets it to today;
//   - entering a status that is not paid-like clears it.
//
// It returns the previous status.
func TransitionStatus(inv *Invoice, to Status, paidDate *time.Time, today time.Time) Status {
	from := inv.Status
	inv.Status = to
	if paidDate != nil {
		d := Date(*paidDate)
		inv.PaidDate = &d
	}
	if from == to {
		return from
	}

	switch {
	case to == StatusPaid && inv.PaidDate == nil:
		d := Date(today)
		inv.PaidDate = &d
	case !to.PaidLike():
		inv.PaidDate = nil
	}
	return from
}
