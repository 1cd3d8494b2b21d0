package invoice

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTransitionStatus(t *testing.T) {
	today := time.Date(2026, 4, 10, 15, 4, 5, 0, time.UTC)
	earlier := day(2026, 4, 1)

	cases := []struct {
		name     string
		from     Status
		paidDate *time.Time
		to       Status
		explicit *time.Time
		want     *time.Time
	}{
		{name: "into paid sets today", from: StatusSent, to: StatusPaid, want: ptr(day(2026, 4, 10))},
		{name: "into paid keeps existing", from: StatusPartiallyPaid, paidDate: &earlier, to: StatusPaid, want: &earlier},
		{name: "explicit date wins", from: StatusSent, to: StatusPaid, explicit: ptr(day(2026, 3, 30)), want: ptr(day(2026, 3, 30))},
		{name: "explicit date applies without status change", from: StatusPaid, paidDate: &earlier, to: StatusPaid, explicit: ptr(day(2026, 4, 5)), want: ptr(day(2026, 4, 5))},
		{name: "away from paid clears", from: StatusPaid, paidDate: &earlier, to: StatusSent},
		{name: "paid to partially keeps", from: StatusPaid, paidDate: &earlier, to: StatusPartiallyPaid, want: &earlier},
		{name: "into partially does not set", from: StatusSent, to: StatusPartiallyPaid},
		{name: "cancel clears", from: StatusPartiallyPaid, paidDate: &earlier, to: StatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := &Invoice{Status: tc.from, PaidDate: tc.paidDate}
			prev := TransitionStatus(inv, tc.to, tc.explicit, today)
			require.Equal(t, tc.from, prev)
			require.Equal(t, tc.to, inv.Status)
			if tc.want == nil {
				require.Nil(t, inv.PaidDate)
				return
			}
			require.NotNil(t, inv.PaidDate)
			require.True(t, tc.want.Equal(*inv.PaidDate), "paid_date = %s", inv.PaidDate)
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range Statuses {
		require.True(t, s.Valid())
	}
	require.False(t, Status("refunded").Valid())
	require.True(t, StatusPartiallyPaid.PaidLike())
	require.False(t, StatusOverdue.PaidLike())
}

func TestComputeTotals(t *testing.T) {
	inv := &Invoice{
		DiscountAmount: decimal.RequireFromString("25"),
		LineItems: []LineItem{
			{Quantity: decimal.RequireFromString("1.333"), Rate: decimal.RequireFromString("75")},
			{Quantity: decimal.RequireFromString("2"), Rate: decimal.RequireFromString("100.005")},
		},
	}
	inv.ComputeTotals()

	require.Equal(t, "99.98", inv.LineItems[0].Amount.StringFixed(2))
	require.Equal(t, "200.01", inv.LineItems[1].Amount.StringFixed(2))
	require.Equal(t, "299.99", inv.Subtotal.StringFixed(2))
	require.Equal(t, "274.99", inv.Total.StringFixed(2))
}

func TestIsOverdue(t *testing.T) {
	today := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	inv := &Invoice{Status: StatusSent, DueDate: day(2026, 4, 9)}
	require.True(t, inv.IsOverdue(today))

	inv.DueDate = day(2026, 4, 10)
	require.False(t, inv.IsOverdue(today))

	inv.DueDate = day(2026, 4, 1)
	inv.Status = StatusPartiallyPaid
	require.False(t, inv.IsOverdue(today))
}

func TestDerive(t *testing.T) {
	today := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	inv := &Invoice{
		Status:     StatusSent,
		DueDate:    day(2026, 4, 9),
		Total:      decimal.RequireFromString("300"),
		AmountPaid: decimal.RequireFromString("120.50"),
	}
	inv.Derive(today)
	require.True(t, inv.Overdue)
	require.Equal(t, "179.50", inv.Balance.StringFixed(2))

	inv.Status = StatusPaid
	inv.AmountPaid = inv.Total
	inv.Derive(today)
	require.False(t, inv.Overdue)
	require.True(t, inv.Balance.IsZero())
}

func TestUnpaid(t *testing.T) {
	var unpaid []Status
	for _, s := range Statuses {
		if s.Unpaid() {
			unpaid = append(unpaid, s)
		}
	}
	require.Equal(t, []Status{StatusSent, StatusPartiallyPaid, StatusOverdue}, unpaid)
}

func TestUpdateRequest_OnlyStatus(t *testing.T) {
	require.True(t, UpdateRequest{Status: ptr(StatusSent)}.onlyStatus())
	require.True(t, UpdateRequest{}.onlyStatus())

	typ := reflect.TypeOf(UpdateRequest{})
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Name == "Status" {
			continue
		}
		t.Run(field.Name, func(t *testing.T) {
			require.Equal(t, reflect.Pointer, field.Type.Kind())

			req := UpdateRequest{Status: ptr(StatusSent)}
			reflect.ValueOf(&req).Elem().Field(i).Set(reflect.New(field.Type.Elem()))
			require.False(t, req.onlyStatus(), "a paid invoice would accept %s", field.Name)
		})
	}
}

func ptr[T any](v T) *T { return &v }
