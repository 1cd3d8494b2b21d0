package payment

import (
	"testing"
	"time"

	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestReconcile_PartialThenFullThenReverse(t *testing.T) {
	today := time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC)
	firstDay := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	secondDay := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	inv := &invoice.Invoice{Status: invoice.StatusSent, Total: decimal.NewFromInt(1000)}

	Reconcile(inv, decimal.NewFromInt(400), &firstDay, today)
	require.Equal(t, invoice.StatusPartiallyPaid, inv.Status)
	require.Nil(t, inv.PaidDate)

	Reconcile(inv, decimal.NewFromInt(1000), &secondDay, today)
	require.Equal(t, invoice.StatusPaid, inv.Status)
	require.True(t, inv.PaidDate.Equal(secondDay))

	from := Reconcile(inv, decimal.NewFromInt(400), nil, today)
	require.Equal(t, invoice.StatusPaid, from)
	require.Equal(t, invoice.StatusPartiallyPaid, inv.Status)
	require.True(t, inv.PaidDate.Equal(secondDay))

	Reconcile(inv, decimal.Zero, nil, today)
	require.Equal(t, invoice.StatusSent, inv.Status)
	require.Nil(t, inv.PaidDate)
}

func TestReconcile_OverpaymentIsPaid(t *testing.T) {
	today := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	inv := &invoice.Invoice{Status: invoice.StatusSent, Total: decimal.NewFromInt(100)}

	Reconcile(inv, decimal.NewFromInt(150), nil, today)
	require.Equal(t, invoice.StatusPaid, inv.Status)
	require.True(t, inv.PaidDate.Equal(today))
	require.Equal(t, "-50", inv.AmountDue().String())
}

func TestReconcile_ZeroPaidWinsOverZeroTotal(t *testing.T) {
	today := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	paid := today
	inv := &invoice.Invoice{Status: invoice.StatusPaid, PaidDate: &paid, Total: decimal.Zero}

	Reconcile(inv, decimal.Zero, nil, today)
	require.Equal(t, invoice.StatusSent, inv.Status)
	require.Nil(t, inv.PaidDate)
}

func TestReconcile_SentAlreadyClearsStalePaidDate(t *testing.T) {
	today := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	stale := today
	inv := &invoice.Invoice{Status: invoice.StatusSent, PaidDate: &stale, Total: decimal.NewFromInt(10)}

	Reconcile(inv, decimal.Zero, nil, today)
	require.Nil(t, inv.PaidDate)
}
