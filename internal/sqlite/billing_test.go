package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/billable/internal/domain/activity"
	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/rpggio/billable/internal/domain/payment"
	"github.com/rpggio/billable/internal/domain/profile"
	"github.com/rpggio/billable/internal/domain/timeentry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type services struct {
	tracker  *timeentry.Service
	ledger   *invoice.Service
	payments *payment.Service
	activity *activity.Service
}

func newServices(db *DB, clock *time.Time) *services {
	now := func() time.Time { return *clock }

	entries := NewTimeEntryRepository(db)
	clients := NewClientRepository(db)
	projects := NewProjectRepository(db)
	invoices := NewInvoiceRepository(db)
	profiles := NewProfileRepository(db)
	log := activity.NewService(NewActivityRepository(db), nil)

	return &services{
		tracker: timeentry.NewService(db, entries, clients, projects, log, nil, nil).WithClock(now),
		ledger: invoice.NewService(invoice.Deps{
			Tx:       db,
			Invoices: invoices,
			Clients:  clients,
			Projects: projects,
			Entries:  entries,
			Profiles: profiles,
			Numbers:  profile.NewSequencer(profiles, nil).WithClock(now),
			Activity: log,
		}).WithClock(now),
		payments: payment.NewService(db, NewPaymentRepository(db), invoices, log, nil, nil).WithClock(now),
		activity: log,
	}
}

func TestConcurrentStartsLeaveOneRunningTimer(t *testing.T) {
	db := NewTestDB(t)
	seedClient(t, db, "c1", "Acme")
	seedProject(t, db, "p1", "c1", "Website", "120")
	clock := t0
	svc := newServices(db, &clock)

	var started, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := svc.tracker.Start(context.Background(), timeentry.StartRequest{
				ClientID:  "c1",
				ProjectID: "p1",
				Task:      "Build",
			})
			switch {
			case err == nil:
				started.Add(1)
			case errors.Is(err, timeentry.ErrTimerRunning):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), started.Load())
	require.Equal(t, int32(7), rejected.Load())

	var running int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM time_entries WHERE status = 'running'`).Scan(&running))
	require.Equal(t, 1, running)
}

func TestBillingLifecycle(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	clock := time.Date(2026, 3, 14, 10, 2, 30, 0, time.UTC)
	svc := newServices(db, &clock)

	terms := 30
	require.NoError(t, NewProfileRepository(db).Save(ctx, &profile.Profile{
		EntityType:          profile.EntityBusiness,
		BusinessName:        "Rivera Consulting",
		Email:               "sam@example.test",
		InvoicePrefix:       "RC",
		NextInvoiceNumber:   1,
		DefaultPaymentTerms: &terms,
		CreatedAt:           clock,
		UpdatedAt:           clock,
	}))

	rate := decimal.RequireFromString("120")
	entry, err := svc.tracker.Start(ctx, timeentry.StartRequest{
		NewClientName:  "Acme",
		NewProjectName: "Website",
		NewProjectRate: &rate,
		Task:           "Landing page",
	})
	require.NoError(t, err)

	clock = time.Date(2026, 3, 14, 10, 33, 0, 0, time.UTC)
	entry, err = svc.tracker.Stop(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1800), entry.DurationSeconds)
	require.Equal(t, "60.00", entry.Earnings.StringFixed(2))

	unbilled, err := svc.tracker.Unbilled(ctx, entry.ClientID)
	require.NoError(t, err)
	require.Len(t, unbilled, 1)
	require.Equal(t, "0.50", unbilled[0].DurationHours.StringFixed(2))

	entryID := entry.ID
	inv, err := svc.ledger.Create(ctx, invoice.CreateRequest{
		ClientID:  entry.ClientID,
		Status:    invoice.StatusSent,
		LineItems: []invoice.LineItemInput{{TimeEntryID: &entryID}, {}},
	})
	require.NoError(t, err)
	require.Equal(t, "RC-2026-001", inv.InvoiceNumber)
	require.Equal(t, "60.00", inv.Total.StringFixed(2))
	require.Equal(t, time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC), inv.DueDate)
	require.Len(t, inv.LineItems, 1)
	require.Equal(t, "Landing page", inv.LineItems[0].Description)

	billed, err := svc.tracker.Get(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, timeentry.BillingBilled, billed.Billing)

	unbilled, err = svc.tracker.Unbilled(ctx, entry.ClientID)
	require.NoError(t, err)
	require.Empty(t, unbilled)

	// A second invoice cannot bill the same entry.
	_, err = svc.ledger.Create(ctx, invoice.CreateRequest{
		ClientID:  entry.ClientID,
		LineItems: []invoice.LineItemInput{{TimeEntryID: &entryID}},
	})
	require.ErrorIs(t, err, invoice.ErrTimeEntryUnavailable)

	paidOn := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	first := decimal.RequireFromString("20")
	res, err := svc.payments.Record(ctx, inv.ID, payment.RecordRequest{
		Amount:        &first,
		PaymentDate:   &paidOn,
		PaymentMethod: payment.MethodZelle,
	})
	require.NoError(t, err)
	require.Equal(t, invoice.StatusPartiallyPaid, res.Invoice.Status)
	require.Nil(t, res.Invoice.PaidDate)

	settled, err := svc.payments.SettleInFull(ctx, inv.ID, payment.SettleRequest{
		PaymentDate:   &paidOn,
		PaymentMethod: payment.MethodCheck,
	})
	require.NoError(t, err)
	require.Equal(t, "40.00", settled.Payment.Amount.StringFixed(2))
	require.Equal(t, invoice.StatusPaid, settled.Invoice.Status)
	require.Equal(t, paidOn, *settled.Invoice.PaidDate)

	locked, err := svc.tracker.Get(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, timeentry.BillingPaid, locked.Billing)
	require.ErrorIs(t, svc.tracker.Delete(ctx, entry.ID), timeentry.ErrEntryLocked)

	stored, err := svc.ledger.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, invoice.StatusPaid, stored.Status)
	require.True(t, stored.AmountDue().IsZero())

	after, err := svc.payments.Delete(ctx, inv.ID, settled.Payment.ID)
	require.NoError(t, err)
	require.Equal(t, invoice.StatusPartiallyPaid, after.Status)

	after, err = svc.payments.Delete(ctx, inv.ID, res.Payment.ID)
	require.NoError(t, err)
	require.Equal(t, invoice.StatusSent, after.Status)
	require.Nil(t, after.PaidDate)

	trail, err := svc.activity.Recent(ctx, activity.ListActivityOptions{
		EntityType: activity.EntityInvoice,
		EntityID:   inv.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, trail)
	require.Equal(t, activity.TypeStatusChanged, trail[0].ActivityType)
}

func TestInvoiceNumbersAdvance(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	clock := t0
	svc := newServices(db, &clock)
	seedClient(t, db, "c1", "Acme")

	require.NoError(t, NewProfileRepository(db).Save(ctx, &profile.Profile{
		EntityType:        profile.EntityIndividual,
		FirstName:         "Sam",
		Email:             "sam@example.test",
		InvoicePrefix:     "INV",
		NextInvoiceNumber: 41,
		CreatedAt:         t0,
		UpdatedAt:         t0,
	}))

	desc := "Retainer"
	qty := decimal.NewFromInt(1)
	rate := decimal.NewFromInt(500)
	due := t0.AddDate(0, 0, 15)
	item := invoice.LineItemInput{Description: &desc, Quantity: &qty, Rate: &rate}

	var numbers []string
	for i := 0; i < 2; i++ {
		inv, err := svc.ledger.Create(ctx, invoice.CreateRequest{
			ClientID:  "c1",
			DueDate:   &due,
			LineItems: []invoice.LineItemInput{item},
		})
		require.NoError(t, err)
		numbers = append(numbers, inv.InvoiceNumber)
	}
	require.Equal(t, []string{"INV-2026-041", "INV-2026-042"}, numbers)

	_, err := svc.ledger.Create(ctx, invoice.CreateRequest{
		ClientID:      "c1",
		InvoiceNumber: "INV-2026-043",
		DueDate:       &due,
		LineItems:     []invoice.LineItemInput{item},
	})
	require.NoError(t, err)

	// The claimed number collides, so the whole transaction rolls back and
	// the counter is not advanced.
	_, err = svc.ledger.Create(ctx, invoice.CreateRequest{
		ClientID:  "c1",
		DueDate:   &due,
		LineItems: []invoice.LineItemInput{item},
	})
	require.ErrorIs(t, err, invoice.ErrDuplicateNumber)

	p, err := NewProfileRepository(db).Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 43, p.NextInvoiceNumber)
}

func TestInvoiceEditsNumber(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	clock := t0
	svc := newServices(db, &clock)
	seedClient(t, db, "c1", "Acme")
	seedInvoice(t, db, "i1", "c1", "INV-2026-001", invoice.StatusDraft)
	seedInvoice(t, db, "i2", "c1", "INV-2026-002", invoice.StatusDraft)

	custom := "CUSTOM-9"
	updated, err := svc.ledger.Update(ctx, "i1", invoice.UpdateRequest{InvoiceNumber: &custom})
	require.NoError(t, err)
	require.Equal(t, custom, updated.InvoiceNumber)

	stored, err := svc.ledger.Get(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, custom, stored.InvoiceNumber)

	taken := "INV-2026-002"
	_, err = svc.ledger.Update(ctx, "i1", invoice.UpdateRequest{InvoiceNumber: &taken})
	require.ErrorIs(t, err, invoice.ErrDuplicateNumber)

	stored, err = svc.ledger.Get(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, custom, stored.InvoiceNumber)
}

func TestInvoiceReadsDeriveBalanceAndOverdue(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	clock := t0
	svc := newServices(db, &clock)
	seedClient(t, db, "c1", "Acme")
	seedInvoice(t, db, "i1", "c1", "INV-2026-001", invoice.StatusSent)

	onTime, err := svc.ledger.Get(ctx, "i1")
	require.NoError(t, err)
	require.False(t, onTime.Overdue)
	require.Equal(t, "1000.00", onTime.Balance.StringFixed(2))

	clock = t0.AddDate(0, 0, 31)
	paidOn := clock
	amount := decimal.RequireFromString("250")
	res, err := svc.payments.Record(ctx, "i1", payment.RecordRequest{
		Amount:        &amount,
		PaymentDate:   &paidOn,
		PaymentMethod: payment.MethodZelle,
	})
	require.NoError(t, err)
	require.Equal(t, "750.00", res.Invoice.Balance.StringFixed(2))
	// Partially paid invoices are tracked as unpaid, not overdue.
	require.False(t, res.Invoice.Overdue)

	seedInvoice(t, db, "i2", "c1", "INV-2026-002", invoice.StatusSent)
	late, err := svc.ledger.Get(ctx, "i2")
	require.NoError(t, err)
	require.True(t, late.Overdue)

	listed, err := svc.ledger.List(ctx, invoice.ListOptions{Unpaid: true})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	for _, inv := range listed {
		require.Equal(t, inv.AmountDue().StringFixed(2), inv.Balance.StringFixed(2))
		require.Equal(t, inv.ID == "i2", inv.Overdue, inv.ID)
	}
}

func TestInvoiceReadsSeeConsistentTotals(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	clock := t0
	svc := newServices(db, &clock)
	seedClient(t, db, "c1", "Acme")
	seedInvoice(t, db, "i1", "c1", "INV-2026-001", invoice.StatusDraft)

	discount := decimal.RequireFromString("5")
	_, err := svc.ledger.Update(ctx, "i1", invoice.UpdateRequest{DiscountAmount: &discount})
	require.NoError(t, err)

	var done atomic.Bool
	var reads atomic.Int32
	var g errgroup.Group
	g.Go(func() error {
		defer done.Store(true)
		for i := 1; i <= 200; i++ {
			qty := decimal.NewFromInt(int64(i))
			if _, err := svc.ledger.UpdateLineItem(ctx, "i1", "i1-li", invoice.LineItemInput{Quantity: &qty}); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for {
			finished := done.Load()
			inv, err := svc.ledger.Get(ctx, "i1")
			if err != nil {
				return err
			}
			sum := decimal.Zero
			for _, item := range inv.LineItems {
				sum = sum.Add(item.Amount)
			}
			if !sum.Equal(inv.Subtotal) || !inv.Total.Equal(inv.Subtotal.Sub(inv.DiscountAmount)) {
				return fmt.Errorf("torn read: items=%s subtotal=%s total=%s",
					sum.StringFixed(2), inv.Subtotal.StringFixed(2), inv.Total.StringFixed(2))
			}
			reads.Add(1)
			if finished {
				return nil
			}
		}
	})
	require.NoError(t, g.Wait())
	require.Positive(t, reads.Load())

	final, err := svc.ledger.Get(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, "19995.00", final.Total.StringFixed(2))
}
