package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/billable/internal/apperr"
	"github.com/rpggio/billable/internal/domain/activity"
	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/rpggio/billable/internal/metrics"
	"github.com/rpggio/billable/internal/repository"
	"github.com/shopspring/decimal"
)

// Service is the payment reconciler.
type Service struct {
	tx       repository.Transactor
	payments Repository
	invoices invoice.Repository
	activity activity.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new payment reconciler.
func NewService(
	tx repository.Transactor,
	payments Repository,
	invoices invoice.Repository,
	recorder activity.Recorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	if recorder == nil {
		recorder = activity.Discard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		tx:       tx,
		payments: payments,
		invoices: invoices,
		activity: recorder,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordRequest describes a received payment.
type RecordRequest struct {
	Amount          *decimal.Decimal
	PaymentDate     *time.Time
	PaymentMethod   Method
	ReferenceNumber string
	Notes           string
}

// SettleRequest describes a payment for whatever is still due. PaymentDate
// defaults to today.
type SettleRequest struct {
	PaymentDate     *time.Time
	PaymentMethod   Method
	ReferenceNumber string
	Notes           string
}

// Result is a payment together with the reconciled invoice.
type Result struct {
	Payment *Payment         `json:"payment"`
	Invoice *invoice.Invoice `json:"invoice"`
}

func validate(req RecordRequest) error {
	v := apperr.NewValidation()
	if req.Amount == nil {
		v.Add("amount", "can't be blank")
	} else if !req.Amount.IsPositive() {
		v.Add("amount", "must be greater than 0")
	}
	if req.PaymentDate == nil || req.PaymentDate.IsZero() {
		v.Add("payment_date", "can't be blank")
	}
	if req.PaymentMethod == "" {
		v.Add("payment_method", "can't be blank")
	} else if !req.PaymentMethod.Valid() {
		v.Add("payment_method", "is not included in the list")
	}
	return v.Err()
}

// Record stores a payment and reconciles the invoice in one transaction.
func (s *Service) Record(ctx context.Context, invoiceID string, req RecordRequest) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var res *Result
	var from invoice.Status
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		res, from, err = s.record(ctx, invoiceID, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentRecorded(string(res.Payment.PaymentMethod), res.Payment.Amount)
	s.metrics.StatusTransition(string(from), string(res.Invoice.Status))
	s.logger.Info("payment recorded",
		"invoice_id", invoiceID,
		"payment_id", res.Payment.ID,
		"amount", res.Payment.Amount.StringFixed(2),
		"status", res.Invoice.Status,
	)
	return res, nil
}

func (s *Service) record(ctx context.Context, invoiceID string, req RecordRequest) (*Result, invoice.Status, error) {
	inv, err := s.loadInvoice(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	p := &Payment{
		ID:              uuid.NewString(),
		InvoiceID:       inv.ID,
		Amount:          *req.Amount,
		PaymentDate:     invoice.Date(*req.PaymentDate),
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		Notes:           req.Notes,
		CreatedAt:       now,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, "", fmt.Errorf("creating payment: %w", err)
	}
	if err := s.activity.Record(ctx, activity.TypePaymentRecorded, activity.EntityInvoice, inv.ID,
		fmt.Sprintf("Recorded %s payment of %s", p.PaymentMethod, p.Amount.StringFixed(2)),
		map[string]string{"payment_id": p.ID}); err != nil {
		return nil, "", err
	}

	from, err := s.reconcile(ctx, inv, &p.PaymentDate, now)
	if err != nil {
		return nil, "", err
	}
	inv.Derive(now)
	return &Result{Payment: p, Invoice: inv}, from, nil
}

// Delete removes a payment and reconciles the invoice without a date.
func (s *Service) Delete(ctx context.Context, invoiceID, paymentID string) (*invoice.Invoice, error) {
	var (
		inv     *invoice.Invoice
		removed *Payment
		from    invoice.Status
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.loadInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		removed, err = s.payments.Get(ctx, paymentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("getting payment: %w", err)
		}
		if removed.InvoiceID != inv.ID {
			return ErrPaymentNotFound
		}

		if err := s.payments.Delete(ctx, paymentID); err != nil {
			return fmt.Errorf("deleting payment: %w", err)
		}
		if err := s.activity.Record(ctx, activity.TypePaymentDeleted, activity.EntityInvoice, inv.ID,
			fmt.Sprintf("Deleted %s payment of %s", removed.PaymentMethod, removed.Amount.StringFixed(2)),
			map[string]string{"payment_id": paymentID}); err != nil {
			return err
		}

		from, err = s.reconcile(ctx, inv, nil, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentDeleted(string(removed.PaymentMethod))
	s.metrics.StatusTransition(string(from), string(inv.Status))
	s.logger.Info("payment deleted", "invoice_id", invoiceID, "payment_id", paymentID, "status", inv.Status)
	inv.Derive(s.now())
	return inv, nil
}

// SettleInFull records a payment for the amount still due.
func (s *Service) SettleInFull(ctx context.Context, invoiceID string, req SettleRequest) (*Result, error) {
	if req.PaymentDate == nil {
		today := invoice.Date(s.now())
		req.PaymentDate = &today
	}

	var res *Result
	var from invoice.Status
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := s.loadInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		due := inv.AmountDue()
		if !due.IsPositive() {
			return ErrNothingDue
		}

		record := RecordRequest{
			Amount:          &due,
			PaymentDate:     req.PaymentDate,
			PaymentMethod:   req.PaymentMethod,
			ReferenceNumber: req.ReferenceNumber,
			Notes:           req.Notes,
		}
		if err := validate(record); err != nil {
			return err
		}
		res, from, err = s.record(ctx, invoiceID, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentRecorded(string(res.Payment.PaymentMethod), res.Payment.Amount)
	s.metrics.StatusTransition(string(from), string(res.Invoice.Status))
	return res, nil
}

// List returns an invoice's payments.
func (s *Service) List(ctx context.Context, invoiceID string) ([]Payment, error) {
	if _, err := s.loadInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.payments.List(ctx, invoiceID)
}

func (s *Service) reconcile(ctx context.Context, inv *invoice.Invoice, paidOn *time.Time, now time.Time) (invoice.Status, error) {
	sum, err := s.payments.Sum(ctx, inv.ID)
	if err != nil {
		return "", fmt.Errorf("summing payments: %w", err)
	}

	from := Reconcile(inv, sum, paidOn, now)
	inv.UpdatedAt = now
	if err := s.invoices.Update(ctx, inv); err != nil {
		return "", fmt.Errorf("updating invoice status: %w", err)
	}
	if from != inv.Status {
		if err := s.activity.Record(ctx, activity.TypeStatusChanged, activity.EntityInvoice, inv.ID,
			fmt.Sprintf("Invoice %s moved from %s to %s", inv.InvoiceNumber, from, inv.Status),
			map[string]string{"from": string(from), "to": string(inv.Status)}); err != nil {
			return "", err
		}
	}
	return from, nil
}

func (s *Service) loadInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invoice.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	return inv, nil
}
