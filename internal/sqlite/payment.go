package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/rpggio/billable/internal/domain/payment"
	"github.com/rpggio/billable/internal/repository"
	"github.com/shopspring/decimal"
)

// PaymentRepository implements payment.Repository for SQLite
type PaymentRepository struct {
	db *DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, invoice_id, amount, payment_date, payment_method,
	reference_number, notes, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID,
		&p.InvoiceID,
		&p.Amount,
		&p.PaymentDate,
		&p.PaymentMethod,
		&p.ReferenceNumber,
		&p.Notes,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.PaymentDate = invoice.Date(p.PaymentDate)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// Create inserts a payment
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `INSERT INTO invoice_payments (` + paymentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		p.ID,
		p.InvoiceID,
		p.Amount,
		invoice.Date(p.PaymentDate),
		p.PaymentMethod,
		p.ReferenceNumber,
		p.Notes,
		utc(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", classify(err))
	}
	return nil
}

// Get retrieves a payment by ID
func (r *PaymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM invoice_payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// Delete removes a payment
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM invoice_payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return requireAffected(res)
}

// List returns an invoice's payments oldest first
func (r *PaymentRepository) List(ctx context.Context, invoiceID string) ([]payment.Payment, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM invoice_payments WHERE invoice_id = ? ORDER BY payment_date, created_at`,
		invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}

// Sum totals an invoice's payments
func (r *PaymentRepository) Sum(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	sum, err := sumAmounts(ctx, r.db.conn(ctx), `SELECT amount FROM invoice_payments WHERE invoice_id = ?`, invoiceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return sum, nil
}
