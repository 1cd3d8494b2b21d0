package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/rpggio/billable/internal/repository"
)

// InvoiceRepository implements invoice.Repository for SQLite
type InvoiceRepository struct {
	db *DB
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceSelect = `
	SELECT
		i.id, i.client_id, i.invoice_number, i.status,
		i.invoice_date, i.due_date, i.paid_date,
		i.subtotal, i.discount_amount, i.tax_rate, i.total,
		i.notes, i.payment_instructions, i.created_at, i.updated_at,
		c.name
	FROM invoices i
	JOIN clients c ON c.id = i.client_id`

const lineItemColumns = `
	id, invoice_id, time_entry_id, project_id, description,
	quantity, rate, amount, position, created_at, updated_at`

func scanInvoice(row interface{ Scan(...any) error }) (*invoice.Invoice, error) {
	var (
		inv      invoice.Invoice
		paidDate sql.NullTime
	)
	err := row.Scan(
		&inv.ID,
		&inv.ClientID,
		&inv.InvoiceNumber,
		&inv.Status,
		&inv.InvoiceDate,
		&inv.DueDate,
		&paidDate,
		&inv.Subtotal,
		&inv.DiscountAmount,
		&inv.TaxRate,
		&inv.Total,
		&inv.Notes,
		&inv.PaymentInstructions,
		&inv.CreatedAt,
		&inv.UpdatedAt,
		&inv.ClientName,
	)
	if err != nil {
		return nil, err
	}
	inv.InvoiceDate = invoice.Date(inv.InvoiceDate)
	inv.DueDate = invoice.Date(inv.DueDate)
	inv.PaidDate = timePtr(paidDate)
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return &inv, nil
}

func scanLineItem(row interface{ Scan(...any) error }) (*invoice.LineItem, error) {
	var (
		item        invoice.LineItem
		timeEntryID sql.NullString
		projectID   sql.NullString
	)
	err := row.Scan(
		&item.ID,
		&item.InvoiceID,
		&timeEntryID,
		&projectID,
		&item.Description,
		&item.Quantity,
		&item.Rate,
		&item.Amount,
		&item.Position,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.TimeEntryID = stringPtr(timeEntryID)
	item.ProjectID = stringPtr(projectID)
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return &item, nil
}

// Create inserts the invoice row and its line items
func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, client_id, invoice_number, status, invoice_date, due_date, paid_date,
			subtotal, discount_amount, tax_rate, total, notes, payment_instructions,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		inv.ID,
		inv.ClientID,
		inv.InvoiceNumber,
		inv.Status,
		invoice.Date(inv.InvoiceDate),
		invoice.Date(inv.DueDate),
		nullTime(inv.PaidDate),
		inv.Subtotal,
		inv.DiscountAmount,
		inv.TaxRate,
		inv.Total,
		inv.Notes,
		inv.PaymentInstructions,
		utc(inv.CreatedAt),
		utc(inv.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", classify(err))
	}

	for i := range inv.LineItems {
		inv.LineItems[i].InvoiceID = inv.ID
		if err := r.AddLineItem(ctx, &inv.LineItems[i]); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves an invoice with its line items and amount paid
func (r *InvoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	q := r.db.conn(ctx)

	inv, err := scanInvoice(q.QueryRowContext(ctx, invoiceSelect+` WHERE i.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	items, err := r.lineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items

	inv.AmountPaid, err = sumAmounts(ctx, q, `SELECT amount FROM invoice_payments WHERE invoice_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) lineItems(ctx context.Context, invoiceID string) ([]invoice.LineItem, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx,
		`SELECT `+lineItemColumns+` FROM invoice_line_items WHERE invoice_id = ? ORDER BY position, created_at`,
		invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	var items []invoice.LineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line item rows: %w", err)
	}
	return items, nil
}

// Update stores the invoice row; line items are written separately
func (r *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices SET
			invoice_number = ?, status = ?, invoice_date = ?, due_date = ?, paid_date = ?,
			subtotal = ?, discount_amount = ?, tax_rate = ?, total = ?,
			notes = ?, payment_instructions = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.conn(ctx).ExecContext(ctx, query,
		inv.InvoiceNumber,
		inv.Status,
		invoice.Date(inv.InvoiceDate),
		invoice.Date(inv.DueDate),
		nullTime(inv.PaidDate),
		inv.Subtotal,
		inv.DiscountAmount,
		inv.TaxRate,
		inv.Total,
		inv.Notes,
		inv.PaymentInstructions,
		utc(inv.UpdatedAt),
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", classify(err))
	}
	return requireAffected(res)
}

// Delete removes an invoice with its line items and payments. Time entries
// it billed become unbilled again.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return requireAffected(res)
}

// List returns invoices newest first. Line items are not loaded.
func (r *InvoiceRepository) List(ctx context.Context, opts invoice.ListOptions) ([]invoice.Invoice, error) {
	var (
		conditions []string
		args       []any
	)
	if opts.ClientID != "" {
		conditions = append(conditions, "i.client_id = ?")
		args = append(args, opts.ClientID)
	}
	if opts.Status != "" {
		conditions = append(conditions, "i.status = ?")
		args = append(args, opts.Status)
	}
	if opts.Overdue {
		conditions = append(conditions, "i.status = ? AND i.due_date < ?")
		args = append(args, invoice.StatusSent, invoice.Date(opts.Today))
	}
	if opts.Unpaid {
		var marks []string
		for _, st := range invoice.Statuses {
			if st.Unpaid() {
				marks = append(marks, "?")
				args = append(args, st)
			}
		}
		conditions = append(conditions, "i.status IN ("+strings.Join(marks, ", ")+")")
	}

	query, args := page(invoiceSelect+where(conditions)+` ORDER BY i.invoice_date DESC, i.invoice_number DESC`,
		args, opts.Limit, opts.Offset)

	q := r.db.conn(ctx)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	var invoices []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}

	// The pool holds one connection, so payments are summed only after the
	// invoice rows are released.
	for i := range invoices {
		invoices[i].AmountPaid, err = sumAmounts(ctx, q,
			`SELECT amount FROM invoice_payments WHERE invoice_id = ?`, invoices[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum payments: %w", err)
		}
	}
	return invoices, nil
}

// AddLineItem inserts a line item. Referencing a time entry already billed
// elsewhere is reported as repository.ErrDuplicate.
func (r *InvoiceRepository) AddLineItem(ctx context.Context, item *invoice.LineItem) error {
	query := `INSERT INTO invoice_line_items (` + lineItemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		item.ID,
		item.InvoiceID,
		nullString(item.TimeEntryID),
		nullString(item.ProjectID),
		item.Description,
		item.Quantity,
		item.Rate,
		item.Amount,
		item.Position,
		utc(item.CreatedAt),
		utc(item.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to add line item: %w", classify(err))
	}
	return nil
}

// UpdateLineItem stores a line item's editable columns
func (r *InvoiceRepository) UpdateLineItem(ctx context.Context, item *invoice.LineItem) error {
	query := `
		UPDATE invoice_line_items SET
			project_id = ?, description = ?, quantity = ?, rate = ?, amount = ?,
			position = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.conn(ctx).ExecContext(ctx, query,
		nullString(item.ProjectID),
		item.Description,
		item.Quantity,
		item.Rate,
		item.Amount,
		item.Position,
		utc(item.UpdatedAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update line item: %w", classify(err))
	}
	return requireAffected(res)
}

// DeleteLineItem removes a line item
func (r *InvoiceRepository) DeleteLineItem(ctx context.Context, id string) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM invoice_line_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete line item: %w", err)
	}
	return requireAffected(res)
}
