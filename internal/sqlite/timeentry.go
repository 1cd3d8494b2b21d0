package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/billable/internal/domain/timeentry"
	"github.com/rpggio/billable/internal/repository"
)

// TimeEntryRepository implements timeentry.Repository for SQLite
type TimeEntryRepository struct {
	db *DB
}

// NewTimeEntryRepository creates a new TimeEntryRepository
func NewTimeEntryRepository(db *DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// timeEntrySelect joins the names and derives billing from the line item
// that references the entry, if any.
const timeEntrySelect = `
	SELECT
		te.id, te.client_id, te.project_id, te.task, te.notes,
		te.start_time, te.end_time, te.duration_seconds, te.rate, te.earnings,
		te.status, te.created_at, te.updated_at,
		c.name, p.name, li.invoice_id,
		CASE
			WHEN li.id IS NULL THEN 'unbilled'
			WHEN i.status = 'paid' THEN 'paid'
			ELSE 'billed'
		END
	FROM time_entries te
	JOIN clients c ON c.id = te.client_id
	JOIN projects p ON p.id = te.project_id
	LEFT JOIN invoice_line_items li ON li.time_entry_id = te.id
	LEFT JOIN invoices i ON i.id = li.invoice_id`

func scanTimeEntry(row interface{ Scan(...any) error }) (*timeentry.TimeEntry, error) {
	var (
		e         timeentry.TimeEntry
		endTime   sql.NullTime
		invoiceID sql.NullString
	)
	err := row.Scan(
		&e.ID,
		&e.ClientID,
		&e.ProjectID,
		&e.Task,
		&e.Notes,
		&e.StartTime,
		&endTime,
		&e.DurationSeconds,
		&e.Rate,
		&e.Earnings,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.ClientName,
		&e.ProjectName,
		&invoiceID,
		&e.Billing,
	)
	if err != nil {
		return nil, err
	}
	e.StartTime = e.StartTime.UTC()
	e.EndTime = timePtr(endTime)
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	e.InvoiceID = stringPtr(invoiceID)
	return &e, nil
}

// Create inserts a time entry. A second running entry violates
// idx_single_running_timer and is reported as repository.ErrDuplicate.
func (r *TimeEntryRepository) Create(ctx context.Context, e *timeentry.TimeEntry) error {
	query := `
		INSERT INTO time_entries (
			id, client_id, project_id, task, notes, start_time, end_time,
			duration_seconds, rate, earnings, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		e.ID,
		e.ClientID,
		e.ProjectID,
		e.Task,
		e.Notes,
		utc(e.StartTime),
		nullTime(e.EndTime),
		e.DurationSeconds,
		e.Rate,
		e.Earnings,
		e.Status,
		utc(e.CreatedAt),
		utc(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create time entry: %w", classify(err))
	}
	return nil
}

// Get retrieves a time entry by ID
func (r *TimeEntryRepository) Get(ctx context.Context, id string) (*timeentry.TimeEntry, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, timeEntrySelect+` WHERE te.id = ?`, id)
	e, err := scanTimeEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	return e, nil
}

// Update stores the entry's editable and derived columns
func (r *TimeEntryRepository) Update(ctx context.Context, e *timeentry.TimeEntry) error {
	query := `
		UPDATE time_entries SET
			client_id = ?, project_id = ?, task = ?, notes = ?,
			start_time = ?, end_time = ?, duration_seconds = ?,
			rate = ?, earnings = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.conn(ctx).ExecContext(ctx, query,
		e.ClientID,
		e.ProjectID,
		e.Task,
		e.Notes,
		utc(e.StartTime),
		nullTime(e.EndTime),
		e.DurationSeconds,
		e.Rate,
		e.Earnings,
		e.Status,
		utc(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update time entry: %w", classify(err))
	}
	return requireAffected(res)
}

// Delete removes a time entry. A referencing line item keeps its values and
// loses the link.
func (r *TimeEntryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	return requireAffected(res)
}

// List returns entries newest first
func (r *TimeEntryRepository) List(ctx context.Context, opts timeentry.ListOptions) ([]timeentry.TimeEntry, error) {
	var (
		conditions []string
		args       []any
	)
	if opts.ClientID != "" {
		conditions = append(conditions, "te.client_id = ?")
		args = append(args, opts.ClientID)
	}
	if opts.ProjectID != "" {
		conditions = append(conditions, "te.project_id = ?")
		args = append(args, opts.ProjectID)
	}
	if opts.Status != "" {
		conditions = append(conditions, "te.status = ?")
		args = append(args, opts.Status)
	}
	switch opts.Billing {
	case timeentry.BillingUnbilled:
		conditions = append(conditions, "li.id IS NULL")
	case timeentry.BillingBilled:
		conditions = append(conditions, "li.id IS NOT NULL AND i.status <> 'paid'")
	case timeentry.BillingPaid:
		conditions = append(conditions, "i.status = 'paid'")
	}

	query, args := page(timeEntrySelect+where(conditions)+` ORDER BY te.start_time DESC`, args, opts.Limit, opts.Offset)

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []timeentry.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entry rows: %w", err)
	}
	return entries, nil
}

// Running returns the open timer
func (r *TimeEntryRepository) Running(ctx context.Context) (*timeentry.TimeEntry, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, timeEntrySelect+` WHERE te.status = 'running'`)
	e, err := scanTimeEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get running time entry: %w", err)
	}
	return e, nil
}

// Tasks returns the distinct task names recorded on a project
func (r *TimeEntryRepository) Tasks(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx,
		`SELECT DISTINCT task FROM time_entries WHERE project_id = ? ORDER BY task`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []string
	for rows.Next() {
		var task string
		if err := rows.Scan(&task); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
