package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/billable/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts an activity entry and sets its ID
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	var details sql.NullString
	if entry.Details != "" {
		details = sql.NullString{String: entry.Details, Valid: true}
	}

	res, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO activity_log (activity_type, entity_type, entity_id, summary, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		entry.ActivityType,
		entry.EntityType,
		entry.EntityID,
		entry.Summary,
		details,
		utc(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get activity id: %w", err)
	}
	entry.ID = id
	return nil
}

// List returns activity entries newest first
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	var (
		conditions []string
		args       []any
	)
	if opts.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, opts.EntityType)
	}
	if opts.EntityID != "" {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, opts.EntityID)
	}
	if opts.ActivityType != nil {
		conditions = append(conditions, "activity_type = ?")
		args = append(args, *opts.ActivityType)
	}

	query, args := page(`
		SELECT id, activity_type, entity_type, entity_id, summary, details, created_at
		FROM activity_log`+where(conditions)+`
		ORDER BY created_at DESC, id DESC`, args, opts.Limit, opts.Offset)

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.ActivityEntry
	for rows.Next() {
		var (
			e       activity.ActivityEntry
			details sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ActivityType, &e.EntityType, &e.EntityID, &e.Summary, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		e.Details = details.String
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}
	return entries, nil
}
