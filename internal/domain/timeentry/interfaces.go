package timeentry

import "context"

// Repository provides persistence for time entries. Reads populate the
// joined client/project names and the derived billing state.
type Repository interface {
	Create(ctx context.Context, entry *TimeEntry) error
	Get(ctx context.Context, id string) (*TimeEntry, error)
	Update(ctx context.Context, entry *TimeEntry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) ([]TimeEntry, error)
	// Running returns repository.ErrNotFound when no timer is open.
	Running(ctx context.Context) (*TimeEntry, error)
	Tasks(ctx context.Context, projectID string) ([]string, error)
}
