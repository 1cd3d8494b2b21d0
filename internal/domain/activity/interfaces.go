package activity

import "context"

// Repository provides persistence operations for activity entries.
type Repository interface {
	Log(ctx context.Context, entry *ActivityEntry) error
	List(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error)
}

// Recorder is what the billing services use to append to the trail.
type Recorder interface {
	Record(ctx context.Context, typ ActivityType, entityType, entityID, summary string, details any) error
}
