package project

import "context"

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	FindByName(ctx context.Context, clientID, name string) (*Project, error)
	// List returns projects ordered by name; an empty clientID lists all.
	List(ctx context.Context, clientID string) ([]Project, error)
	Update(ctx context.Context, proj *Project) error
	Delete(ctx context.Context, id string) error
}
