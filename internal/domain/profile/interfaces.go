package profile

import "context"

// Repository persists the singleton profile.
type Repository interface {
	// Get returns repository.ErrNotFound when no profile exists.
	Get(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	// ClaimInvoiceNumber increments the counter and returns the prefix and
	// the value it held before the increment. Returns repository.ErrNotFound
	// when no profile exists.
	ClaimInvoiceNumber(ctx context.Context) (prefix string, number int, err error)
}
