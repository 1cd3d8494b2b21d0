package invoice

import "context"

// Repository provides persistence for invoices and their line items.
type Repository interface {
	// Create stores the invoice row and every line item on it.
	Create(ctx context.Context, inv *Invoice) error
	// Get loads the invoice with line items ordered by position and the
	// sum of its payments.
	Get(ctx context.Context, id string) (*Invoice, error)
	// Update stores the invoice row only.
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) ([]Invoice, error)

	AddLineItem(ctx context.Context, item *LineItem) error
	UpdateLineItem(ctx context.Context, item *LineItem) error
	DeleteLineItem(ctx context.Context, id string) error
}

// NumberSource allocates invoice numbers within the caller's transaction.
type NumberSource interface {
	Next(ctx context.Context) (string, error)
}
