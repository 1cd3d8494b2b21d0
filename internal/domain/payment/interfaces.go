package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository provides persistence for payments.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	Delete(ctx context.Context, id string) error
	// List returns an invoice's payments oldest first.
	List(ctx context.Context, invoiceID string) ([]Payment, error)
	// Sum totals an invoice's payments; zero when there are none.
	Sum(ctx context.Context, invoiceID string) (decimal.Decimal, error)
}
