package repository

import "context"

// Transactor runs fn as a single unit of work. Repository calls made with the
// context passed to fn join the same transaction; a non-nil error from fn rolls
// everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TxFunc adapts a function to Transactor.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// WithinTx calls f.
func (f TxFunc) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// Inline runs fn directly without a transaction. Used by unit tests with mocked repositories.
var Inline Transactor = TxFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})
