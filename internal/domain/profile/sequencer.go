package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/billable/internal/metrics"
	"github.com/rpggio/billable/internal/repository"
)

// Sequencer hands out invoice numbers from the profile counter.
type Sequencer struct {
	repo    Repository
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewSequencer creates a sequencer over the profile repository.
func NewSequencer(repo Repository, m *metrics.Metrics) *Sequencer {
	return &Sequencer{repo: repo, metrics: m, now: time.Now}
}

// WithClock replaces the time source used for the year component.
func (s *Sequencer) WithClock(now func() time.Time) *Sequencer {
	s.now = now
	return s
}

// Next returns "{prefix}-{year}-{counter:03d}" and advances the counter.
// Call it inside the transaction that stores the invoice so an aborted
// invoice does not burn a number. Without a profile it returns
// "INV-{year}-001" and persists nothing.
func (s *Sequencer) Next(ctx context.Context) (string, error) {
	year := s.now().Year()
	prefix, n, err := s.repo.ClaimInvoiceNumber(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Sprintf("INV-%d-001", year), nil
	}
	if err != nil {
		return "", fmt.Errorf("claiming invoice number: %w", err)
	}
	s.metrics.InvoiceNumberIssued()
	return Format(prefix, year, n), nil
}

// Format renders an invoice number.
func Format(prefix string, year, n int) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, n)
}
