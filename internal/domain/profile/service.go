package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/rpggio/billable/internal/apperr"
	"github.com/rpggio/billable/internal/repository"
)

// Service manages the profile.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new profile service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Get returns the profile or ErrProfileNotFound.
func (s *Service) Get(ctx context.Context) (*Profile, error) {
	p, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return p, nil
}

// Save validates and upserts the profile. A zero counter starts at 1.
func (s *Service) Save(ctx context.Context, p *Profile) (*Profile, error) {
	if p.EntityType == "" {
		p.EntityType = EntityIndividual
	}
	if p.NextInvoiceNumber == 0 {
		p.NextInvoiceNumber = 1
	}
	p.InvoicePrefix = strings.TrimSpace(p.InvoicePrefix)
	if err := Validate(p); err != nil {
		return nil, err
	}

	now := s.now()
	existing, err := s.repo.Get(ctx)
	switch {
	case err == nil:
		p.CreatedAt = existing.CreatedAt
	case errors.Is(err, repository.ErrNotFound):
		p.CreatedAt = now
	default:
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	p.UpdatedAt = now

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	s.logger.Info("profile saved", "invoice_prefix", p.InvoicePrefix, "next_invoice_number", p.NextInvoiceNumber)
	return p, nil
}

// Validate checks the profile fields.
func Validate(p *Profile) error {
	v := apperr.NewValidation()
	switch p.EntityType {
	case EntityBusiness:
		if strings.TrimSpace(p.BusinessName) == "" {
			v.Add("business_name", "can't be blank")
		}
	case EntityIndividual:
		if strings.TrimSpace(p.FirstName) == "" {
			v.Add("first_name", "can't be blank")
		}
		if strings.TrimSpace(p.LastName) == "" {
			v.Add("last_name", "can't be blank")
		}
	default:
		v.Add("entity_type", "is not included in the list")
	}
	if strings.TrimSpace(p.Email) == "" {
		v.Add("email", "can't be blank")
	} else if _, err := mail.ParseAddress(p.Email); err != nil {
		v.Add("email", "is invalid")
	}
	if p.InvoicePrefix == "" {
		v.Add("invoice_prefix", "can't be blank")
	}
	if p.NextInvoiceNumber <= 0 {
		v.Add("next_invoice_number", "must be greater than 0")
	}
	if p.DefaultPaymentTerms != nil && *p.DefaultPaymentTerms < 0 {
		v.Add("default_payment_terms", "must be greater than or equal to 0")
	}
	return v.Err()
}
