package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/billable/internal/apperr"
	"github.com/rpggio/billable/internal/repository"
)

// Service handles client operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new client service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Input carries the editable client fields.
type Input struct {
	Name         string
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	ZipCode      string
	Country      string
	Notes        string
}

// Create validates and stores a new client.
func (s *Service) Create(ctx context.Context, in Input) (*Client, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	now := s.now()
	c := &Client{ID: uuid.NewString(), CreatedAt: now}
	apply(c, in, now)

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, translate(err, "creating client")
	}
	s.logger.Info("client created", "client_id", c.ID)
	return c, nil
}

// Get fetches a client by ID.
func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "getting client")
	}
	return c, nil
}

// List returns all clients ordered by name.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

// Update replaces the editable fields of a client.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Client, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "loading client")
	}
	apply(c, in, s.now())
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, translate(err, "updating client")
	}
	return c, nil
}

// Delete removes a client together with its projects, time entries and invoices.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "deleting client")
	}
	s.logger.Info("client deleted", "client_id", id)
	return nil
}

// FindOrCreateByName returns the client with exactly this name, creating it if needed.
func (s *Service) FindOrCreateByName(ctx context.Context, name string) (*Client, error) {
	return FindOrCreate(ctx, s.repo, name, s.now())
}

// FindOrCreate looks a client up by exact name and creates it when absent.
// The lookup is case-sensitive while storage uniqueness is not, so a name that
// differs only in case from an existing client fails validation.
func FindOrCreate(ctx context.Context, repo Repository, name string, now time.Time) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "can't be blank")
	}

	existing, err := repo.FindByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("finding client: %w", err)
	}

	c := &Client{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := repo.Create(ctx, c); err != nil {
		return nil, translate(err, "creating client")
	}
	return c, nil
}

func validate(in Input) error {
	v := apperr.NewValidation()
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "can't be blank")
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			v.Add("email", "is invalid")
		}
	}
	return v.Err()
}

func apply(c *Client, in Input, now time.Time) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Phone = in.Phone
	c.AddressLine1 = in.AddressLine1
	c.AddressLine2 = in.AddressLine2
	c.City = in.City
	c.State = in.State
	c.ZipCode = in.ZipCode
	c.Country = in.Country
	c.Notes = in.Notes
	c.UpdatedAt = now
}

func translate(err error, action string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrClientNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Invalid("name", "has already been taken")
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
