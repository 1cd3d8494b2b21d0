package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/billable/internal/apperr"
	"github.com/rpggio/billable/internal/domain/client"
	"github.com/rpggio/billable/internal/repository"
	"github.com/shopspring/decimal"
)

// Service handles project operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ClientID string
	Name     string
	Rate     decimal.Decimal
}

// UpdateRequest defines a partial project update.
type UpdateRequest struct {
	Name *string
	Rate *decimal.Decimal
}

// Create creates a new project.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	v := apperr.NewValidation()
	if strings.TrimSpace(req.ClientID) == "" {
		v.Add("client_id", "can't be blank")
	}
	checkFields(v, req.Name, req.Rate)
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	proj := &Project{
		ID:        uuid.NewString(),
		ClientID:  req.ClientID,
		Name:      strings.TrimSpace(req.Name),
		Rate:      req.Rate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, translate(err, "creating project")
	}
	s.logger.Info("project created", "project_id", proj.ID, "client_id", proj.ClientID)
	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "getting project")
	}
	return proj, nil
}

// List returns the projects of a client, or every project when clientID is empty.
func (s *Service) List(ctx context.Context, clientID string) ([]Project, error) {
	return s.repo.List(ctx, clientID)
}

// Update applies the fields present in req.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "loading project")
	}
	if req.Name != nil {
		proj.Name = strings.TrimSpace(*req.Name)
	}
	if req.Rate != nil {
		proj.Rate = *req.Rate
	}

	v := apperr.NewValidation()
	checkFields(v, proj.Name, proj.Rate)
	if err := v.Err(); err != nil {
		return nil, err
	}

	proj.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, proj); err != nil {
		return nil, translate(err, "updating project")
	}
	return proj, nil
}

// Delete removes a project and its time entries. Invoice line items keep
// their text but lose the project reference.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "deleting project")
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// FindOrCreateByName returns the client's project with exactly this name,
// creating it at rate when absent.
func (s *Service) FindOrCreateByName(ctx context.Context, clientID, name string, rate decimal.Decimal) (*Project, error) {
	return FindOrCreate(ctx, s.repo, clientID, name, rate, s.now())
}

// FindOrCreate is the repository-level find-or-create shared with the timer.
func FindOrCreate(ctx context.Context, repo Repository, clientID, name string, rate decimal.Decimal, now time.Time) (*Project, error) {
	name = strings.TrimSpace(name)
	v := apperr.NewValidation()
	checkFields(v, name, rate)
	if err := v.Err(); err != nil {
		return nil, err
	}

	existing, err := repo.FindByName(ctx, clientID, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("finding project: %w", err)
	}

	proj := &Project{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Name:      name,
		Rate:      rate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, proj); err != nil {
		return nil, translate(err, "creating project")
	}
	return proj, nil
}

func checkFields(v *apperr.ValidationError, name string, rate decimal.Decimal) {
	if strings.TrimSpace(name) == "" {
		v.Add("name", "can't be blank")
	}
	if rate.IsNegative() {
		v.Add("rate", "must be greater than or equal to 0")
	}
}

func translate(err error, action string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrProjectNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Invalid("name", "has already been taken")
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return client.ErrClientNotFound
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
