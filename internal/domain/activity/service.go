package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const defaultLimit = 50

// ErrInvalidInput indicates a malformed activity entry.
var ErrInvalidInput = errors.New("invalid activity input")

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// LogActivity logs an activity entry with the current timestamp if missing.
func (s *Service) LogActivity(ctx context.Context, entry *ActivityEntry) error {
	if entry == nil || entry.ActivityType == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	s.logger.Debug("activity logged", "type", entry.ActivityType, "entity_id", entry.EntityID)
	return nil
}

// Record builds and logs an entry. details is marshalled to JSON when non-nil.
func (s *Service) Record(ctx context.Context, typ ActivityType, entityType, entityID, summary string, details any) error {
	entry := &ActivityEntry{
		ActivityType: typ,
		EntityType:   entityType,
		EntityID:     entityID,
		Summary:      summary,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encoding activity details: %w", err)
		}
		entry.Details = string(raw)
	}
	return s.LogActivity(ctx, entry)
}

// Recent lists activity entries newest first.
func (s *Service) Recent(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	return s.repo.List(ctx, opts)
}

// Discard is a Recorder that drops everything.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(context.Context, ActivityType, string, string, string, any) error { return nil }
