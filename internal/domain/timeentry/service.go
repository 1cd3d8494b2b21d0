package timeentry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/billable/internal/apperr"
	"github.com/rpggio/billable/internal/domain/activity"
	"github.com/rpggio/billable/internal/domain/client"
	"github.com/rpggio/billable/internal/domain/project"
	"github.com/rpggio/billable/internal/metrics"
	"github.com/rpggio/billable/internal/money"
	"github.com/rpggio/billable/internal/repository"
	"github.com/shopspring/decimal"
)

// Service is the time tracker.
type Service struct {
	tx       repository.Transactor
	entries  Repository
	clients  client.Repository
	projects project.Repository
	activity activity.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new time tracker.
func NewService(
	tx repository.Transactor,
	entries Repository,
	clients client.Repository,
	projects project.Repository,
	recorder activity.Recorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	if recorder == nil {
		recorder = activity.Discard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		tx:       tx,
		entries:  entries,
		clients:  clients,
		projects: projects,
		activity: recorder,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// StartRequest describes a timer start. A new client or project name takes
// precedence over the corresponding ID; ExistingTask takes precedence over Task.
type StartRequest struct {
	ClientID       string
	ProjectID      string
	Task           string
	ExistingTask   string
	Notes          string
	NewClientName  string
	NewProjectName string
	NewProjectRate *decimal.Decimal
}

// UpdateRequest patches an entry. Nil fields are left untouched.
type UpdateRequest struct {
	ClientID  *string
	ProjectID *string
	Task      *string
	Notes     *string
	StartTime *time.Time
	EndTime   *time.Time
	Rate      *decimal.Decimal
}

// Start opens a new running entry. Fails with ErrTimerRunning while another
// timer is open.
func (s *Service) Start(ctx context.Context, req StartRequest) (*TimeEntry, error) {
	task := strings.TrimSpace(req.ExistingTask)
	if task == "" {
		task = strings.TrimSpace(req.Task)
	}

	v := apperr.NewValidation()
	if task == "" {
		v.Add("task", "can't be blank")
	}
	if strings.TrimSpace(req.NewClientName) == "" && req.ClientID == "" {
		v.Add("client_id", "can't be blank")
	}
	if strings.TrimSpace(req.NewProjectName) == "" && req.ProjectID == "" {
		v.Add("project_id", "can't be blank")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var entry *TimeEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.entries.Running(ctx); err == nil {
			return ErrTimerRunning
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("checking running timer: %w", err)
		}

		now := s.now()
		cl, err := s.resolveClient(ctx, req, now)
		if err != nil {
			return err
		}
		proj, err := s.resolveProject(ctx, cl.ID, req, now)
		if err != nil {
			return err
		}

		entry = &TimeEntry{
			ID:          uuid.NewString(),
			ClientID:    cl.ID,
			ProjectID:   proj.ID,
			Task:        task,
			Notes:       req.Notes,
			StartTime:   now,
			Status:      StatusRunning,
			Earnings:    decimal.Zero,
			CreatedAt:   now,
			UpdatedAt:   now,
			ClientName:  cl.Name,
			ProjectName: proj.Name,
			Billing:     BillingUnbilled,
		}
		if err := s.entries.Create(ctx, entry); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrTimerRunning
			}
			return fmt.Errorf("creating time entry: %w", err)
		}
		return s.activity.Record(ctx, activity.TypeTimerStarted, activity.EntityTimeEntry, entry.ID,
			fmt.Sprintf("Started %q for %s / %s", entry.Task, cl.Name, proj.Name), nil)
	})
	if err != nil {
		if errors.Is(err, ErrTimerRunning) {
			s.metrics.TimerRejected()
		}
		return nil, err
	}

	s.metrics.TimerStarted()
	s.logger.Info("timer started", "time_entry_id", entry.ID, "project_id", entry.ProjectID)
	return entry, nil
}

func (s *Service) resolveClient(ctx context.Context, req StartRequest, now time.Time) (*client.Client, error) {
	if name := strings.TrimSpace(req.NewClientName); name != "" {
		return client.FindOrCreate(ctx, s.clients, name, now)
	}
	cl, err := s.clients.Get(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, client.ErrClientNotFound
		}
		return nil, fmt.Errorf("loading client: %w", err)
	}
	return cl, nil
}

func (s *Service) resolveProject(ctx context.Context, clientID string, req StartRequest, now time.Time) (*project.Project, error) {
	if name := strings.TrimSpace(req.NewProjectName); name != "" {
		rate := decimal.Zero
		if req.NewProjectRate != nil {
			rate = *req.NewProjectRate
		}
		return project.FindOrCreate(ctx, s.projects, clientID, name, rate, now)
	}
	proj, err := s.loadProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if proj.ClientID != clientID {
		return nil, apperr.Invalid("project_id", "does not belong to the client")
	}
	return proj, nil
}

func (s *Service) loadProject(ctx context.Context, id string) (*project.Project, error) {
	proj, err := s.projects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return proj, nil
}

// Stop closes a running entry at the current time. An entry without its own
// rate takes the project's rate.
func (s *Service) Stop(ctx context.Context, id string) (*TimeEntry, error) {
	var entry *TimeEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.load(ctx, id)
		if err != nil {
			return err
		}
		if !entry.Running() {
			return ErrNotRunning
		}

		if !entry.Rate.Valid {
			proj, err := s.loadProject(ctx, entry.ProjectID)
			if err != nil {
				return err
			}
			entry.Rate = decimal.NewNullDecimal(proj.Rate)
		}

		now := s.now()
		entry.Complete(now)
		entry.UpdatedAt = now
		if err := s.entries.Update(ctx, entry); err != nil {
			return fmt.Errorf("stopping time entry: %w", err)
		}
		return s.activity.Record(ctx, activity.TypeTimerStopped, activity.EntityTimeEntry, entry.ID,
			fmt.Sprintf("Stopped %q after %s hours", entry.Task, money.Hours(entry.DurationSeconds).StringFixed(2)),
			map[string]any{"duration_seconds": entry.DurationSeconds, "earnings": entry.Earnings})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TimerStopped(entry.DurationSeconds)
	s.logger.Info("timer stopped", "time_entry_id", entry.ID, "duration_seconds", entry.DurationSeconds)
	return entry, nil
}

// Update patches an entry. Entries on a paid invoice only accept notes.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*TimeEntry, error) {
	var entry *TimeEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.load(ctx, id)
		if err != nil {
			return err
		}
		if entry.Locked() {
			if err := lockedFields(req); err != nil {
				return err
			}
		}

		if err := s.apply(ctx, entry, req); err != nil {
			return err
		}
		entry.UpdatedAt = s.now()
		if err := s.entries.Update(ctx, entry); err != nil {
			return fmt.Errorf("updating time entry: %w", err)
		}
		return s.activity.Record(ctx, activity.TypeTimeEntryUpdated, activity.EntityTimeEntry, entry.ID,
			fmt.Sprintf("Updated %q", entry.Task), nil)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func lockedFields(req UpdateRequest) error {
	const msg = "can't be changed once the invoice is paid"
	v := apperr.NewValidation()
	if req.ClientID != nil {
		v.Add("client_id", msg)
	}
	if req.ProjectID != nil {
		v.Add("project_id", msg)
	}
	if req.Task != nil {
		v.Add("task", msg)
	}
	if req.StartTime != nil {
		v.Add("start_time", msg)
	}
	if req.EndTime != nil {
		v.Add("end_time", msg)
	}
	if req.Rate != nil {
		v.Add("rate", msg)
	}
	return v.Err()
}

func (s *Service) apply(ctx context.Context, entry *TimeEntry, req UpdateRequest) error {
	v := apperr.NewValidation()

	if req.Task != nil {
		entry.Task = strings.TrimSpace(*req.Task)
		if entry.Task == "" {
			v.Add("task", "can't be blank")
		}
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}
	if req.ClientID != nil {
		entry.ClientID = *req.ClientID
	}
	if req.ProjectID != nil {
		entry.ProjectID = *req.ProjectID
	}
	if req.StartTime != nil {
		entry.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		if entry.Running() {
			v.Add("end_time", "can't be set while the timer is running")
		} else {
			end := *req.EndTime
			entry.EndTime = &end
		}
	}
	if req.Rate != nil {
		if req.Rate.IsNegative() {
			v.Add("rate", "must be greater than or equal to 0")
		}
		entry.Rate = decimal.NewNullDecimal(*req.Rate)
	}
	if entry.EndTime != nil && entry.EndTime.Before(entry.StartTime) {
		v.Add("end_time", "must be after the start time")
	}
	if err := v.Err(); err != nil {
		return err
	}

	if req.ClientID != nil || req.ProjectID != nil {
		if _, err := s.clients.Get(ctx, entry.ClientID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return client.ErrClientNotFound
			}
			return fmt.Errorf("loading client: %w", err)
		}
		proj, err := s.loadProject(ctx, entry.ProjectID)
		if err != nil {
			return err
		}
		if proj.ClientID != entry.ClientID {
			return apperr.Invalid("project_id", "does not belong to the client")
		}
	}

	if !entry.Running() {
		entry.Recompute()
	}
	return nil
}

// Get fetches an entry by ID.
func (s *Service) Get(ctx context.Context, id string) (*TimeEntry, error) {
	return s.load(ctx, id)
}

// List returns entries matching opts, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]TimeEntry, error) {
	return s.entries.List(ctx, opts)
}

// Running returns the open timer, or nil when none is running.
func (s *Service) Running(ctx context.Context) (*TimeEntry, error) {
	entry, err := s.entries.Running(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading running timer: %w", err)
	}
	return entry, nil
}

// Delete removes an entry. Entries on a paid invoice cannot be deleted; an
// unpaid line item referencing the entry keeps its text.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entry, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if entry.Locked() {
			return ErrEntryLocked
		}
		if err := s.entries.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting time entry: %w", err)
		}
		return s.activity.Record(ctx, activity.TypeTimeEntryDeleted, activity.EntityTimeEntry, id,
			fmt.Sprintf("Deleted %q", entry.Task), nil)
	})
}

// Tasks lists the distinct task names previously tracked on a project.
func (s *Service) Tasks(ctx context.Context, projectID string) ([]string, error) {
	return s.entries.Tasks(ctx, projectID)
}

// Unbilled lists a client's completed entries that no line item references yet.
func (s *Service) Unbilled(ctx context.Context, clientID string) ([]UnbilledEntry, error) {
	if _, err := s.clients.Get(ctx, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, client.ErrClientNotFound
		}
		return nil, fmt.Errorf("loading client: %w", err)
	}

	entries, err := s.entries.List(ctx, ListOptions{
		ClientID: clientID,
		Status:   StatusCompleted,
		Billing:  BillingUnbilled,
	})
	if err != nil {
		return nil, fmt.Errorf("listing unbilled entries: %w", err)
	}

	out := make([]UnbilledEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, UnbilledEntry{
			ID:            e.ID,
			Task:          e.Task,
			ProjectID:     e.ProjectID,
			ProjectName:   e.ProjectName,
			StartTime:     e.StartTime,
			EndTime:       *e.EndTime,
			DurationHours: money.Hours(e.DurationSeconds),
			Rate:          e.Rate,
			Earnings:      e.Earnings,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// Report groups entries by client and project with running totals.
func (s *Service) Report(ctx context.Context, opts ListOptions) ([]ClientReport, error) {
	entries, err := s.entries.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	byClient := map[string]*ClientReport{}
	var order []string
	for _, e := range entries {
		cr, ok := byClient[e.ClientID]
		if !ok {
			cr = &ClientReport{ClientID: e.ClientID, ClientName: e.ClientName, Earnings: decimal.Zero}
			byClient[e.ClientID] = cr
			order = append(order, e.ClientID)
		}

		idx := -1
		for i := range cr.Projects {
			if cr.Projects[i].ProjectID == e.ProjectID {
				idx = i
				break
			}
		}
		if idx < 0 {
			cr.Projects = append(cr.Projects, ProjectReport{ProjectID: e.ProjectID, ProjectName: e.ProjectName, Earnings: decimal.Zero})
			idx = len(cr.Projects) - 1
		}

		pr := &cr.Projects[idx]
		pr.Entries = append(pr.Entries, e)
		pr.DurationSeconds += e.DurationSeconds
		pr.Earnings = pr.Earnings.Add(e.Earnings)

		cr.EntryCount++
		cr.DurationSeconds += e.DurationSeconds
		cr.Earnings = cr.Earnings.Add(e.Earnings)
	}

	out := make([]ClientReport, 0, len(order))
	for _, id := range order {
		cr := byClient[id]
		cr.DurationHours = money.Hours(cr.DurationSeconds)
		sort.SliceStable(cr.Projects, func(i, j int) bool { return cr.Projects[i].ProjectName < cr.Projects[j].ProjectName })
		out = append(out, *cr)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ClientName < out[j].ClientName })
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (*TimeEntry, error) {
	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTimeEntryNotFound
		}
		return nil, fmt.Errorf("getting time entry: %w", err)
	}
	return entry, nil
}
