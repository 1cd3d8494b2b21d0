// Package app assembles the billing services over a SQLite database.
package app

import (
	"log/slog"
	"time"

	"github.com/rpggio/billable/internal/domain/activity"
	"github.com/rpggio/billable/internal/domain/client"
	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/rpggio/billable/internal/domain/payment"
	"github.com/rpggio/billable/internal/domain/profile"
	"github.com/rpggio/billable/internal/domain/project"
	"github.com/rpggio/billable/internal/domain/timeentry"
	"github.com/rpggio/billable/internal/mcp"
	"github.com/rpggio/billable/internal/metrics"
	"github.com/rpggio/billable/internal/sqlite"
)

// App holds the wired services.
type App struct {
	Clients  *client.Service
	Projects *project.Service
	Time     *timeentry.Service
	Invoices *invoice.Service
	Payments *payment.Service
	Profile  *profile.Service
	Activity *activity.Service
}

// Options tune the assembly. Zero values are fine.
type Options struct {
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Clock   func() time.Time
}

// New wires repositories and services on db.
func New(db *sqlite.DB, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	clients := sqlite.NewClientRepository(db)
	projects := sqlite.NewProjectRepository(db)
	entries := sqlite.NewTimeEntryRepository(db)
	invoices := sqlite.NewInvoiceRepository(db)
	payments := sqlite.NewPaymentRepository(db)
	profiles := sqlite.NewProfileRepository(db)

	log := activity.NewService(sqlite.NewActivityRepository(db), logger)

	return &App{
		Clients:  client.NewService(clients, logger),
		Projects: project.NewService(projects, logger),
		Time:     timeentry.NewService(db, entries, clients, projects, log, opts.Metrics, logger).WithClock(now),
		Invoices: invoice.NewService(invoice.Deps{
			Tx:       db,
			Invoices: invoices,
			Clients:  clients,
			Projects: projects,
			Entries:  entries,
			Profiles: profiles,
			Numbers:  profile.NewSequencer(profiles, opts.Metrics).WithClock(now),
			Activity: log,
			Metrics:  opts.Metrics,
			Logger:   logger,
		}).WithClock(now),
		Payments: payment.NewService(db, payments, invoices, log, opts.Metrics, logger).WithClock(now),
		Profile:  profile.NewService(profiles, logger),
		Activity: log,
	}
}

// Services exposes the app to the tool surface.
func (a *App) Services() mcp.Services {
	return mcp.Services{
		Clients:  a.Clients,
		Projects: a.Projects,
		Time:     a.Time,
		Invoices: a.Invoices,
		Payments: a.Payments,
		Profile:  a.Profile,
		Activity: a.Activity,
	}
}
