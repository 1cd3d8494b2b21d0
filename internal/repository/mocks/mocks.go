package mocks

import (
	"context"

	"github.com/rpggio/billable/internal/domain/activity"
	"github.com/rpggio/billable/internal/domain/client"
	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/rpggio/billable/internal/domain/payment"
	"github.com/rpggio/billable/internal/domain/profile"
	"github.com/rpggio/billable/internal/domain/project"
	"github.com/rpggio/billable/internal/domain/timeentry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// ClientRepository is a mock for client.Repository.
type ClientRepository struct {
	mock.Mock
}

func (m *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ClientRepository) Get(ctx context.Context, id string) (*client.Client, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*client.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClientRepository) FindByName(ctx context.Context, name string) (*client.Client, error) {
	args := m.Called(ctx, name)
	if c, ok := args.Get(0).(*client.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClientRepository) List(ctx context.Context) ([]client.Client, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]client.Client); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ClientRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) FindByName(ctx context.Context, clientID, name string) (*project.Project, error) {
	args := m.Called(ctx, clientID, name)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, clientID string) ([]project.Project, error) {
	args := m.Called(ctx, clientID)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TimeEntryRepository is a mock for timeentry.Repository.
type TimeEntryRepository struct {
	mock.Mock
}

func (m *TimeEntryRepository) Create(ctx context.Context, entry *timeentry.TimeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *TimeEntryRepository) Get(ctx context.Context, id string) (*timeentry.TimeEntry, error) {
	args := m.Called(ctx, id)
	if entry, ok := args.Get(0).(*timeentry.TimeEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimeEntryRepository) Update(ctx context.Context, entry *timeentry.TimeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *TimeEntryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TimeEntryRepository) List(ctx context.Context, opts timeentry.ListOptions) ([]timeentry.TimeEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]timeentry.TimeEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimeEntryRepository) Running(ctx context.Context) (*timeentry.TimeEntry, error) {
	args := m.Called(ctx)
	if entry, ok := args.Get(0).(*timeentry.TimeEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimeEntryRepository) Tasks(ctx context.Context, projectID string) ([]string, error) {
	args := m.Called(ctx, projectID)
	if tasks, ok := args.Get(0).([]string); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

// InvoiceRepository is a mock for invoice.Repository.
type InvoiceRepository struct {
	mock.Mock
}

func (m *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *InvoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if inv, ok := args.Get(0).(*invoice.Invoice); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *InvoiceRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *InvoiceRepository) List(ctx context.Context, opts invoice.ListOptions) ([]invoice.Invoice, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]invoice.Invoice); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) AddLineItem(ctx context.Context, item *invoice.LineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *InvoiceRepository) UpdateLineItem(ctx context.Context, item *invoice.LineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *InvoiceRepository) DeleteLineItem(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// PaymentRepository is a mock for payment.Repository.
type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PaymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*payment.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PaymentRepository) List(ctx context.Context, invoiceID string) ([]payment.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if list, ok := args.Get(0).([]payment.Payment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) Sum(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// ProfileRepository is a mock for profile.Repository.
type ProfileRepository struct {
	mock.Mock
}

func (m *ProfileRepository) Get(ctx context.Context) (*profile.Profile, error) {
	args := m.Called(ctx)
	if p, ok := args.Get(0).(*profile.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProfileRepository) ClaimInvoiceNumber(ctx context.Context) (string, int, error) {
	args := m.Called(ctx)
	return args.String(0), args.Int(1), args.Error(2)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
