package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rpggio/billable/internal/apperr"
	"github.com/rpggio/billable/internal/domain/activity"
	"github.com/rpggio/billable/internal/domain/client"
	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/rpggio/billable/internal/domain/payment"
	"github.com/rpggio/billable/internal/domain/profile"
	"github.com/rpggio/billable/internal/domain/project"
	"github.com/rpggio/billable/internal/domain/timeentry"
)

// ClientService defines client operations needed by MCP.
type ClientService interface {
	Create(ctx context.Context, in client.Input) (*client.Client, error)
	Get(ctx context.Context, id string) (*client.Client, error)
	List(ctx context.Context) ([]client.Client, error)
	Update(ctx context.Context, id string, in client.Input) (*client.Client, error)
	Delete(ctx context.Context, id string) error
}

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, clientID string) ([]project.Project, error)
	Update(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error)
	Delete(ctx context.Context, id string) error
}

// TimeTracker defines time entry operations needed by MCP.
type TimeTracker interface {
	Start(ctx context.Context, req timeentry.StartRequest) (*timeentry.TimeEntry, error)
	Stop(ctx context.Context, id string) (*timeentry.TimeEntry, error)
	Running(ctx context.Context) (*timeentry.TimeEntry, error)
	Get(ctx context.Context, id string) (*timeentry.TimeEntry, error)
	List(ctx context.Context, opts timeentry.ListOptions) ([]timeentry.TimeEntry, error)
	Update(ctx context.Context, id string, req timeentry.UpdateRequest) (*timeentry.TimeEntry, error)
	Delete(ctx context.Context, id string) error
	Tasks(ctx context.Context, projectID string) ([]string, error)
	Unbilled(ctx context.Context, clientID string) ([]timeentry.UnbilledEntry, error)
	Report(ctx context.Context, opts timeentry.ListOptions) ([]timeentry.ClientReport, error)
}

// InvoiceLedger defines invoice operations needed by MCP.
type InvoiceLedger interface {
	Create(ctx context.Context, req invoice.CreateRequest) (*invoice.Invoice, error)
	Get(ctx context.Context, id string) (*invoice.Invoice, error)
	List(ctx context.Context, opts invoice.ListOptions) ([]invoice.Invoice, error)
	Update(ctx context.Context, id string, req invoice.UpdateRequest) (*invoice.Invoice, error)
	Delete(ctx context.Context, id string) error
	AddLineItem(ctx context.Context, invoiceID string, in invoice.LineItemInput) (*invoice.Invoice, error)
	UpdateLineItem(ctx context.Context, invoiceID, itemID string, in invoice.LineItemInput) (*invoice.Invoice, error)
	RemoveLineItem(ctx context.Context, invoiceID, itemID string) (*invoice.Invoice, error)
	Document(ctx context.Context, id string) (*invoice.Document, error)
}

// PaymentReconciler defines payment operations needed by MCP.
type PaymentReconciler interface {
	Record(ctx context.Context, invoiceID string, req payment.RecordRequest) (*payment.Result, error)
	SettleInFull(ctx context.Context, invoiceID string, req payment.SettleRequest) (*payment.Result, error)
	List(ctx context.Context, invoiceID string) ([]payment.Payment, error)
	Delete(ctx context.Context, invoiceID, paymentID string) (*invoice.Invoice, error)
}

// ProfileService defines profile operations needed by MCP.
type ProfileService interface {
	Get(ctx context.Context) (*profile.Profile, error)
	Save(ctx context.Context, p *profile.Profile) (*profile.Profile, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Recent(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Clients  ClientService
	Projects ProjectService
	Time     TimeTracker
	Invoices InvoiceLedger
	Payments PaymentReconciler
	Profile  ProfileService
	Activity ActivityService
}

// Handler dispatches MCP commands.
type Handler struct {
	svc Services
}

// NewHandler creates a new MCP handler.
func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

// Handle dispatches a tool call to the domain services. Errors are returned
// as *APIError when they can be classified.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	result, err := h.dispatch(ctx, method, params)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (h *Handler) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	// Clients
	case "create_client":
		var req ClientParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Clients.Create(ctx, req.input())
	case "list_clients":
		return h.svc.Clients.List(ctx)
	case "get_client":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Clients.Get(ctx, req.ID)
	case "update_client":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		existing, err := h.svc.Clients.Get(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		// Absent fields keep their stored values.
		patch := clientParams(existing)
		if err := decodeParams(params, &patch); err != nil {
			return nil, err
		}
		return h.svc.Clients.Update(ctx, req.ID, patch.input())
	case "delete_client":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.svc.Clients.Delete(ctx, req.ID); err != nil {
			return nil, err
		}
		return DeletedResponse{ID: req.ID, Deleted: true}, nil

	// Projects
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Projects.Create(ctx, project.CreateRequest{
			ClientID: req.ClientID,
			Name:     req.Name,
			Rate:     req.Rate,
		})
	case "list_projects":
		var req ListProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Projects.List(ctx, req.ClientID)
	case "get_project":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Projects.Get(ctx, req.ID)
	case "update_project":
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Projects.Update(ctx, req.ID, project.UpdateRequest{Name: req.Name, Rate: req.Rate})
	case "delete_project":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.svc.Projects.Delete(ctx, req.ID); err != nil {
			return nil, err
		}
		return DeletedResponse{ID: req.ID, Deleted: true}, nil

	// Time tracking
	case "start_timer":
		var req StartTimerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Time.Start(ctx, timeentry.StartRequest{
			ClientID:       req.ClientID,
			ProjectID:      req.ProjectID,
			Task:           req.Task,
			ExistingTask:   req.ExistingTask,
			Notes:          req.Notes,
			NewClientName:  req.NewClientName,
			NewProjectName: req.NewProjectName,
			NewProjectRate: req.NewProjectRate,
		})
	case "stop_timer":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id := req.ID
		if id == "" {
			running, err := h.svc.Time.Running(ctx)
			if err != nil {
				return nil, err
			}
			if running == nil {
				return nil, timeentry.ErrNotRunning
			}
			id = running.ID
		}
		return h.svc.Time.Stop(ctx, id)
	case "get_running_timer":
		entry, err := h.svc.Time.Running(ctx)
		if err != nil {
			return nil, err
		}
		return RunningTimerResponse{Running: entry != nil, Entry: entry}, nil
	case "get_time_entry":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Time.Get(ctx, req.ID)
	case "list_time_entries":
		var req ListTimeEntriesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Time.List(ctx, req.options())
	case "update_time_entry":
		var req UpdateTimeEntryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		update, err := req.request()
		if err != nil {
			return nil, err
		}
		return h.svc.Time.Update(ctx, req.ID, update)
	case "delete_time_entry":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.svc.Time.Delete(ctx, req.ID); err != nil {
			return nil, err
		}
		return DeletedResponse{ID: req.ID, Deleted: true}, nil
	case "list_tasks":
		var req ListTasksParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		tasks, err := h.svc.Time.Tasks(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		if tasks == nil {
			tasks = []string{}
		}
		return tasks, nil
	case "list_unbilled_time_entries":
		var req ClientIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Time.Unbilled(ctx, req.ClientID)
	case "time_report":
		var req ListTimeEntriesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Time.Report(ctx, req.options())

	// Profile
	case "get_profile":
		return h.svc.Profile.Get(ctx)
	case "save_profile":
		p, err := h.svc.Profile.Get(ctx)
		if err != nil {
			if apperr.Kind(err) != apperr.ErrNotFound {
				return nil, err
			}
			p = &profile.Profile{}
		}
		if err := decodeParams(params, p); err != nil {
			return nil, err
		}
		return h.svc.Profile.Save(ctx, p)

	// Invoices
	case "create_invoice":
		var req CreateInvoiceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		create, err := req.request()
		if err != nil {
			return nil, err
		}
		return h.svc.Invoices.Create(ctx, create)
	case "get_invoice":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Invoices.Get(ctx, req.ID)
	case "list_invoices":
		var req ListInvoicesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Invoices.List(ctx, invoice.ListOptions{
			ClientID: req.ClientID,
			Status:   req.Status,
			Overdue:  req.Overdue,
			Unpaid:   req.Unpaid,
			Limit:    req.Limit,
			Offset:   req.Offset,
		})
	case "update_invoice":
		var req UpdateInvoiceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		update, err := req.request()
		if err != nil {
			return nil, err
		}
		return h.svc.Invoices.Update(ctx, req.ID, update)
	case "delete_invoice":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.svc.Invoices.Delete(ctx, req.ID); err != nil {
			return nil, err
		}
		return DeletedResponse{ID: req.ID, Deleted: true}, nil
	case "add_line_item":
		var req AddLineItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Invoices.AddLineItem(ctx, req.InvoiceID, req.input())
	case "update_line_item":
		var req UpdateLineItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Invoices.UpdateLineItem(ctx, req.InvoiceID, req.LineItemID, req.input())
	case "remove_line_item":
		var req RemoveLineItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Invoices.RemoveLineItem(ctx, req.InvoiceID, req.LineItemID)
	case "get_invoice_document":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Invoices.Document(ctx, req.ID)

	// Payments
	case "record_payment":
		var req RecordPaymentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		paidOn, err := parseDate("payment_date", req.PaymentDate)
		if err != nil {
			return nil, err
		}
		return h.svc.Payments.Record(ctx, req.InvoiceID, payment.RecordRequest{
			Amount:          req.Amount,
			PaymentDate:     paidOn,
			PaymentMethod:   req.PaymentMethod,
			ReferenceNumber: req.ReferenceNumber,
			Notes:           req.Notes,
		})
	case "settle_invoice":
		var req SettleInvoiceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		paidOn, err := parseDate("payment_date", req.PaymentDate)
		if err != nil {
			return nil, err
		}
		return h.svc.Payments.SettleInFull(ctx, req.InvoiceID, payment.SettleRequest{
			PaymentDate:     paidOn,
			PaymentMethod:   req.PaymentMethod,
			ReferenceNumber: req.ReferenceNumber,
			Notes:           req.Notes,
		})
	case "list_payments":
		var req InvoiceIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Payments.List(ctx, req.InvoiceID)
	case "delete_payment":
		var req DeletePaymentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Payments.Delete(ctx, req.InvoiceID, req.PaymentID)

	// Activity
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListActivityOptions{
			EntityType: req.EntityType,
			EntityID:   req.EntityID,
			Limit:      req.Limit,
			Offset:     req.Offset,
		}
		if req.ActivityType != "" {
			typ := activity.ActivityType(req.ActivityType)
			opts.ActivityType = &typ
		}
		return h.svc.Activity.Recent(ctx, opts)
	default:
		return nil, &APIError{Code: CodeUnknownMethod, Message: fmt.Sprintf("unknown method: %s", method)}
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return invalidParams(err)
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, *s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, apperr.Invalid(field, "is not a valid date")
	}
	return &t, nil
}

func parseTimestamp(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, apperr.Invalid(field, "is not a valid RFC 3339 timestamp")
	}
	t = t.UTC()
	return &t, nil
}

func (p ClientParams) input() client.Input {
	return client.Input{
		Name:         p.Name,
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Phone:        p.Phone,
		AddressLine1: p.AddressLine1,
		AddressLine2: p.AddressLine2,
		City:         p.City,
		State:        p.State,
		ZipCode:      p.ZipCode,
		Country:      p.Country,
		Notes:        p.Notes,
	}
}

func clientParams(c *client.Client) ClientParams {
	return ClientParams{
		Name:         c.Name,
		Email:        c.Email,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Phone:        c.Phone,
		AddressLine1: c.AddressLine1,
		AddressLine2: c.AddressLine2,
		City:         c.City,
		State:        c.State,
		ZipCode:      c.ZipCode,
		Country:      c.Country,
		Notes:        c.Notes,
	}
}

func (p ListTimeEntriesParams) options() timeentry.ListOptions {
	return timeentry.ListOptions{
		ClientID:  p.ClientID,
		ProjectID: p.ProjectID,
		Status:    p.Status,
		Billing:   p.Billing,
		Limit:     p.Limit,
		Offset:    p.Offset,
	}
}

func (p UpdateTimeEntryParams) request() (timeentry.UpdateRequest, error) {
	v := apperr.NewValidation()
	start, err := parseTimestamp("start_time", p.StartTime)
	if err != nil {
		v.Add("start_time", "is not a valid RFC 3339 timestamp")
	}
	end, err := parseTimestamp("end_time", p.EndTime)
	if err != nil {
		v.Add("end_time", "is not a valid RFC 3339 timestamp")
	}
	if err := v.Err(); err != nil {
		return timeentry.UpdateRequest{}, err
	}
	return timeentry.UpdateRequest{
		ClientID:  p.ClientID,
		ProjectID: p.ProjectID,
		Task:      p.Task,
		Notes:     p.Notes,
		StartTime: start,
		EndTime:   end,
		Rate:      p.Rate,
	}, nil
}

func (p CreateInvoiceParams) request() (invoice.CreateRequest, error) {
	invoiceDate, err := parseDate("invoice_date", p.InvoiceDate)
	if err != nil {
		return invoice.CreateRequest{}, err
	}
	dueDate, err := parseDate("due_date", p.DueDate)
	if err != nil {
		return invoice.CreateRequest{}, err
	}
	items := make([]invoice.LineItemInput, 0, len(p.LineItems))
	for _, item := range p.LineItems {
		items = append(items, item.input())
	}
	return invoice.CreateRequest{
		ClientID:            p.ClientID,
		InvoiceNumber:       p.InvoiceNumber,
		Status:              p.Status,
		InvoiceDate:         invoiceDate,
		DueDate:             dueDate,
		DiscountAmount:      p.DiscountAmount,
		TaxRate:             p.TaxRate,
		Notes:               p.Notes,
		PaymentInstructions: p.PaymentInstructions,
		LineItems:           items,
	}, nil
}

func (p UpdateInvoiceParams) request() (invoice.UpdateRequest, error) {
	v := apperr.NewValidation()
	dates := map[string]*string{"invoice_date": p.InvoiceDate, "due_date": p.DueDate, "paid_date": p.PaidDate}
	parsed := map[string]*time.Time{}
	for field, raw := range dates {
		t, err := parseDate(field, raw)
		if err != nil {
			v.Add(field, "is not a valid date")
			continue
		}
		parsed[field] = t
	}
	if err := v.Err(); err != nil {
		return invoice.UpdateRequest{}, err
	}
	return invoice.UpdateRequest{
		InvoiceNumber:       p.InvoiceNumber,
		Status:              p.Status,
		InvoiceDate:         parsed["invoice_date"],
		DueDate:             parsed["due_date"],
		PaidDate:            parsed["paid_date"],
		DiscountAmount:      p.DiscountAmount,
		TaxRate:             p.TaxRate,
		Notes:               p.Notes,
		PaymentInstructions: p.PaymentInstructions,
	}, nil
}
