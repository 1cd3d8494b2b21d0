package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/billable/internal/apperr"
	"github.com/rpggio/billable/internal/domain/activity"
	"github.com/rpggio/billable/internal/domain/client"
	"github.com/rpggio/billable/internal/domain/profile"
	"github.com/rpggio/billable/internal/domain/project"
	"github.com/rpggio/billable/internal/domain/timeentry"
	"github.com/rpggio/billable/internal/metrics"
	"github.com/rpggio/billable/internal/money"
	"github.com/rpggio/billable/internal/repository"
	"github.com/shopspring/decimal"
)

// Deps are the collaborators of the ledger.
type Deps struct {
	Tx       repository.Transactor
	Invoices Repository
	Clients  client.Repository
	Projects project.Repository
	Entries  timeentry.Repository
	Profiles profile.Repository
	Numbers  NumberSource
	Activity activity.Recorder
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Service is the invoice ledger.
type Service struct {
	tx       repository.Transactor
	invoices Repository
	clients  client.Repository
	projects project.Repository
	entries  timeentry.Repository
	profiles profile.Repository
	numbers  NumberSource
	activity activity.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new invoice ledger.
func NewService(d Deps) *Service {
	s := &Service{
		tx:       d.Tx,
		invoices: d.Invoices,
		clients:  d.Clients,
		projects: d.Projects,
		entries:  d.Entries,
		profiles: d.Profiles,
		numbers:  d.Numbers,
		activity: d.Activity,
		metrics:  d.Metrics,
		logger:   d.Logger,
		now:      time.Now,
	}
	if s.activity == nil {
		s.activity = activity.Discard
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// LineItemInput describes a line item to add or the fields to change on one.
// An input without a time entry whose other fields are all empty is blank.
type LineItemInput struct {
	TimeEntryID *string
	ProjectID   *string
	Description *string
	Quantity    *decimal.Decimal
	Rate        *decimal.Decimal
}

// Blank reports an input that carries nothing.
func (in LineItemInput) Blank() bool {
	return (in.TimeEntryID == nil || *in.TimeEntryID == "") &&
		(in.Description == nil || strings.TrimSpace(*in.Description) == "") &&
		in.Quantity == nil && in.Rate == nil
}

// CreateRequest describes a new invoice.
type CreateRequest struct {
	ClientID            string
	InvoiceNumber       string
	Status              Status
	InvoiceDate         *time.Time
	DueDate             *time.Time
	DiscountAmount      *decimal.Decimal
	TaxRate             *decimal.Decimal
	Notes               string
	PaymentInstructions string
	LineItems           []LineItemInput
}

// UpdateRequest patches invoice fields. Nil fields are absent. A field added
// here must also be added to onlyStatus, or paid invoices will accept it.
type UpdateRequest struct {
	InvoiceNumber       *string
	Status              *Status
	InvoiceDate         *time.Time
	DueDate             *time.Time
	PaidDate            *time.Time
	DiscountAmount      *decimal.Decimal
	TaxRate             *decimal.Decimal
	Notes               *string
	PaymentInstructions *string
}

// onlyStatus reports whether nothing but Status is present.
func (r UpdateRequest) onlyStatus() bool {
	return r.InvoiceNumber == nil && r.InvoiceDate == nil && r.DueDate == nil &&
		r.PaidDate == nil && r.DiscountAmount == nil && r.TaxRate == nil &&
		r.Notes == nil && r.PaymentInstructions == nil
}

// Create builds an invoice with its line items in one transaction.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Invoice, error) {
	now := s.now()
	today := Date(now)

	v := apperr.NewValidation()
	if strings.TrimSpace(req.ClientID) == "" {
		v.Add("client_id", "can't be blank")
	}
	status := req.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		v.Add("status", "is not included in the list")
	}
	discount := decimal.Zero
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}
	if discount.IsNegative() {
		v.Add("discount_amount", "must be greater than or equal to 0")
	}
	taxRate := decimal.Zero
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	if taxRate.IsNegative() {
		v.Add("tax_rate", "must be greater than or equal to 0")
	}
	var inputs []LineItemInput
	for _, in := range req.LineItems {
		if !in.Blank() {
			inputs = append(inputs, in)
		}
	}
	if len(inputs) == 0 {
		v.Add("line_items", "must have at least one line item")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	inv := &Invoice{
		ID:                  uuid.NewString(),
		ClientID:            req.ClientID,
		InvoiceNumber:       strings.TrimSpace(req.InvoiceNumber),
		InvoiceDate:         today,
		DiscountAmount:      discount,
		TaxRate:             taxRate,
		Notes:               req.Notes,
		PaymentInstructions: req.PaymentInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
		AmountPaid:          decimal.Zero,
	}
	if req.InvoiceDate != nil {
		inv.InvoiceDate = Date(*req.InvoiceDate)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cl, err := s.clients.Get(ctx, req.ClientID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return client.ErrClientNotFound
			}
			return fmt.Errorf("loading client: %w", err)
		}
		inv.ClientName = cl.Name

		due, err := s.dueDate(ctx, inv.InvoiceDate, req.DueDate)
		if err != nil {
			return err
		}
		inv.DueDate = due

		claimed := map[string]bool{}
		for i, in := range inputs {
			item, err := s.buildItem(ctx, inv, in, claimed)
			if err != nil {
				return prefixFields(err, fmt.Sprintf("line_items[%d].", i))
			}
			item.Position = i + 1
			inv.LineItems = append(inv.LineItems, *item)
		}
		inv.ComputeTotals()
		TransitionStatus(inv, status, nil, today)

		if inv.InvoiceNumber == "" {
			if inv.InvoiceNumber, err = s.numbers.Next(ctx); err != nil {
				return err
			}
		}
		if err := s.invoices.Create(ctx, inv); err != nil {
			return translate(err, "creating invoice")
		}
		return s.activity.Record(ctx, activity.TypeInvoiceCreated, activity.EntityInvoice, inv.ID,
			fmt.Sprintf("Created invoice %s for %s", inv.InvoiceNumber, cl.Name),
			map[string]any{"total": inv.Total, "line_items": len(inv.LineItems)})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.InvoiceEvent("created")
	s.logger.Info("invoice created", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber, "total", inv.Total.StringFixed(2))
	return s.derived(inv), nil
}

func (s *Service) dueDate(ctx context.Context, invoiceDate time.Time, requested *time.Time) (time.Time, error) {
	if requested != nil {
		return Date(*requested), nil
	}
	p, err := s.profiles.Get(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return time.Time{}, fmt.Errorf("loading profile: %w", err)
	}
	if err == nil && p.DefaultPaymentTerms != nil {
		return invoiceDate.AddDate(0, 0, *p.DefaultPaymentTerms), nil
	}
	return time.Time{}, apperr.Invalid("due_date", "can't be blank")
}

// buildItem validates a new line item. claimed tracks time entries already
// used by the same request.
func (s *Service) buildItem(ctx context.Context, inv *Invoice, in LineItemInput, claimed map[string]bool) (*LineItem, error) {
	now := s.now()
	item := &LineItem{
		ID:        uuid.NewString(),
		InvoiceID: inv.ID,
		ProjectID: in.ProjectID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if in.TimeEntryID != nil && *in.TimeEntryID != "" {
		entryID := *in.TimeEntryID
		entry, err := s.entries.Get(ctx, entryID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, timeentry.ErrTimeEntryNotFound
			}
			return nil, fmt.Errorf("loading time entry: %w", err)
		}
		if entry.Running() || entry.Billing != timeentry.BillingUnbilled || claimed[entryID] {
			return nil, ErrTimeEntryUnavailable
		}
		if entry.ClientID != inv.ClientID {
			return nil, apperr.Invalid("time_entry_id", "belongs to a different client")
		}
		claimed[entryID] = true
		item.TimeEntryID = &entryID

		if item.ProjectID == nil || *item.ProjectID == "" {
			pid := entry.ProjectID
			item.ProjectID = &pid
		}
		item.Description = entry.Task
		item.Quantity = money.Hours(entry.DurationSeconds)
		if entry.Rate.Valid {
			item.Rate = entry.Rate.Decimal
		}
	}
	if item.ProjectID != nil && *item.ProjectID == "" {
		item.ProjectID = nil
	}

	if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.Rate != nil {
		item.Rate = *in.Rate
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if item.ProjectID != nil {
		if _, err := s.projects.Get(ctx, *item.ProjectID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, project.ErrProjectNotFound
			}
			return nil, fmt.Errorf("loading project: %w", err)
		}
	}
	item.Amount = money.LineAmount(item.Quantity, item.Rate)
	return item, nil
}

func validateItem(item *LineItem) error {
	v := apperr.NewValidation()
	if strings.TrimSpace(item.Description) == "" {
		v.Add("description", "can't be blank")
	}
	if !item.Quantity.IsPositive() {
		v.Add("quantity", "must be greater than 0")
	}
	if item.Rate.IsNegative() {
		v.Add("rate", "must be greater than or equal to 0")
	}
	return v.Err()
}

func prefixFields(err error, prefix string) error {
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	out := apperr.NewValidation()
	for field, msg := range verr.Fields {
		out.Add(prefix+field, msg)
	}
	return out
}

// Get loads an invoice with its line items. The invoice row, its items and
// its payments are read in one transaction so they always agree.
func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	var inv *Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.load(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.derived(inv), nil
}

// List returns invoices matching opts, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Invoice, error) {
	if opts.Today.IsZero() {
		opts.Today = Date(s.now())
	}
	var invoices []Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		invoices, err = s.invoices.List(ctx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Derive(opts.Today)
	}
	return invoices, nil
}

// Update applies the present fields. A paid invoice accepts a status change
// and nothing else; a request mixing status with other fields is rejected whole.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Invoice, error) {
	var (
		inv  *Invoice
		from Status
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.load(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status == StatusPaid && !req.onlyStatus() {
			return ErrPaidInvoiceLocked
		}

		if err := applyUpdate(inv, req); err != nil {
			return err
		}
		inv.ComputeTotals()

		now := s.now()
		from = inv.Status
		if req.Status != nil {
			TransitionStatus(inv, *req.Status, req.PaidDate, now)
		} else if req.PaidDate != nil {
			d := Date(*req.PaidDate)
			inv.PaidDate = &d
		}
		inv.UpdatedAt = now

		if err := s.invoices.Update(ctx, inv); err != nil {
			return translate(err, "updating invoice")
		}
		if err := s.activity.Record(ctx, activity.TypeInvoiceUpdated, activity.EntityInvoice, inv.ID,
			fmt.Sprintf("Updated invoice %s", inv.InvoiceNumber), nil); err != nil {
			return err
		}
		return s.recordTransition(ctx, inv, from)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.InvoiceEvent("updated")
	s.metrics.StatusTransition(string(from), string(inv.Status))
	return s.derived(inv), nil
}

func applyUpdate(inv *Invoice, req UpdateRequest) error {
	v := apperr.NewValidation()
	if req.InvoiceNumber != nil {
		inv.InvoiceNumber = strings.TrimSpace(*req.InvoiceNumber)
		if inv.InvoiceNumber == "" {
			v.Add("invoice_number", "can't be blank")
		}
	}
	if req.Status != nil && !req.Status.Valid() {
		v.Add("status", "is not included in the list")
	}
	if req.InvoiceDate != nil {
		inv.InvoiceDate = Date(*req.InvoiceDate)
	}
	if req.DueDate != nil {
		inv.DueDate = Date(*req.DueDate)
	}
	if req.DiscountAmount != nil {
		if req.DiscountAmount.IsNegative() {
			v.Add("discount_amount", "must be greater than or equal to 0")
		}
		inv.DiscountAmount = *req.DiscountAmount
	}
	if req.TaxRate != nil {
		if req.TaxRate.IsNegative() {
			v.Add("tax_rate", "must be greater than or equal to 0")
		}
		inv.TaxRate = *req.TaxRate
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}
	if req.PaymentInstructions != nil {
		inv.PaymentInstructions = *req.PaymentInstructions
	}
	return v.Err()
}

func (s *Service) recordTransition(ctx context.Context, inv *Invoice, from Status) error {
	if from == inv.Status {
		return nil
	}
	s.logger.Info("invoice status changed", "invoice_id", inv.ID, "from", from, "to", inv.Status)
	return s.activity.Record(ctx, activity.TypeStatusChanged, activity.EntityInvoice, inv.ID,
		fmt.Sprintf("Invoice %s moved from %s to %s", inv.InvoiceNumber, from, inv.Status),
		map[string]string{"from": string(from), "to": string(inv.Status)})
}

// Delete removes an invoice with its line items and payments. Time entries
// on it become unbilled again.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := s.invoices.Delete(ctx, id); err != nil {
			return translate(err, "deleting invoice")
		}
		return s.activity.Record(ctx, activity.TypeInvoiceDeleted, activity.EntityInvoice, id,
			fmt.Sprintf("Deleted invoice %s", inv.InvoiceNumber), nil)
	})
	if err != nil {
		return err
	}
	s.metrics.InvoiceEvent("deleted")
	return nil
}

// AddLineItem appends a line item and recomputes totals. A blank input
// leaves the invoice unchanged.
func (s *Service) AddLineItem(ctx context.Context, invoiceID string, in LineItemInput) (*Invoice, error) {
	var inv *Invoice
	changed := false
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.editable(ctx, invoiceID)
		if err != nil || in.Blank() {
			return err
		}

		item, err := s.buildItem(ctx, inv, in, map[string]bool{})
		if err != nil {
			return err
		}
		item.Position = 1
		for _, existing := range inv.LineItems {
			if existing.Position >= item.Position {
				item.Position = existing.Position + 1
			}
		}
		if err := s.invoices.AddLineItem(ctx, item); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrTimeEntryUnavailable
			}
			return fmt.Errorf("adding line item: %w", err)
		}
		inv.LineItems = append(inv.LineItems, *item)
		changed = true
		return s.saveTotals(ctx, inv, activity.TypeLineItemAdded, fmt.Sprintf("Added %q", item.Description))
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.metrics.LineItemEvent("added")
	}
	return s.derived(inv), nil
}

// UpdateLineItem changes the present fields of a line item and recomputes
// totals. A blank input leaves the invoice unchanged.
func (s *Service) UpdateLineItem(ctx context.Context, invoiceID, itemID string, in LineItemInput) (*Invoice, error) {
	var inv *Invoice
	changed := false
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.editable(ctx, invoiceID)
		if err != nil {
			return err
		}
		item, ok := inv.Item(itemID)
		if !ok {
			return ErrLineItemNotFound
		}
		if in.Blank() {
			return nil
		}

		if in.TimeEntryID != nil && !sameRef(item.TimeEntryID, in.TimeEntryID) {
			return apperr.Invalid("time_entry_id", "can't be changed")
		}
		if in.ProjectID != nil {
			item.ProjectID = in.ProjectID
			if *item.ProjectID == "" {
				item.ProjectID = nil
			} else if _, err := s.projects.Get(ctx, *item.ProjectID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return project.ErrProjectNotFound
				}
				return fmt.Errorf("loading project: %w", err)
			}
		}
		if in.Description != nil {
			item.Description = strings.TrimSpace(*in.Description)
		}
		if in.Quantity != nil {
			item.Quantity = *in.Quantity
		}
		if in.Rate != nil {
			item.Rate = *in.Rate
		}
		if err := validateItem(item); err != nil {
			return err
		}
		item.Amount = money.LineAmount(item.Quantity, item.Rate)
		item.UpdatedAt = s.now()

		if err := s.invoices.UpdateLineItem(ctx, item); err != nil {
			return fmt.Errorf("updating line item: %w", err)
		}
		changed = true
		return s.saveTotals(ctx, inv, activity.TypeLineItemUpdated, fmt.Sprintf("Updated %q", item.Description))
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.metrics.LineItemEvent("updated")
	}
	return s.derived(inv), nil
}

// RemoveLineItem deletes a line item and recomputes totals. The last line
// item of an invoice cannot be removed.
func (s *Service) RemoveLineItem(ctx context.Context, invoiceID, itemID string) (*Invoice, error) {
	var inv *Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.editable(ctx, invoiceID)
		if err != nil {
			return err
		}
		item, ok := inv.Item(itemID)
		if !ok {
			return ErrLineItemNotFound
		}
		if len(inv.LineItems) == 1 {
			return apperr.Invalid("line_items", "must have at least one line item")
		}
		description := item.Description

		if err := s.invoices.DeleteLineItem(ctx, itemID); err != nil {
			return fmt.Errorf("removing line item: %w", err)
		}
		kept := inv.LineItems[:0]
		for _, li := range inv.LineItems {
			if li.ID != itemID {
				kept = append(kept, li)
			}
		}
		inv.LineItems = kept
		return s.saveTotals(ctx, inv, activity.TypeLineItemRemoved, fmt.Sprintf("Removed %q", description))
	})
	if err != nil {
		return nil, err
	}
	s.metrics.LineItemEvent("removed")
	return s.derived(inv), nil
}

func (s *Service) editable(ctx context.Context, invoiceID string) (*Invoice, error) {
	inv, err := s.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusPaid {
		return nil, ErrLineItemsLocked
	}
	return inv, nil
}

func (s *Service) saveTotals(ctx context.Context, inv *Invoice, typ activity.ActivityType, summary string) error {
	inv.ComputeTotals()
	inv.UpdatedAt = s.now()
	if err := s.invoices.Update(ctx, inv); err != nil {
		return fmt.Errorf("saving invoice totals: %w", err)
	}
	return s.activity.Record(ctx, typ, activity.EntityInvoice, inv.ID, summary,
		map[string]any{"subtotal": inv.Subtotal, "total": inv.Total})
}

func (s *Service) load(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	return inv, nil
}

func (s *Service) derived(inv *Invoice) *Invoice {
	inv.Derive(s.now())
	return inv
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return (a == nil || *a == "") && (b == nil || *b == "")
	}
	return *a == *b
}

func translate(err error, action string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrInvoiceNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicateNumber
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return client.ErrClientNotFound
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
