package invoice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rpggio/billable/internal/domain/client"
	"github.com/rpggio/billable/internal/domain/profile"
	"github.com/rpggio/billable/internal/repository"
	"github.com/shopspring/decimal"
)

// Document is the read-only snapshot handed to renderers. Every number in
// it is final.
type Document struct {
	Invoice             *Invoice         `json:"invoice"`
	Client              *client.Client   `json:"client"`
	Profile             *profile.Profile `json:"profile,omitempty"`
	Groups              []ItemGroup      `json:"groups"`
	AmountPaid          decimal.Decimal  `json:"amount_paid"`
	AmountDue           decimal.Decimal  `json:"amount_due"`
	Notes               string           `json:"notes,omitempty"`
	PaymentInstructions string           `json:"payment_instructions,omitempty"`
}

// ItemGroup holds the line items of one project. ProjectName is empty for
// items without a project.
type ItemGroup struct {
	ProjectName string          `json:"project_name,omitempty"`
	Items       []LineItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Document assembles the printable snapshot of an invoice. Notes and payment
// instructions fall back to the profile defaults.
func (s *Service) Document(ctx context.Context, id string) (*Document, error) {
	var doc *Document
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.document(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) document(ctx context.Context, id string) (*Document, error) {
	inv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	cl, err := s.clients.Get(ctx, inv.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, client.ErrClientNotFound
		}
		return nil, fmt.Errorf("loading client: %w", err)
	}

	doc := &Document{
		Invoice:             s.derived(inv),
		Client:              cl,
		AmountPaid:          inv.AmountPaid,
		AmountDue:           inv.AmountDue(),
		Notes:               inv.Notes,
		PaymentInstructions: inv.PaymentInstructions,
	}

	p, err := s.profiles.Get(ctx)
	switch {
	case err == nil:
		doc.Profile = p
		if strings.TrimSpace(doc.Notes) == "" {
			doc.Notes = p.DefaultInvoiceNotes
		}
		if strings.TrimSpace(doc.PaymentInstructions) == "" {
			doc.PaymentInstructions = p.DefaultPaymentInstructions
		}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	groups, err := s.group(ctx, inv.LineItems)
	if err != nil {
		return nil, err
	}
	doc.Groups = groups
	return doc, nil
}

func (s *Service) group(ctx context.Context, items []LineItem) ([]ItemGroup, error) {
	names := map[string]string{}
	byName := map[string]*ItemGroup{}
	var order []string

	for _, item := range items {
		name := ""
		if item.ProjectID != nil {
			pid := *item.ProjectID
			n, ok := names[pid]
			if !ok {
				proj, err := s.projects.Get(ctx, pid)
				switch {
				case err == nil:
					n = proj.Name
				case errors.Is(err, repository.ErrNotFound):
				default:
					return nil, fmt.Errorf("loading project: %w", err)
				}
				names[pid] = n
			}
			name = n
		}

		g, ok := byName[name]
		if !ok {
			g = &ItemGroup{ProjectName: name, Subtotal: decimal.Zero}
			byName[name] = g
			order = append(order, name)
		}
		g.Items = append(g.Items, item)
		g.Subtotal = g.Subtotal.Add(item.Amount)
	}

	sort.SliceStable(order, func(i, j int) bool {
		// Unassigned items print last.
		if order[i] == "" || order[j] == "" {
			return order[j] == "" && order[i] != ""
		}
		return order[i] < order[j]
	})
	out := make([]ItemGroup, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}
