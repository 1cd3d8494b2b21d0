package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `billable tracks a freelancer's time and turns it into invoices and payments.

Model:
- Client → Project (hourly rate) → Time entries. Entry times snap to 5-minute marks; earnings = hours × rate.
- Invoice: numbered (PREFIX-YYYY-NNN from the profile), holds line items, optionally tied to time entries.
- Payment: money received against an invoice; the invoice status follows the total paid.

Typical workflow:
1) save_profile once (name, invoice_prefix, default_payment_terms).
2) start_timer / stop_timer while working. Only one timer runs at a time.
3) list_unbilled_time_entries for a client, then create_invoice with time_entry_id line items.
4) update_invoice status=sent when delivered.
5) record_payment or settle_invoice as money arrives.

Rules:
- Amounts are decimal strings. Never send floats.
- A time entry can be on one invoice only. Deleting the invoice frees it.
- Line items can change until the invoice is paid.
- Paid invoices and their time entries are locked.

Docs:
- billable://docs/workflow
- billable://docs/statuses
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "billable://docs/workflow",
		Name:        "docs_workflow",
		Title:       "Tracking time to getting paid",
		Description: "End-to-end walkthrough from timer to paid invoice.",
		Content: `# From timer to payment

## Track
- ` + "`start_timer`" + ` with client_id/project_id, or new_client_name/new_project_name/new_project_rate to create them on the fly.
- ` + "`stop_timer`" + ` with no id stops the running timer.
- Start and end are rounded to the nearest 5 minutes (ties round up). Duration is end minus start.
- ` + "`update_time_entry`" + ` fixes mistakes; it is refused once the entry's invoice is paid.

## Bill
- ` + "`list_unbilled_time_entries`" + ` shows completed entries not on any invoice.
- ` + "`create_invoice`" + ` with line_items: [{time_entry_id}] pulls task, hours and rate from each entry.
- Free-form items need description, quantity and rate.
- Totals: subtotal = sum of items; total = subtotal - discount. tax_rate is stored for the record and not applied.
- Reads also carry amount_due (total minus payments) and overdue (sent and past the due date).
- ` + "`get_invoice_document`" + ` returns the printable layout grouped by project. The HTTP server also serves it as PDF.

## Collect
- ` + "`record_payment`" + ` for partial or full payments; ` + "`settle_invoice`" + ` pays whatever is due.
- Deleting a payment moves the invoice back to partially_paid or sent.
`,
	},
	{
		URI:         "billable://docs/statuses",
		Name:        "docs_statuses",
		Title:       "Invoice statuses",
		Description: "What each invoice status implies for paid dates and edits.",
		Content: `# Invoice statuses

draft, sent, viewed, partially_paid, paid, overdue, cancelled.

- update_invoice may set any status directly; payments set partially_paid and paid for you.
- Moving to paid stamps paid_date with today unless one is given.
- Moving to a status other than paid or partially_paid clears paid_date.
- Once paid, only the status can change. Move it back to sent to edit the invoice.
- "Overdue" in list_invoices means sent and past the due date. Statuses are not changed automatically.
- Time entries on an invoice report billing=billed, or billing=paid once the invoice is paid.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
