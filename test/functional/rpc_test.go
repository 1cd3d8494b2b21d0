package functional_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/rpggio/billable/internal/domain/payment"
	"github.com/rpggio/billable/internal/domain/timeentry"
	"github.com/rpggio/billable/internal/mcp"
	"github.com/rpggio/billable/internal/testserver"
	"github.com/stretchr/testify/require"
)

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestFunctional_TimerToPaidInvoice(t *testing.T) {
	ts := testserver.New(t)

	ts.MustCall(t, "save_profile", map[string]any{
		"first_name":            "Rosa",
		"last_name":             "Castillo",
		"email":                 "rosa@example.test",
		"invoice_prefix":        "RC",
		"default_payment_terms": 14,
	}, nil)

	var entry timeentry.TimeEntry
	ts.MustCall(t, "start_timer", map[string]any{
		"new_client_name":  "Acme",
		"new_project_name": "Website",
		"new_project_rate": "100",
		"task":             "Landing page",
	}, &entry)
	require.Equal(t, timeentry.StatusRunning, entry.Status)

	_, rpcErr := ts.Call(t, "start_timer", map[string]any{"client_id": entry.ClientID, "project_id": entry.ProjectID, "task": "Other"})
	require.NotNil(t, rpcErr)
	require.Equal(t, mcp.CodeConflict, rpcErr.Data["code"])

	ts.SetNow(time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC))
	ts.MustCall(t, "stop_timer", nil, &entry)
	require.Equal(t, int64(5400), entry.DurationSeconds)
	require.Equal(t, "150.00", entry.Earnings.StringFixed(2))

	resp, body := httpGet(t, ts.Server.URL+"/api/v1/clients/"+entry.ClientID+"/unbilled_time_entries")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var unbilled []timeentry.UnbilledEntry
	require.NoError(t, json.Unmarshal(body, &unbilled))
	require.Len(t, unbilled, 1)
	require.Equal(t, "1.50", unbilled[0].DurationHours.StringFixed(2))

	var inv invoice.Invoice
	ts.MustCall(t, "create_invoice", map[string]any{
		"client_id":       entry.ClientID,
		"tax_rate":        "10",
		"discount_amount": "20",
		"line_items": []map[string]any{
			{"time_entry_id": entry.ID},
			{"description": "Hosting", "quantity": "1", "rate": "50"},
		},
	}, &inv)
	require.Equal(t, "RC-2026-001", inv.InvoiceNumber)
	require.Equal(t, "200.00", inv.Subtotal.StringFixed(2))
	require.Equal(t, "180.00", inv.Total.StringFixed(2))
	require.Equal(t, "10", inv.TaxRate.String())
	require.Equal(t, "2026-03-28", inv.DueDate.Format(time.DateOnly))

	resp, body = httpGet(t, ts.Server.URL+"/api/v1/clients/"+entry.ClientID+"/unbilled_time_entries")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `[]`, string(body))

	ts.MustCall(t, "update_invoice", map[string]any{"id": inv.ID, "status": "sent"}, &inv)
	require.Equal(t, invoice.StatusSent, inv.Status)
	require.False(t, inv.Overdue)

	ts.SetNow(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	ts.MustCall(t, "get_invoice", map[string]any{"id": inv.ID}, &inv)
	require.True(t, inv.Overdue)
	require.Equal(t, "180.00", inv.Balance.StringFixed(2))

	var overdue []invoice.Invoice
	ts.MustCall(t, "list_invoices", map[string]any{"overdue": true}, &overdue)
	require.Len(t, overdue, 1)
	require.True(t, overdue[0].Overdue)
	require.Equal(t, "180.00", overdue[0].Balance.StringFixed(2))

	resp, body = httpGet(t, ts.Server.URL+"/invoices/"+inv.ID+"/pdf")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	require.True(t, strings.HasPrefix(string(body), "%PDF-"))

	var res payment.Result
	ts.MustCall(t, "record_payment", map[string]any{
		"invoice_id":     inv.ID,
		"amount":         "100",
		"payment_date":   "2026-03-20",
		"payment_method": "zelle",
	}, &res)
	require.Equal(t, invoice.StatusPartiallyPaid, res.Invoice.Status)
	require.False(t, res.Invoice.Overdue)
	require.Equal(t, "80.00", res.Invoice.Balance.StringFixed(2))
	first := res.Payment.ID

	ts.MustCall(t, "settle_invoice", map[string]any{"invoice_id": inv.ID, "payment_method": "check"}, &res)
	require.Equal(t, "80.00", res.Payment.Amount.StringFixed(2))
	require.Equal(t, invoice.StatusPaid, res.Invoice.Status)
	require.NotNil(t, res.Invoice.PaidDate)

	ts.MustCall(t, "get_time_entry", map[string]any{"id": entry.ID}, &entry)
	require.Equal(t, timeentry.BillingPaid, entry.Billing)

	_, rpcErr = ts.Call(t, "update_time_entry", map[string]any{"id": entry.ID, "task": "Renamed"})
	require.NotNil(t, rpcErr)
	require.Equal(t, mcp.CodeValidation, rpcErr.Data["code"])
	require.Contains(t, rpcErr.Data["details"], "task")

	_, rpcErr = ts.Call(t, "delete_time_entry", map[string]any{"id": entry.ID})
	require.NotNil(t, rpcErr)
	require.Equal(t, mcp.CodeState, rpcErr.Data["code"])

	ts.MustCall(t, "delete_payment", map[string]any{"invoice_id": inv.ID, "payment_id": first}, &inv)
	require.Equal(t, invoice.StatusPartiallyPaid, inv.Status)
	require.Equal(t, "80.00", inv.AmountPaid.StringFixed(2))
	require.Equal(t, "100.00", inv.Balance.StringFixed(2))

	var trail []map[string]any
	ts.MustCall(t, "get_recent_activity", map[string]any{"entity_id": inv.ID}, &trail)
	require.NotEmpty(t, trail)

	resp, body = httpGet(t, ts.Server.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "billable_invoice_numbers_issued_total 1")
	require.Contains(t, string(body), "billable_payment_events_total")
}

func TestFunctional_ValidationDetails(t *testing.T) {
	ts := testserver.New(t)

	_, rpcErr := ts.Call(t, "create_client", map[string]any{"name": "  "})
	require.NotNil(t, rpcErr)
	require.Equal(t, mcp.CodeValidation, rpcErr.Data["code"])
	details, ok := rpcErr.Data["details"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, details, "name")

	_, rpcErr = ts.Call(t, "get_invoice", map[string]any{"id": "missing"})
	require.NotNil(t, rpcErr)
	require.Equal(t, mcp.CodeNotFound, rpcErr.Data["code"])

	_, rpcErr = ts.Call(t, "no_such_tool", nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, -32601, rpcErr.Code)
}

func TestFunctional_StreamableMCP(t *testing.T) {
	ts := testserver.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: ts.Server.URL + "/mcp"}, nil)
	require.NoError(t, err)
	defer session.Close()

	require.Equal(t, "billable", session.InitializeResult().ServerInfo.Name)

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "create_client",
		Arguments: map[string]any{"name": "Initech", "email": "ap@initech.test"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_clients"})
	require.NoError(t, err)
	text := result.Content[0].(*sdkmcp.TextContent).Text
	require.Contains(t, text, `"name":"Initech"`)
}
