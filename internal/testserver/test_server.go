// Package testserver runs the full HTTP surface over an in-memory database.
package testserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rpggio/billable/internal/app"
	"github.com/rpggio/billable/internal/mcp"
	"github.com/rpggio/billable/internal/metrics"
	"github.com/rpggio/billable/internal/pdf"
	"github.com/rpggio/billable/internal/sqlite"
	"github.com/rpggio/billable/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	App      *app.App
	Registry *prometheus.Registry

	mu  sync.Mutex
	now time.Time
}

// RPCError mirrors a JSON-RPC error object with its domain details.
type RPCError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	ts := &TestServer{
		DB:       db,
		Registry: prometheus.NewRegistry(),
		now:      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	m := metrics.NewMetrics(ts.Registry)
	ts.App = app.New(db, app.Options{Metrics: m, Clock: ts.Now})

	mcpServer := mcp.NewServer(mcp.Config{Services: ts.App.Services()})
	ts.Server = httptest.NewServer(transport.NewServer(transport.Config{
		RPC:       mcp.NewHandler(ts.App.Services()),
		Unbilled:  ts.App.Time,
		Documents: ts.App.Invoices,
		Renderer:  pdf.NewRenderer(),
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{JSONResponse: true},
		),
		Metrics:  m,
		Registry: ts.Registry,
	}))

	t.Cleanup(func() {
		ts.Server.Close()
		_ = db.Close()
	})

	return ts
}

// Now is the clock seen by the services. It starts at 2026-03-14 10:00 UTC.
func (ts *TestServer) Now() time.Time {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.now
}

// SetNow moves the service clock.
func (ts *TestServer) SetNow(now time.Time) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.now = now
}

// Call invokes a method on /rpc and returns its raw result or error.
func (ts *TestServer) Call(t *testing.T, method string, params any) (json.RawMessage, *RPCError) {
	t.Helper()

	payload := map[string]any{"jsonrpc": "2.0", "method": method, "id": 1}
	if params != nil {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(ts.Server.URL+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Result, out.Error
}

// MustCall invokes a method and decodes its result into out, failing on error.
func (ts *TestServer) MustCall(t *testing.T, method string, params, out any) {
	t.Helper()
	result, rpcErr := ts.Call(t, method, params)
	require.Nil(t, rpcErr, "%s failed: %+v", method, rpcErr)
	if out != nil {
		require.NoError(t, json.Unmarshal(result, out))
	}
}
