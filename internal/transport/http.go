package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rpggio/billable/internal/apperr"
	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/rpggio/billable/internal/domain/timeentry"
	"github.com/rpggio/billable/internal/mcp"
	"github.com/rpggio/billable/internal/metrics"
)

// RPCHandler dispatches a JSON-RPC method to the tool surface.
type RPCHandler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// UnbilledLister lists a client's billable time.
type UnbilledLister interface {
	Unbilled(ctx context.Context, clientID string) ([]timeentry.UnbilledEntry, error)
}

// DocumentSource assembles printable invoices.
type DocumentSource interface {
	Document(ctx context.Context, id string) (*invoice.Document, error)
}

// Renderer turns an invoice document into a PDF.
type Renderer interface {
	Render(doc *invoice.Document) ([]byte, error)
}

// Config wires the HTTP surface. MCP, Metrics and Registry are optional.
type Config struct {
	RPC       RPCHandler
	Unbilled  UnbilledLister
	Documents DocumentSource
	Renderer  Renderer
	MCP       http.Handler
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
	Logger    *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	cfg    Config
	logger *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTPMiddleware(cfg.Metrics))

	r.Get("/health", srv.handleHealth)
	r.Post("/rpc", srv.handleRPC)
	r.Get("/api/v1/clients/{id}/unbilled_time_entries", srv.handleUnbilled)
	r.Get("/invoices/{id}/pdf", srv.handlePDF)

	if cfg.Registry != nil {
		r.Handle("/metrics", metrics.Handler(cfg.Registry))
	}
	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, rpcErr := ParseRequest(r.Body)
	if rpcErr != nil {
		WriteError(w, req.ID, rpcErr)
		return
	}

	result, err := s.cfg.RPC.Handle(r.Context(), req.Method, req.Params)
	if req.Notification() {
		if err != nil {
			s.logger.WarnContext(r.Context(), "rpc notification failed", "method", req.Method, "error", err)
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		rpcErr := rpcError(err)
		if rpcErr.Code == ErrInternal {
			s.logger.ErrorContext(r.Context(), "rpc failed", "method", req.Method, "error", err)
		}
		WriteError(w, req.ID, rpcErr)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) handleUnbilled(w http.ResponseWriter, r *http.Request) {
	entries, err := s.cfg.Unbilled.Unbilled(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	if entries == nil {
		entries = []timeentry.UnbilledEntry{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	doc, err := s.cfg.Documents.Document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}
	data, err := s.cfg.Renderer.Render(doc)
	if err != nil {
		s.writeProblem(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+doc.Invoice.InvoiceNumber+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// writeProblem reports a failed REST request as {"error": APIError}.
func (s *Server) writeProblem(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := mcp.MapError(err)
	status := http.StatusInternalServerError
	switch apperr.Kind(err) {
	case apperr.ErrValidation:
		status = http.StatusUnprocessableEntity
	case apperr.ErrNotFound:
		status = http.StatusNotFound
	case apperr.ErrConflict, apperr.ErrState:
		status = http.StatusConflict
	}
	if apiErr == nil {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		apiErr = &mcp.APIError{Code: mcp.CodeInternal, Message: "internal error"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": apiErr})
}

// rpcError maps a dispatcher error onto a JSON-RPC error object. Domain
// failures keep their stable code in data.
func rpcError(err error) *Error {
	apiErr := mcp.MapError(err)
	if apiErr == nil {
		return &Error{Code: ErrInternal, Message: "internal error"}
	}
	code := ErrDomain
	switch apiErr.Code {
	case mcp.CodeUnknownMethod:
		code = ErrMethodNotFound
	case mcp.CodeInvalidParams:
		code = ErrInvalidParams
	}
	return &Error{Code: code, Message: apiErr.Message, Data: apiErr}
}
