// Package metrics exposes Prometheus counters for the billing engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Time tracking
	TimerEventsTotal    *prometheus.CounterVec
	TrackedSecondsTotal prometheus.Counter

	// Invoicing
	InvoiceEventsTotal     *prometheus.CounterVec
	LineItemEventsTotal    *prometheus.CounterVec
	StatusTransitionsTotal *prometheus.CounterVec
	PaymentEventsTotal     *prometheus.CounterVec
	PaymentAmountTotal     prometheus.Counter
	InvoiceNumbersIssued   prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billable_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billable_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TimerEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billable_timer_events_total",
				Help: "Timer starts, stops and rejected starts",
			},
			[]string{"event"},
		),
		TrackedSecondsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billable_tracked_seconds_total",
				Help: "Rounded seconds recorded by stopped timers",
			},
		),
		InvoiceEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billable_invoice_events_total",
				Help: "Invoice lifecycle events",
			},
			[]string{"event"},
		),
		LineItemEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billable_line_item_events_total",
				Help: "Line item mutations",
			},
			[]string{"event"},
		),
		StatusTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billable_invoice_status_transitions_total",
				Help: "Invoice status changes",
			},
			[]string{"from", "to"},
		),
		PaymentEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billable_payment_events_total",
				Help: "Payments recorded and deleted",
			},
			[]string{"event", "method"},
		),
		PaymentAmountTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billable_payment_amount_total",
				Help: "Sum of recorded payment amounts",
			},
		),
		InvoiceNumbersIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billable_invoice_numbers_issued_total",
				Help: "Invoice numbers handed out by the sequencer",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TimerEventsTotal,
		m.TrackedSecondsTotal,
		m.InvoiceEventsTotal,
		m.LineItemEventsTotal,
		m.StatusTransitionsTotal,
		m.PaymentEventsTotal,
		m.PaymentAmountTotal,
		m.InvoiceNumbersIssued,
	)

	return m
}

// TimerStarted counts a successful start.
func (m *Metrics) TimerStarted() {
	if m == nil {
		return
	}
	m.TimerEventsTotal.WithLabelValues("started").Inc()
}

// TimerRejected counts a start refused because another timer was running.
func (m *Metrics) TimerRejected() {
	if m == nil {
		return
	}
	m.TimerEventsTotal.WithLabelValues("rejected").Inc()
}

// TimerStopped counts a stop and the rounded duration it recorded.
func (m *Metrics) TimerStopped(seconds int64) {
	if m == nil {
		return
	}
	m.TimerEventsTotal.WithLabelValues("stopped").Inc()
	if seconds > 0 {
		m.TrackedSecondsTotal.Add(float64(seconds))
	}
}

// InvoiceEvent counts created, updated and deleted invoices.
func (m *Metrics) InvoiceEvent(event string) {
	if m == nil {
		return
	}
	m.InvoiceEventsTotal.WithLabelValues(event).Inc()
}

// LineItemEvent counts added, updated and removed line items.
func (m *Metrics) LineItemEvent(event string) {
	if m == nil {
		return
	}
	m.LineItemEventsTotal.WithLabelValues(event).Inc()
}

// StatusTransition counts an invoice moving between statuses. No-op when unchanged.
func (m *Metrics) StatusTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.StatusTransitionsTotal.WithLabelValues(from, to).Inc()
}

// PaymentRecorded counts a payment and adds its amount.
func (m *Metrics) PaymentRecorded(method string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.PaymentEventsTotal.WithLabelValues("recorded", method).Inc()
	m.PaymentAmountTotal.Add(amount.InexactFloat64())
}

// PaymentDeleted counts a removed payment.
func (m *Metrics) PaymentDeleted(method string) {
	if m == nil {
		return
	}
	m.PaymentEventsTotal.WithLabelValues("deleted", method).Inc()
}

// InvoiceNumberIssued counts a sequencer allocation.
func (m *Metrics) InvoiceNumberIssued() {
	if m == nil {
		return
	}
	m.InvoiceNumbersIssued.Inc()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working behind the middleware.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// HTTPMiddleware instruments requests, labelled by chi route pattern.
func HTTPMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
