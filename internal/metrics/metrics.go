// Package metrics holds the Prometheus collectors of the tracker. A nil
// *Metrics is valid and records nothing, so services can be built without it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	loginAttempts   *prometheus.CounterVec
	progressUpdates *prometheus.CounterVec
	assignments     *prometheus.CounterVec
	auditFailures   prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Passing a *prometheus.Registry keeps
// tests isolated from the global default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wbs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wbs_http_request_duration_ms",
				Help:    "Latency of HTTP requests in milliseconds",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
			},
			[]string{"method", "route"},
		),
		loginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wbs_login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		progressUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wbs_progress_updates_total",
				Help: "Progress updates applied to tasks by status",
			},
			[]string{"status"},
		),
		assignments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wbs_assignment_changes_total",
				Help: "Assignment ledger changes by list and operation",
			},
			[]string{"list", "op"},
		),
		auditFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wbs_audit_write_failures_total",
				Help: "Audit entries that could not be persisted",
			},
		),
		gatherer: reg,
	}
}

func (m *Metrics) LoginAttempt(result string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) ProgressUpdate(status string) {
	if m == nil {
		return
	}
	m.progressUpdates.WithLabelValues(status).Inc()
}

func (m *Metrics) AssignmentChange(list, op string) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(list, op).Inc()
}

func (m *Metrics) AuditWriteFailed() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests per chi route pattern, so ids in the path do
// not blow up label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpLatency.WithLabelValues(r.Method, route).Observe(float64(time.Since(start).Milliseconds()))
	})
}
