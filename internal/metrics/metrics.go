// Package metrics provides Prometheus metrics for the client: HTTP
// middleware for pages served to the browser, plus counters for session
// transitions, remote calls and workflow outcomes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discuss_http_requests_total",
			Help: "Total number of page requests served",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discuss_http_request_duration_seconds",
			Help:    "Page request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	remoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discuss_remote_request_duration_seconds",
			Help:    "Duration of calls to the forum service",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "outcome"},
	)

	sessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discuss_session_transitions_total",
			Help: "Session state transitions by target state",
		},
		[]string{"to"},
	)

	reconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discuss_reconciliation_fetches_total",
			Help: "Re-fetches issued after a successful mutation",
		},
		[]string{"workflow"},
	)

	workflowResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discuss_workflow_results_total",
			Help: "Workflow submissions by outcome",
		},
		[]string{"workflow", "result"},
	)
)

func SessionTransition(to string) {
	sessionTransitions.WithLabelValues(to).Inc()
}

func Reconciliation(workflow string) {
	reconciliations.WithLabelValues(workflow).Inc()
}

func WorkflowResult(workflow string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	workflowResults.WithLabelValues(workflow, result).Inc()
}

// ObserveRemote records one call to the forum service.
func ObserveRemote(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	remoteRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records page metrics, labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := "unmatched"
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
