package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutodiy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutodiy_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutodiy_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	ArtifactsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutodiy_artifacts_total",
			Help: "Per-step artifact acquisitions by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	EnrichDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutodiy_enrich_duration_seconds",
			Help:    "Duration of one enrichment pipeline run",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"mode"},
	)

	AskTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutodiy_ask_total",
			Help: "Question answering requests by outcome",
		},
		[]string{"outcome"},
	)
)

// Outcome labels shared by ArtifactsTotal and AskTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeSkipped  = "skipped"
	OutcomeInvalid  = "invalid"
	OutcomeFallback = "fallback"
)

// RecordArtifact counts one per-step outcome.
func RecordArtifact(backend, outcome string) {
	if backend == "" {
		backend = "unknown"
	}
	ArtifactsTotal.WithLabelValues(backend, outcome).Inc()
}

// RecordEnrich observes one pipeline run.
func RecordEnrich(mode string, duration time.Duration) {
	EnrichDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordAsk counts one question by outcome.
func RecordAsk(outcome string) {
	AskTotal.WithLabelValues(outcome).Inc()
}

// Middleware returns a chi middleware that records HTTP metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Unmatched paths share one label to keep cardinality bounded
		path := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			path = rctx.RoutePattern()
		}
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(ww.Status())
		duration := time.Since(start).Seconds()

		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}
