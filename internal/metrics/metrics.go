package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes desk metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	mutations           *prometheus.CounterVec
	mutationDuration    *prometheus.HistogramVec
	plannerCalls        *prometheus.CounterVec
	plannerCallDuration *prometheus.HistogramVec
}

// New creates a fresh registry with HTTP, mutation and planner-call metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "desk",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests served by the desk",
	}, []string{"method", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "desk",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by the desk",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "desk",
		Name:      "mutations_total",
		Help:      "Tour edits attempted, by operation and outcome",
	}, []string{"operation", "outcome"})

	mutationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "desk",
		Name:      "mutation_duration_seconds",
		Help:      "Duration of tour edits including the follow-up refresh",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"operation"})

	plannerCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "desk",
		Name:      "planner_calls_total",
		Help:      "Calls made to the planning service",
	}, []string{"method", "path", "status"})

	plannerCallDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "desk",
		Name:      "planner_call_duration_seconds",
		Help:      "Duration of calls to the planning service",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"method", "path"})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		mutations,
		mutationDuration,
		plannerCalls,
		plannerCallDuration,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		mutations:           mutations,
		mutationDuration:    mutationDuration,
		plannerCalls:        plannerCalls,
		plannerCallDuration: plannerCallDuration,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "status": strconv.Itoa(status)}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// ObserveMutation records the outcome of one tour edit.
func (m *Metrics) ObserveMutation(op, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
	m.mutationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// ObservePlannerCall records one call to the planning service. A status of
// zero means the call failed before a response arrived.
func (m *Metrics) ObservePlannerCall(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.plannerCalls.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.plannerCallDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
