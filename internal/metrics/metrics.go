package metrics

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/irah1999/cloud-flair/internal/stream"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "interview"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"service", "method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "route", "status"})

	httpInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	}, []string{"service"})

	provisioning = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provisioning_total",
		Help:      "Live input provisioning attempts by outcome",
	}, []string{"outcome"})

	reconciliation = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciliation_total",
		Help:      "Recording reconciliation passes by outcome",
	}, []string{"outcome"})

	providerCalls = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of streaming provider API calls",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider", "operation", "result"})
)

// Provisioning outcomes.
const (
	ProvisionSucceeded     = "succeeded"
	ProvisionLostRace      = "lost_race"
	ProvisionUnavailable   = "unavailable"
	ProvisionRejected      = "rejected"
	ProvisionMisconfigured = "misconfigured"
	ProvisionStoreFailed   = "store_failed"
)

// Reconciliation outcomes.
const (
	ReconcileBackfilled = "backfilled"
	ReconcileUnchanged  = "unchanged"
	ReconcileNotReady   = "not_ready"
	ReconcileFailed     = "failed"
)

func RecordProvisioning(outcome string) {
	provisioning.WithLabelValues(outcome).Inc()
}

func RecordReconciliation(outcome string) {
	reconciliation.WithLabelValues(outcome).Inc()
}

// ProvisioningCount returns the counter for an outcome.
func ProvisioningCount(outcome string) prometheus.Counter {
	return provisioning.WithLabelValues(outcome)
}

// ReconciliationCount returns the counter for an outcome.
func ReconciliationCount(outcome string) prometheus.Counter {
	return reconciliation.WithLabelValues(outcome)
}

// ObserveProviderCall records the latency of one provider API call, labelled
// with the provider error code when it failed.
func ObserveProviderCall(provider, operation string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
		var perr *stream.ProviderError
		if errors.As(err, &perr) {
			result = perr.Code
		}
	}
	providerCalls.WithLabelValues(provider, operation, result).Observe(elapsed.Seconds())
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics. The route label uses the chi pattern so
// interview codes do not become label values.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			httpInFlight.WithLabelValues(service).Inc()
			defer httpInFlight.WithLabelValues(service).Dec()

			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			labels := prometheus.Labels{
				"service": service,
				"method":  r.Method,
				"route":   route,
				"status":  strconv.Itoa(rec.status),
			}
			httpRequests.With(labels).Inc()
			httpLatency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
