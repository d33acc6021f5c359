// Package metrics exposes client-side Prometheus metrics: outgoing API
// calls, token refreshes and resource slice operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "retailctl"

// Refresh outcomes.
const (
	RefreshSucceeded = "succeeded"
	RefreshRejected  = "rejected"
	RefreshFailed    = "failed"
	RefreshSkipped   = "skipped"
)

// Recorder collects metrics into its own registry so tests and multiple
// instances never collide on the global default registry.
//
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	refreshTotal    *prometheus.CounterVec
	sliceOpsTotal   *prometheus.CounterVec
	staleDiscarded  *prometheus.CounterVec

	gatewayTotal    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of requests sent to the Retail API.",
		},
		[]string{"method", "status"},
	)
	r.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of Retail API requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	r.refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Access token refresh attempts by outcome.",
		},
		[]string{"outcome"},
	)
	r.sliceOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slice_operations_total",
			Help:      "Resource slice operations by resource, operation and outcome.",
		},
		[]string{"resource", "operation", "outcome"},
	)
	r.staleDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_discarded_total",
			Help:      "List responses discarded because a newer change was already applied.",
		},
		[]string{"resource"},
	)

	r.gatewayTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Requests served by the dashboard gateway.",
		},
		[]string{"method", "route", "status"},
	)
	r.gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Gateway request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	r.registry.MustRegister(
		r.requestsTotal,
		r.requestDuration,
		r.refreshTotal,
		r.sliceOpsTotal,
		r.staleDiscarded,
		r.gatewayTotal,
		r.gatewayDuration,
	)
	return r
}

// ObserveRequest records one API round trip. status 0 means the request
// never got a response.
func (r *Recorder) ObserveRequest(method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	r.requestsTotal.WithLabelValues(method, label).Inc()
	r.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveRefresh records a refresh attempt.
func (r *Recorder) ObserveRefresh(outcome string) {
	if r == nil {
		return
	}
	r.refreshTotal.WithLabelValues(outcome).Inc()
}

// ObserveSliceOp records a slice operation result.
func (r *Recorder) ObserveSliceOp(resource, operation string, err error) {
	if r == nil {
		return
	}
	outcome := "fulfilled"
	if err != nil {
		outcome = "rejected"
	}
	r.sliceOpsTotal.WithLabelValues(resource, operation, outcome).Inc()
}

// ObserveStaleDiscard records a discarded out-of-order list response.
func (r *Recorder) ObserveStaleDiscard(resource string) {
	if r == nil {
		return
	}
	r.staleDiscarded.WithLabelValues(resource).Inc()
}

// ObserveGatewayRequest records one request served by the gateway. route is
// the matched route pattern, never the raw path.
func (r *Recorder) ObserveGatewayRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.gatewayTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.gatewayDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns the HTTP handler serving the metrics in text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
