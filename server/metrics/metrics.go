// Package metrics exposes Prometheus instruments for façade operations and
// the HTTP API
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status label values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	// OperationsTotal counts façade operations by outcome
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quackview_operations_total",
			Help: "Total number of data-access operations",
		},
		[]string{"operation", "status"},
	)
	// OperationDuration is the latency of façade operations
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quackview_operation_duration_seconds",
			Help:    "Data-access operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	// EngineState mirrors the façade state machine as a number
	EngineState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quackview_engine_state",
			Help: "0 uninitialized, 1 initializing, 2 ready, 3 failed",
		},
	)
	// RequestTotal counts HTTP requests
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quackview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quackview_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// ObserveOperation records one finished operation
func ObserveOperation(operation string, start time.Time, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveRequest records one finished HTTP request. path should be the
// route pattern, not the raw URL.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	RequestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// SetEngineState publishes the façade state
func SetEngineState(state int) {
	EngineState.Set(float64(state))
}

// Handler returns the Prometheus HTTP handler for /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
