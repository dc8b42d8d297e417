package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteRequestsTotal counts remote API calls by operation and outcome.
	RemoteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pingme_remote_requests_total",
		Help: "Total number of remote API requests by operation and outcome",
	}, []string{"operation", "outcome"})

	// RemoteRequestLatency records remote API latency by operation.
	RemoteRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pingme_remote_request_latency_seconds",
		Help:    "Remote API request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// OptimisticRollbacksTotal counts optimistic view updates that were undone.
	OptimisticRollbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pingme_optimistic_rollbacks_total",
		Help: "Total number of optimistic updates rolled back after a failed confirmation",
	}, []string{"view", "action"})

	// StoreErrorsTotal counts persisted-store errors by backend and operation.
	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pingme_store_errors_total",
		Help: "Total number of session store errors by backend and operation",
	}, []string{"backend", "operation"})
)

// TrackRemote returns a function that records the latency and outcome of a
// remote call when invoked with its error (e.g. via defer).
func TrackRemote(operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		RemoteRequestLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		RemoteRequestsTotal.WithLabelValues(operation, outcome).Inc()
	}
}

// RecordRollback increments the rollback counter for a view action.
func RecordRollback(view, action string) {
	OptimisticRollbacksTotal.WithLabelValues(view, action).Inc()
}

// RecordStoreError increments the store error counter.
func RecordStoreError(backend, operation string) {
	StoreErrorsTotal.WithLabelValues(backend, operation).Inc()
}
