// Package metrics exposes Prometheus instrumentation for the goal store and its backend.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// remoteCallsTotal counts calls to the persistence backend.
	// Labels:
	//   - operation: e.g. "create_goal", "patch_milestone"
	//   - status: "success" or "error"
	remoteCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltracker_remote_calls_total",
			Help: "Total number of calls to the goal persistence backend",
		},
		[]string{"operation", "status"},
	)

	remoteCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goaltracker_remote_call_duration_seconds",
			Help:    "Duration of calls to the goal persistence backend in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	openStores = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "goaltracker_open_stores",
			Help: "Number of per-user goal stores currently open",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltracker_http_requests_total",
			Help: "Total number of HTTP requests by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goaltracker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	storeLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltracker_store_loads_total",
			Help: "Initial and refresh loads of a goal store by outcome",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(remoteCallsTotal)
	prometheus.MustRegister(remoteCallDuration)
	prometheus.MustRegister(openStores)
	prometheus.MustRegister(storeLoadsTotal)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
}

// ObserveRemoteCall records one backend call that started at start.
func ObserveRemoteCall(operation string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	remoteCallsTotal.WithLabelValues(operation, status).Inc()
	remoteCallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func StoreOpened() { openStores.Inc() }

func StoreClosed() { openStores.Dec() }

func RecordStoreLoad(err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	storeLoadsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest records a served request. route is the mux pattern, not the raw path.
func ObserveHTTPRequest(method, route string, status int, start time.Time) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}
