package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpRequestsTotal       *prometheus.CounterVec
	httpLatencySeconds      *prometheus.HistogramVec
	httpErrorsTotal         *prometheus.CounterVec
	assignmentListCache     *prometheus.CounterVec
	assignmentUnsubmitTotal *prometheus.CounterVec
	assignmentViewFetches   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors shared by the API and the web host.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned.",
		}, []string{"method", "route", "status"})

		assignmentListCache = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_list_cache_lookups_total",
			Help: "Assignment list cache lookups by outcome.",
		}, []string{"list_type", "outcome"})

		assignmentUnsubmitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_unsubmit_total",
			Help: "Unsubmit attempts by result.",
		}, []string{"result"})

		assignmentViewFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_view_fetches_total",
			Help: "Assignment list fetches issued by the web view, by list type and result.",
		}, []string{"list_type", "result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			assignmentListCache,
			assignmentUnsubmitTotal,
			assignmentViewFetches,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AssignmentListCache counts cache hits and misses for assignment lists.
func AssignmentListCache() *prometheus.CounterVec {
	RegisterMetrics()
	return assignmentListCache
}

// AssignmentUnsubmits counts unsubmit outcomes.
func AssignmentUnsubmits() *prometheus.CounterVec {
	RegisterMetrics()
	return assignmentUnsubmitTotal
}

// AssignmentViewFetches counts fetches issued by the web view.
func AssignmentViewFetches() *prometheus.CounterVec {
	RegisterMetrics()
	return assignmentViewFetches
}
