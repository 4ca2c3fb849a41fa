package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	eventsAppendedTotal   *prometheus.CounterVec
	requestsArchivedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "extrapay_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "extrapay_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "extrapay_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		eventsAppendedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "extrapay_events_appended_total",
			Help: "Total number of audit events appended, by entity type.",
		}, []string{"entity_type", "event_type"})

		requestsArchivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "extrapay_requests_archived_total",
			Help: "Total number of pay requests stamped as archived.",
		}, []string{"district"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, eventsAppendedTotal, requestsArchivedTotal)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the error counter.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// EventsAppended exposes the audit event counter.
func EventsAppended() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsAppendedTotal
}

// RequestsArchived exposes the archive counter.
func RequestsArchived() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsArchivedTotal
}
