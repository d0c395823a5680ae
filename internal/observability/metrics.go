package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	submissionEventsTotal *prometheus.CounterVec
	uploadBytesTotal      prometheus.Counter
	uploadLatencySeconds  prometheus.Histogram
	uploadFailuresTotal   *prometheus.CounterVec
	cacheLookupsTotal     *prometheus.CounterVec
	eventSubscribers      prometheus.Gauge
	eventsDropped         prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_events_total",
			Help: "Submission lifecycle transitions.",
		}, []string{"event"})

		uploadBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upload_bytes_total",
			Help: "Bytes written to file storage.",
		})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Time spent writing uploads to file storage.",
			Buckets: prometheus.DefBuckets,
		})

		uploadFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_failures_total",
			Help: "Uploads that could not be stored or were discarded.",
		}, []string{"reason"})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_cache_lookups_total",
			Help: "Student listing cache lookups by result.",
		}, []string{"result"})

		eventSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "submission_stream_subscribers",
			Help: "Open websocket subscriptions to the submission event stream.",
		})

		eventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submission_stream_dropped_total",
			Help: "Events dropped because a stream subscriber was too slow.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionEventsTotal,
			uploadBytesTotal,
			uploadLatencySeconds,
			uploadFailuresTotal,
			cacheLookupsTotal,
			eventSubscribers,
			eventsDropped,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SubmissionEvents counts created, graded and deleted submissions.
func SubmissionEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionEventsTotal
}

func UploadBytes() prometheus.Counter {
	RegisterMetrics()
	return uploadBytesTotal
}

func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

func UploadFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadFailuresTotal
}

// CacheLookups counts hits, misses and errors of the student listing cache.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}

// StreamSubscribers tracks open event stream connections.
func StreamSubscribers() prometheus.Gauge {
	RegisterMetrics()
	return eventSubscribers
}

func StreamDropped() prometheus.Counter {
	RegisterMetrics()
	return eventsDropped
}
