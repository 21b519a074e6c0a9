// Package metrics defines the Prometheus collectors for indexing, search,
// jobs and the HTTP API, and exposes a scrape handler for them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tfidf"

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	DocumentsIndexed    prometheus.Counter
	DocumentsSkipped    prometheus.Counter
	DocumentsRemoved    prometheus.Counter
	DocumentsFailed     prometheus.Counter
	CorpusDocuments     prometheus.Gauge
	CorpusTerms         prometheus.Gauge
	ReindexDuration     prometheus.Histogram
	SnapshotWrites      *prometheus.CounterVec
	SearchQueriesTotal  *prometheus.CounterVec
	SearchLatency       prometheus.Histogram
	SearchResultsCount  prometheus.Histogram
	JobsTotal           *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them with reg.
// Passing prometheus.NewRegistry() keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		DocumentsIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_indexed_total",
			Help:      "Documents added or re-added to the index.",
		}),
		DocumentsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_skipped_total",
			Help:      "Files left untouched because their index entry is up to date.",
		}),
		DocumentsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_removed_total",
			Help:      "Documents removed from the index.",
		}),
		DocumentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_failed_total",
			Help:      "Files that could not be read or extracted.",
		}),
		CorpusDocuments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_documents",
			Help:      "Number of documents currently indexed.",
		}),
		CorpusTerms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_terms",
			Help:      "Number of distinct terms in the document frequency table.",
		}),
		ReindexDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reindex_duration_seconds",
			Help:      "Wall time of a full corpus reindex pass.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		SnapshotWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Snapshot writes by status.",
		}, []string{"status"}),
		SearchQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Search queries by result type (hit, zero_result, error).",
		}, []string{"result_type"}),
		SearchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_latency_seconds",
			Help:      "Search query latency in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SearchResultsCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_count",
			Help:      "Ranked documents per search query before pagination.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500, 1000},
		}),
		JobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Finished background jobs by type and status.",
		}, []string{"type", "status"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.DocumentsIndexed,
		m.DocumentsSkipped,
		m.DocumentsRemoved,
		m.DocumentsFailed,
		m.CorpusDocuments,
		m.CorpusTerms,
		m.ReindexDuration,
		m.SnapshotWrites,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.JobsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler returns the scrape handler for the registry the metrics live in.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveIndexing adds the outcome of one reindex pass.
func (m *Metrics) ObserveIndexing(indexed, skipped, removed, failed int, took time.Duration) {
	if m == nil {
		return
	}
	m.DocumentsIndexed.Add(float64(indexed))
	m.DocumentsSkipped.Add(float64(skipped))
	m.DocumentsRemoved.Add(float64(removed))
	m.DocumentsFailed.Add(float64(failed))
	m.ReindexDuration.Observe(took.Seconds())
}

// DocumentRemoved counts a single explicit removal.
func (m *Metrics) DocumentRemoved() {
	if m == nil {
		return
	}
	m.DocumentsRemoved.Inc()
}

// SetCorpusSize updates the corpus gauges.
func (m *Metrics) SetCorpusSize(documents, terms int) {
	if m == nil {
		return
	}
	m.CorpusDocuments.Set(float64(documents))
	m.CorpusTerms.Set(float64(terms))
}

// ObserveSnapshot records a snapshot write attempt.
func (m *Metrics) ObserveSnapshot(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SnapshotWrites.WithLabelValues(status).Inc()
}

// ObserveSearch records a query's latency and result count.
func (m *Metrics) ObserveSearch(results int, took time.Duration, err error) {
	if m == nil {
		return
	}
	resultType := "hit"
	switch {
	case err != nil:
		resultType = "error"
	case results == 0:
		resultType = "zero_result"
	}
	m.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	if err != nil {
		return
	}
	m.SearchLatency.Observe(took.Seconds())
	m.SearchResultsCount.Observe(float64(results))
}

// ObserveJob counts a finished job.
func (m *Metrics) ObserveJob(jobType, status string) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(jobType, status).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
