package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Datastore Metrics
	DatastoreQueriesTotal  *prometheus.CounterVec
	DatastoreQueryDuration *prometheus.HistogramVec
	CacheLookupsTotal      *prometheus.CounterVec

	// Application Metrics
	PlaceSearchesTotal   *prometheus.CounterVec
	PlaceSearchResults   prometheus.Histogram
	ViewportLookupsTotal *prometheus.CounterVec
	ArticleLookupsTotal  *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "route", "status"},
		),

		DatastoreQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_queries_total",
				Help: "Total number of datastore queries",
			},
			[]string{"datastore", "operation", "status"},
		),

		DatastoreQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datastore_query_duration_seconds",
				Help:    "Datastore query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"datastore", "operation"},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_lookups_total",
				Help: "Cache lookups by cache name and result (hit, miss, error)",
			},
			[]string{"cache", "result"},
		),

		PlaceSearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "place_searches_total",
				Help: "Place searches by parsed query kind and result",
			},
			[]string{"kind", "result"},
		),

		PlaceSearchResults: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "place_search_results",
				Help:    "Number of places returned per search",
				Buckets: prometheus.ExponentialBuckets(1, 4, 7),
			},
		),

		ViewportLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewport_lookups_total",
				Help: "Viewport lookups by antimeridian crossing and result",
			},
			[]string{"crosses_antimeridian", "result"},
		),

		ArticleLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "article_lookups_total",
				Help: "Article lookups by source (feed, fallback, cache, error)",
			},
			[]string{"source"},
		),
	}
}
