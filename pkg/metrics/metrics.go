package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	PagesFetched     *prometheus.CounterVec
	ListingsUpserted prometheus.Counter
	DetailFetches    *prometheus.CounterVec
	TagsInserted     prometheus.Counter
	FetchDuration    *prometheus.HistogramVec
)

func Init() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_pages_fetched_total",
			Help: "Total number of search result pages fetched during discovery.",
		},
		[]string{"status"}, // ok, empty, error
	)

	ListingsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listings_upserted_total",
			Help: "Total number of listing summaries written to the store.",
		},
	)

	DetailFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detail_fetches_total",
			Help: "Total number of detail page fetches by outcome.",
		},
		[]string{"outcome"}, // parsed, not_found, transient
	)

	TagsInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tags_inserted_total",
			Help: "Total number of attribute tags inserted.",
		},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "Duration of page fetch operations.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 60},
		},
		[]string{"phase"}, // discover, enrich
	)
}
