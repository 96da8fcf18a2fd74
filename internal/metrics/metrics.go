// Package metrics holds the Prometheus collectors shared by the binaries.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solde_http_requests_total",
		Help: "HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solde_http_request_duration_seconds",
		Help:    "Time spent serving HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	TransactionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solde_transactions_created_total",
		Help: "The total number of transactions persisted",
	})

	ValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solde_transaction_validation_failures_total",
		Help: "Create requests rejected with field errors",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solde_events_published_total",
		Help: "TransactionCreated events by bus and outcome",
	}, []string{"bus", "outcome"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solde_cache_lookups_total",
		Help: "Response cache lookups by cache and result",
	}, []string{"cache", "result"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solde_rate_limited_requests_total",
		Help: "Requests rejected by the rate limiter",
	})

	ExportedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solde_exported_rows_total",
		Help: "Rows appended to the export sheet by outcome",
	}, []string{"outcome"})

	ExportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solde_export_duration_seconds",
		Help:    "Time spent appending one transaction to the export sheet",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
	})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
