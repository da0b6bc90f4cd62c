// Package metrics exposes Prometheus collectors for the pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	listingPagesTotal    *prometheus.CounterVec
	candidatesTotal      *prometheus.CounterVec
	extractionsTotal     *prometheus.CounterVec
	cacheLookupsTotal    *prometheus.CounterVec
	fetchRetriesTotal    prometheus.Counter
	postsTotal           *prometheus.CounterVec
	ledgerSize           prometheus.Gauge
	crawlDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		listingPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steamgram_listing_pages_total",
				Help: "Listing pages fetched, labeled by source and outcome.",
			},
			[]string{"source", "outcome"},
		)

		candidatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steamgram_candidates_total",
				Help: "Unique candidate detail pages discovered, labeled by source.",
			},
			[]string{"source"},
		)

		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steamgram_extractions_total",
				Help: "Detail-page extraction attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steamgram_cache_lookups_total",
				Help: "Crawl cache lookups, labeled by result (hit, miss, stale).",
			},
			[]string{"result"},
		)

		fetchRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "steamgram_fetch_retries_total",
				Help: "Total HTTP fetch retries across all subsystems.",
			},
		)

		postsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steamgram_posts_total",
				Help: "Publish attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		ledgerSize = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "steamgram_ledger_size",
				Help: "Number of identifiers in the posted ledger.",
			},
		)

		crawlDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "steamgram_crawl_duration_seconds",
				Help:    "Duration of full per-source crawls.",
				Buckets: []float64{1, 5, 15, 60, 180, 600, 1800},
			},
			[]string{"source"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveListingPage records a listing page fetch outcome.
func ObserveListingPage(source, outcome string) {
	listingPagesTotal.WithLabelValues(source, outcome).Inc()
}

// ObserveCandidates adds to the discovered-candidate counter.
func ObserveCandidates(source string, n int) {
	if n > 0 {
		candidatesTotal.WithLabelValues(source).Add(float64(n))
	}
}

// ObserveExtraction records a detail-page extraction outcome.
func ObserveExtraction(outcome string) {
	extractionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup records a crawl cache lookup result.
func ObserveCacheLookup(result string) {
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveFetchRetry increments the retry counter.
func ObserveFetchRetry() {
	fetchRetriesTotal.Inc()
}

// ObservePost records a publish outcome.
func ObservePost(outcome string) {
	postsTotal.WithLabelValues(outcome).Inc()
}

// SetLedgerSize updates the ledger size gauge.
func SetLedgerSize(n int) {
	ledgerSize.Set(float64(n))
}

// ObserveCrawlDuration records how long a full source crawl took.
func ObserveCrawlDuration(source string, seconds float64) {
	crawlDurationSeconds.WithLabelValues(source).Observe(seconds)
}
