// Package metrics provides Prometheus metrics for Śrīkoṣa
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes
const (
	OutcomeOK          = "ok"
	OutcomeTooShort    = "too_short"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds all Prometheus metrics for the search service
type Metrics struct {
	registry *prometheus.Registry

	// Search metrics
	SearchRequestsTotal *prometheus.CounterVec
	SearchDuration      prometheus.Histogram
	SearchResults       prometheus.Histogram

	// Document store metrics
	StoreLoadsTotal   *prometheus.CounterVec
	StoreLoadDuration *prometheus.HistogramVec

	// Snapshot cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Server metrics
	ServerStartTime time.Time
}

// New creates all metrics and registers them on a private registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := func(c prometheus.Collector) { reg.MustRegister(c) }

	m := &Metrics{
		registry:        reg,
		ServerStartTime: time.Now(),
	}

	m.SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srikosa_search_requests_total",
			Help: "Total number of search requests by outcome",
		},
		[]string{"outcome"},
	)

	m.SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "srikosa_search_duration_seconds",
			Help:    "Duration of search requests in seconds, including the document load",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	m.SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "srikosa_search_results",
			Help:    "Number of matches per search before truncation",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	m.StoreLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srikosa_store_loads_total",
			Help: "Total number of document store loads",
		},
		[]string{"store", "outcome"},
	)

	m.StoreLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "srikosa_store_load_duration_seconds",
			Help:    "Duration of document store loads in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"store"},
	)

	m.CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "srikosa_cache_hits_total",
			Help: "Total number of snapshot cache hits",
		},
	)

	m.CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "srikosa_cache_misses_total",
			Help: "Total number of snapshot cache misses",
		},
	)

	factory(m.SearchRequestsTotal)
	factory(m.SearchDuration)
	factory(m.SearchResults)
	factory(m.StoreLoadsTotal)
	factory(m.StoreLoadDuration)
	factory(m.CacheHitsTotal)
	factory(m.CacheMissesTotal)
	factory(collectors.NewGoCollector())
	factory(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Handler returns an HTTP handler serving the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSearch records a search request. matches is the count before truncation.
func (m *Metrics) RecordSearch(outcome string, duration time.Duration, matches int) {
	if m == nil {
		return
	}
	m.SearchRequestsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeTooShort {
		return
	}
	m.SearchDuration.Observe(duration.Seconds())
	if outcome == OutcomeOK {
		m.SearchResults.Observe(float64(matches))
	}
}

// RecordStoreLoad records a document store load.
func (m *Metrics) RecordStoreLoad(store string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.StoreLoadsTotal.WithLabelValues(store, outcome).Inc()
	m.StoreLoadDuration.WithLabelValues(store).Observe(duration.Seconds())
}

// RecordCache records a snapshot cache lookup.
func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
}
