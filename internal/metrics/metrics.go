// Package metrics holds the Prometheus collectors for the search pipeline
// and the selection channel.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	searches       *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	eventsReturned prometheus.Histogram
	eventsRejected *prometheus.CounterVec
	staleResults   prometheus.Counter
	selections     *prometheus.CounterVec
	sessions       prometheus.Gauge
	assetLoads     *prometheus.CounterVec
}

// New registers every collector on a private registry so tests can build
// as many instances as they like.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventmap",
		Name:      "searches_total",
		Help:      "Search submissions by outcome",
	}, []string{"outcome"})
	m.fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventmap",
		Name:      "remote_fetch_duration_seconds",
		Help:      "Latency of events API requests",
		Buckets:   prometheus.DefBuckets,
	})
	m.eventsReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventmap",
		Name:      "search_results",
		Help:      "Events left after filtering",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
	})
	m.eventsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventmap",
		Name:      "events_rejected_total",
		Help:      "Fetched events dropped by the result filter",
	}, []string{"stage"})
	m.staleResults = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventmap",
		Name:      "stale_results_total",
		Help:      "Search responses discarded because a newer submission exists",
	})
	m.selections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventmap",
		Name:      "selections_total",
		Help:      "Selection events published by origin",
	}, []string{"origin"})
	m.sessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventmap",
		Name:      "sessions_active",
		Help:      "Page sessions currently held in memory",
	})
	m.assetLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventmap",
		Name:      "map_asset_loads_total",
		Help:      "Mapping library downloads by result",
	}, []string{"result"})

	m.registry.MustRegister(
		m.searches, m.fetchDuration, m.eventsReturned, m.eventsRejected,
		m.staleResults, m.selections, m.sessions, m.assetLoads,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// A nil *Metrics is valid and records nothing.

func (m *Metrics) ObserveSearch(outcome string, results int) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		m.eventsReturned.Observe(float64(results))
	}
}

func (m *Metrics) ObserveFetch(seconds float64) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(seconds)
}

func (m *Metrics) Rejected(stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.eventsRejected.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) Stale() {
	if m == nil {
		return
	}
	m.staleResults.Inc()
}

func (m *Metrics) Selection(origin string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(origin).Inc()
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.sessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.sessions.Dec()
	}
}

func (m *Metrics) AssetLoad(result string) {
	if m == nil {
		return
	}
	m.assetLoads.WithLabelValues(result).Inc()
}
