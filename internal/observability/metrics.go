// Package observability holds the Prometheus instrumentation for the
// query pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters and gauges the orchestrator and cache report.
type Metrics struct {
	CacheLookups     *prometheus.CounterVec // labels: type={weather,forecast,hourly}, result={hit,miss}
	UpstreamRequests *prometheus.CounterVec // labels: provider, outcome={success,error}
	UpstreamErrors   *prometheus.CounterVec // labels: provider, kind
	Degradations     *prometheus.CounterVec // labels: mode={stale,similar}
	BreakerRejected  prometheus.Counter
	SweepRemoved     prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CacheLookups,
		m.UpstreamRequests,
		m.UpstreamErrors,
		m.Degradations,
		m.BreakerRejected,
		m.SweepRemoved,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// do not trip "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherbot",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by data type and result.",
		}, []string{"type", "result"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherbot",
			Name:      "upstream_requests_total",
			Help:      "Upstream fetches by provider and outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherbot",
			Name:      "upstream_errors_total",
			Help:      "Classified upstream failures by provider and kind.",
		}, []string{"provider", "kind"}),
		Degradations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherbot",
			Name:      "degradations_total",
			Help:      "Requests served from stale or similar-location cache.",
		}, []string{"mode"}),
		BreakerRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherbot",
			Name:      "breaker_rejected_total",
			Help:      "Calls rejected by an open circuit breaker.",
		}),
		SweepRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherbot",
			Name:      "cache_sweep_removed_total",
			Help:      "Expired cache entries removed by the periodic sweep.",
		}),
	}
}
