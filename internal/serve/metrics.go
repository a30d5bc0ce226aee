package serve

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
)

const namespace = "schedviz"

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	runs        *prometheus.CounterVec
	comparisons prometheus.Counter
	failures    *prometheus.CounterVec
}

// NewMetrics registers the run, comparison and cache collectors.
func NewMetrics(runner *compare.Runner) (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Simulations served by /api/v1/run.",
		}, []string{"algorithm"}),
		comparisons: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Comparisons served by /api/v1/compare.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_failures_total",
			Help:      "Rejected or failed API requests.",
		}, []string{"endpoint"}),
	}

	collectors := []prometheus.Collector{
		m.runs,
		m.comparisons,
		m.failures,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparison_cache_hits_total",
			Help:      "Comparisons served from the dataset cache.",
		}, func() float64 { return float64(runner.CacheHits()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparison_cache_misses_total",
			Help:      "Comparisons computed from scratch.",
		}, func() float64 { return float64(runner.CacheMisses()) }),
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry returns the registry /metrics is served from.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun counts one simulation of algorithm.
func (m *Metrics) ObserveRun(algorithm string) {
	m.runs.WithLabelValues(algorithm).Inc()
}

// ObserveComparison counts one comparison.
func (m *Metrics) ObserveComparison() {
	m.comparisons.Inc()
}

// ObserveFailure counts one failed request to endpoint.
func (m *Metrics) ObserveFailure(endpoint string) {
	m.failures.WithLabelValues(endpoint).Inc()
}
