package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the Prometheus counters, histograms, and gauges for dataset generation.
type Metrics struct {
	RowsWritten       *prometheus.CounterVec // labels: table
	SamplerFallbacks  prometheus.Counter
	PredictedFailures prometheus.Counter
	RunDuration       *prometheus.HistogramVec // labels: stage
	Runs              *prometheus.CounterVec   // labels: stage, outcome={success,error}
	Running           prometheus.Gauge
	LastSuccess       prometheus.Gauge
}

// NewMetrics creates and registers all generator metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lightgen",
			Name:      "rows_written_total",
			Help:      "Rows handed to the sink, by table.",
		}, []string{"table"}),
		SamplerFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightgen",
			Name:      "sampler_centroid_fallbacks_total",
			Help:      "Lights placed on their neighborhood centroid after rejection sampling gave up.",
		}),
		PredictedFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightgen",
			Name:      "predicted_failures_total",
			Help:      "Weather rows carrying a predicted failure date.",
		}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lightgen",
			Name:      "run_duration_seconds",
			Help:      "Duration of a generation run including the sink write.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lightgen",
			Name:      "runs_total",
			Help:      "Generation runs by stage and outcome.",
		}, []string{"stage", "outcome"}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightgen",
			Name:      "run_in_progress",
			Help:      "1 while a generation run is active, 0 otherwise.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightgen",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsWritten,
		m.SamplerFallbacks,
		m.PredictedFailures,
		m.RunDuration,
		m.Runs,
		m.Running,
		m.LastSuccess,
	}
}

// WriteTextfile dumps the default registry in the node_exporter textfile
// format, for one-shot runs that exit before anything could scrape them.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
