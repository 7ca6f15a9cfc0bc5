package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fjell_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for one run.
type Metrics struct {
	RecordsLoaded      prometheus.Counter
	RecordsWritten     prometheus.Counter
	CoordinateFailures prometheus.Counter

	StepDuration *prometheus.HistogramVec // labels: step
	RunDuration  prometheus.Gauge
	LastSuccess  prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all pipeline metrics on a private registry so a run's
// textfile export carries only its own series.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Source rows read by the loader.",
		}),
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Peak records written to the output file.",
		}),
		CoordinateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coordinate_failures_total",
			Help:      "Records whose UTM text did not parse into a position.",
		}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of one transform step over the whole record set.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"step"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last completed run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time at which the last run wrote its output.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RecordsLoaded,
		m.RecordsWritten,
		m.CoordinateFailures,
		m.StepDuration,
		m.RunDuration,
		m.LastSuccess,
	)

	return m
}

// Gatherer exposes the registry backing these metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics in text exposition format for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
