package recommend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRebuildTotal          = "engine_rebuild_total"
	MetricRebuildErrors         = "engine_rebuild_errors_total"
	MetricRebuildDuration       = "engine_rebuild_duration_seconds"
	MetricLastRebuildTimestamp  = "engine_last_rebuild_timestamp"
	MetricSnapshotPropertyCount = "engine_snapshot_property_count"
	MetricQueriesTotal          = "engine_queries_total"
)

// Metrics contains Prometheus metrics for the recommendation engine.
// All operations are thread-safe.
type Metrics struct {
	rebuildTotal          prometheus.Counter
	rebuildErrors         prometheus.Counter
	rebuildDuration       prometheus.Histogram
	lastRebuildTimestamp  prometheus.Gauge
	snapshotPropertyCount prometheus.Gauge
	queriesTotal          *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		rebuildTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRebuildTotal,
			Help: "Total number of engine rebuild attempts",
		}),
		rebuildErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRebuildErrors,
			Help: "Total number of failed engine rebuilds",
		}),
		rebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRebuildDuration,
			Help:    "Histogram of engine rebuild duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}),
		lastRebuildTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastRebuildTimestamp,
			Help: "Unix timestamp of the last successful snapshot publish",
		}),
		snapshotPropertyCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricSnapshotPropertyCount,
			Help: "Number of properties in the currently published snapshot",
		}),
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricQueriesTotal,
			Help: "Total number of engine queries by operation",
		}, []string{"operation"}),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.rebuildTotal,
		m.rebuildErrors,
		m.rebuildDuration,
		m.lastRebuildTimestamp,
		m.snapshotPropertyCount,
		m.queriesTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRebuild records one rebuild attempt and its outcome.
func (m *Metrics) ObserveRebuild(d time.Duration, err error) {
	m.rebuildTotal.Inc()
	m.rebuildDuration.Observe(d.Seconds())
	if err != nil {
		m.rebuildErrors.Inc()
	}
}

// SetSnapshot records a successful snapshot publish.
func (m *Metrics) SetSnapshot(propertyCount int) {
	m.lastRebuildTimestamp.SetToCurrentTime()
	m.snapshotPropertyCount.Set(float64(propertyCount))
}

// IncQuery counts one served query for the named operation.
func (m *Metrics) IncQuery(operation string) {
	m.queriesTotal.WithLabelValues(operation).Inc()
}
