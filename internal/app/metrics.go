package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics instruments the aggregation engine.
type EngineMetrics struct {
	rebuilds     prometheus.Counter
	rebuildTime  prometheus.Histogram
	dailyRecords prometheus.Gauge
	generation   prometheus.Gauge
	seedFailures prometheus.Counter
}

// NewEngineMetrics registers the engine collectors on reg. A nil reg yields
// unregistered collectors, which is convenient in tests.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	f := promauto.With(reg)
	return &EngineMetrics{
		rebuilds: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fitmate",
			Subsystem: "engine",
			Name:      "rebuilds_total",
			Help:      "Number of daily record rebuilds.",
		}),
		rebuildTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fitmate",
			Subsystem: "engine",
			Name:      "rebuild_duration_seconds",
			Help:      "Time spent rebuilding daily records.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		dailyRecords: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "fitmate",
			Subsystem: "engine",
			Name:      "daily_records",
			Help:      "Number of records in the current snapshot.",
		}),
		generation: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "fitmate",
			Subsystem: "engine",
			Name:      "snapshot_generation",
			Help:      "Generation of the current snapshot.",
		}),
		seedFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fitmate",
			Subsystem: "engine",
			Name:      "load_failures_total",
			Help:      "Failed attempts to load entries from the stores.",
		}),
	}
}

func (m *EngineMetrics) observeRebuild(d time.Duration, records int, gen uint64) {
	if m == nil {
		return
	}
	m.rebuilds.Inc()
	m.rebuildTime.Observe(d.Seconds())
	m.dailyRecords.Set(float64(records))
	m.generation.Set(float64(gen))
}

func (m *EngineMetrics) loadFailed() {
	if m == nil {
		return
	}
	m.seedFailures.Inc()
}
