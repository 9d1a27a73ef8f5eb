package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/timesync-io/timesync/internal/engine"
)

// SyncMetrics encapsulates all sync engine metrics
type SyncMetrics struct {
	// Measurement metrics
	OffsetMillis prometheus.Gauge
	RTTMillis    prometheus.Gauge
	RTTHistogram prometheus.Histogram

	// State metrics
	SyncState prometheus.Gauge

	// Lifecycle counters
	PingsTotal           prometheus.Counter
	SyncSuccessTotal     prometheus.Counter
	DriftWarningsTotal   prometheus.Counter
	SleepDetectionsTotal prometheus.Counter

	// Operational metrics
	BuildInfo *prometheus.GaugeVec
}

// NewSyncMetrics creates the metrics with the default "timesync"
// namespace.
func NewSyncMetrics() *SyncMetrics {
	return NewSyncMetricsWithConfig("timesync", "")
}

// NewSyncMetricsWithConfig creates and initializes all sync engine
// metrics with a custom namespace and subsystem.
func NewSyncMetricsWithConfig(namespace, subsystem string) *SyncMetrics {
	return &SyncMetrics{
		OffsetMillis: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "offset_milliseconds",
			Help:      "Current target offset between the local and remote clocks in milliseconds",
		}),
		RTTMillis: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rtt_milliseconds",
			Help:      "Round-trip time of the most recent ping/pong exchange in milliseconds",
		}),
		RTTHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rtt_distribution_milliseconds",
			Help:      "Distribution of ping/pong round-trip times in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		SyncState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "state",
			Help:      "Synchronization state (0 = unsynced, 1 = syncing, 2 = synced)",
		}),
		PingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pings_total",
			Help:      "Total number of pings dispatched",
		}),
		SyncSuccessTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sync_success_total",
			Help:      "Total number of successfully processed pongs",
		}),
		DriftWarningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "drift_warnings_total",
			Help:      "Total number of drift warnings raised",
		}),
		SleepDetectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sleep_detections_total",
			Help:      "Total number of detected suspend/resume gaps",
		}),
		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "build_info",
			Help:      "Build information of the timesync daemon",
		}, []string{"version", "go_version"}),
	}
}

// collectors returns every metric for registration and collection.
func (m *SyncMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.OffsetMillis,
		m.RTTMillis,
		m.RTTHistogram,
		m.SyncState,
		m.PingsTotal,
		m.SyncSuccessTotal,
		m.DriftWarningsTotal,
		m.SleepDetectionsTotal,
		m.BuildInfo,
	}
}

// Describe implements prometheus.Collector
func (m *SyncMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *SyncMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// Attach subscribes the metrics to an engine's lifecycle events and
// returns a function that detaches them again.
func (m *SyncMetrics) Attach(e *engine.Engine) func() {
	cancels := []func(){
		e.On(engine.EventSyncStart, func(engine.Event) {
			m.PingsTotal.Inc()
		}),
		e.On(engine.EventSyncSuccess, func(ev engine.Event) {
			p := ev.Payload.(engine.SyncSuccess)
			m.SyncSuccessTotal.Inc()
			m.OffsetMillis.Set(p.Offset)
			m.RTTMillis.Set(p.RTT)
			m.RTTHistogram.Observe(p.RTT)
		}),
		e.On(engine.EventDriftWarning, func(engine.Event) {
			m.DriftWarningsTotal.Inc()
		}),
		e.On(engine.EventSleepDetected, func(engine.Event) {
			m.SleepDetectionsTotal.Inc()
		}),
		e.On(engine.EventStateChange, func(ev engine.Event) {
			p := ev.Payload.(engine.StateChange)
			m.SyncState.Set(float64(p.To))
		}),
	}

	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}
