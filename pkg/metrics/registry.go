package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry manages Prometheus metric registration
type Registry struct {
	registry    *prometheus.Registry
	syncMetrics *SyncMetrics
}

// NewRegistry creates a new metrics registry with sync metrics
// Uses default namespace "timesync" and empty subsystem
func NewRegistry() *Registry {
	return NewRegistryWithConfig("timesync", "")
}

// NewRegistryWithConfig creates a new metrics registry with custom namespace and subsystem
func NewRegistryWithConfig(namespace, subsystem string) *Registry {
	return &Registry{
		registry:    prometheus.NewRegistry(),
		syncMetrics: NewSyncMetricsWithConfig(namespace, subsystem),
	}
}

// Register registers all timesync metrics plus Go runtime collectors
func (r *Registry) Register() error {
	if err := r.registry.Register(r.syncMetrics); err != nil {
		return err
	}

	r.registry.MustRegister(collectors.NewGoCollector())
	r.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return nil
}

// MustRegister registers all metrics and panics on error
func (r *Registry) MustRegister() {
	if err := r.Register(); err != nil {
		panic(err)
	}
}

// GetRegistry returns the underlying Prometheus registry
func (r *Registry) GetRegistry() *prometheus.Registry {
	return r.registry
}

// GetMetrics returns the sync metrics instance
func (r *Registry) GetMetrics() *SyncMetrics {
	return r.syncMetrics
}
