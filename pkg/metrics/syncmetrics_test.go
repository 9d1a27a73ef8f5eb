package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesync-io/timesync/internal/engine"
	"github.com/timesync-io/timesync/pkg/testutil"
)

func TestSyncMetricsRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewSyncMetricsWithConfig("timesync", "")
	require.NoError(t, registry.Register(m))

	m.OffsetMillis.Set(42.5)
	m.SyncState.Set(2)
	m.PingsTotal.Inc()
	m.BuildInfo.WithLabelValues("1.0.0", "go1.24").Set(1)

	testutil.AssertMetricValue(t, registry, "timesync_offset_milliseconds", nil, 42.5)
	testutil.AssertMetricValue(t, registry, "timesync_state", nil, 2)
	testutil.AssertMetricValue(t, registry, "timesync_pings_total", nil, 1)
	testutil.AssertMetricExists(t, registry, "timesync_build_info", map[string]string{
		"version":    "1.0.0",
		"go_version": "go1.24",
	})
}

func TestSyncMetricsCustomNamespace(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewSyncMetricsWithConfig("myapp", "clock")
	require.NoError(t, registry.Register(m))

	testutil.AssertMetricExists(t, registry, "myapp_clock_offset_milliseconds", nil)
	testutil.AssertMetricExists(t, registry, "myapp_clock_rtt_milliseconds", nil)
	testutil.AssertMetricExists(t, registry, "myapp_clock_state", nil)
}

func TestAttachUpdatesMetricsFromEngine(t *testing.T) {
	tr := &testutil.SimTransport{
		RemoteOffset: 5000,
		Deliver:      testutil.DeliverNow,
	}

	e, err := engine.New(engine.Config{
		SyncInterval:     20 * time.Millisecond,
		HistorySize:      5,
		OutlierThreshold: 2,
		TimeSlewRate:     10000,
		Transport:        tr,
	})
	require.NoError(t, err)
	defer e.Destroy()

	registry := prometheus.NewRegistry()
	m := NewSyncMetrics()
	require.NoError(t, registry.Register(m))
	detach := m.Attach(e)
	defer detach()

	e.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.WaitForInitialSync(ctx))

	// Events are delivered outside the engine lock, so the first
	// handlers may still be in flight when the initial sync resolves.
	assert.Eventually(t, func() bool {
		v, ok := testutil.GatherMetricValue(t, registry, "timesync_sync_success_total", nil)
		return ok && v >= 1
	}, 2*time.Second, 10*time.Millisecond)

	e.Stop()

	pings, ok := testutil.GatherMetricValue(t, registry, "timesync_pings_total", nil)
	require.True(t, ok)
	assert.GreaterOrEqual(t, pings, 1.0)

	// Zero simulated latency: the derived offset is exactly the
	// remote offset and the round trip is instantaneous.
	testutil.AssertMetricValue(t, registry, "timesync_offset_milliseconds", nil, 5000)
	testutil.AssertMetricValue(t, registry, "timesync_rtt_milliseconds", nil, 0)
	testutil.AssertMetricValue(t, registry, "timesync_state", nil, 2)

	// A 5000ms offset is far past the default drift warning threshold.
	drift, ok := testutil.GatherMetricValue(t, registry, "timesync_drift_warnings_total", nil)
	require.True(t, ok)
	assert.GreaterOrEqual(t, drift, 1.0)
}

func TestDetachStopsUpdates(t *testing.T) {
	tr := &testutil.SimTransport{
		RemoteOffset: 100,
		Deliver:      testutil.DeliverNow,
	}

	e, err := engine.New(engine.Config{
		SyncInterval:     20 * time.Millisecond,
		HistorySize:      5,
		OutlierThreshold: 2,
		TimeSlewRate:     1000,
		Transport:        tr,
	})
	require.NoError(t, err)
	defer e.Destroy()

	registry := prometheus.NewRegistry()
	m := NewSyncMetrics()
	require.NoError(t, registry.Register(m))
	detach := m.Attach(e)

	e.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.WaitForInitialSync(ctx))

	detach()
	time.Sleep(50 * time.Millisecond)

	before, ok := testutil.GatherMetricValue(t, registry, "timesync_pings_total", nil)
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	after, ok := testutil.GatherMetricValue(t, registry, "timesync_pings_total", nil)
	require.True(t, ok)
	assert.Equal(t, before, after, "pings counter should not move after detach")
}
