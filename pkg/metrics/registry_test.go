package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesync-io/timesync/pkg/testutil"
)

func TestRegistryRegistersAllCollectors(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register())

	// Sync metrics plus the Go runtime collectors.
	testutil.AssertMetricExists(t, r.GetRegistry(), "timesync_state", nil)
	testutil.AssertMetricExists(t, r.GetRegistry(), "go_goroutines", nil)

	families, err := r.GetRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRegistryRegisterTwiceFails(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register())
	assert.Error(t, r.Register())
}

func TestRegistryCustomNamespace(t *testing.T) {
	r := NewRegistryWithConfig("myapp", "sync")
	r.MustRegister()

	testutil.AssertMetricExists(t, r.GetRegistry(), "myapp_sync_state", nil)
	assert.NotNil(t, r.GetMetrics())
}
