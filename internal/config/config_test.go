package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromYamlFile(t *testing.T) {
	path := writeTempConfig(t, `
engine:
  sync_interval: 5s
  history_size: 20
  outlier_threshold: 2.5
  time_slew_rate: 15
transport:
  kind: websocket
  url: ws://clock.example.com/sync
logging:
  level: debug
`)

	cfg, err := LoadFromYamlFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Engine.SyncInterval)
	assert.Equal(t, 20, cfg.Engine.HistorySize)
	assert.Equal(t, 2.5, cfg.Engine.OutlierThreshold)
	assert.Equal(t, 15.0, cfg.Engine.TimeSlewRate)
	assert.Equal(t, "websocket", cfg.Transport.Kind)
	assert.Equal(t, "ws://clock.example.com/sync", cfg.Transport.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unspecified fields picked up defaults.
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.DriftWarningThreshold)
	assert.Equal(t, 50*time.Second, cfg.Engine.SleepDetectionThreshold)
	assert.Equal(t, 9623, cfg.Server.Port)
	assert.Equal(t, "timesync", cfg.Metrics.Namespace)
}

func TestLoadFromYamlFile_Missing(t *testing.T) {
	_, err := LoadFromYamlFile("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadFromYamlFile_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "engine: [not a mapping")
	_, err := LoadFromYamlFile(path)
	assert.Error(t, err)
}

func TestLoadFromEnvVarsOnly(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "2s")
	t.Setenv("SYNC_HISTORY_SIZE", "30")
	t.Setenv("SYNC_OUTLIER_THRESHOLD", "3")
	t.Setenv("TRANSPORT_KIND", "ntp")
	t.Setenv("TRANSPORT_NTP_SERVER", "time.example.com")
	t.Setenv("TIMESYNC_PORT", "8123")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFromEnvVarsOnly()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Engine.SyncInterval)
	assert.Equal(t, 30, cfg.Engine.HistorySize)
	assert.Equal(t, 3.0, cfg.Engine.OutlierThreshold)
	assert.Equal(t, "time.example.com", cfg.Transport.NTPServer)
	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromYamlWithEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, `
engine:
  sync_interval: 5s
transport:
  kind: ntp
  ntp_server: time.yaml.example.com
`)

	t.Setenv("TRANSPORT_NTP_SERVER", "time.env.example.com")
	t.Setenv("SYNC_TIME_SLEW_RATE", "25")

	cfg, err := LoadFromYamlWithEnvOverrides(path)
	require.NoError(t, err)

	// Env beats YAML; YAML beats defaults.
	assert.Equal(t, "time.env.example.com", cfg.Transport.NTPServer)
	assert.Equal(t, 25.0, cfg.Engine.TimeSlewRate)
	assert.Equal(t, 5*time.Second, cfg.Engine.SyncInterval)
}

func TestLoadFromYamlWithEnvOverrides_MissingFileFallsBack(t *testing.T) {
	t.Setenv("TRANSPORT_KIND", "ntp")

	cfg, err := LoadFromYamlWithEnvOverrides("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Engine.SyncInterval)
}

func TestApplyDefaults_SleepThresholdTracksInterval(t *testing.T) {
	cfg := &Config{}
	cfg.Engine.SyncInterval = 3 * time.Second
	ApplyDefaults(cfg)

	assert.Equal(t, 30*time.Second, cfg.Engine.SleepDetectionThreshold)
}
