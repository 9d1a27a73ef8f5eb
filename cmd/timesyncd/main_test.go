package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesync-io/timesync/internal/config"
	"github.com/timesync-io/timesync/internal/transport"
)

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := tmpDir + "/test-config.yaml"

	configContent := `
server:
  port: 9559
engine:
  sync_interval: 5s
transport:
  kind: ntp
  ntp_server: pool.ntp.org
logging:
  level: info
`
	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := loadConfig(configFile)
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 9559, cfg.Server.Port)
	assert.Equal(t, "ntp", cfg.Transport.Kind)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	cfg, err := loadConfig("")
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Defaults apply when nothing is set
	assert.Equal(t, 9623, cfg.Server.Port)
	assert.Equal(t, "ntp", cfg.Transport.Kind)
}

func TestBuildTransport_NTP(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Transport.Kind = "ntp"
	cfg.Transport.NTPServer = "pool.ntp.org"

	tr, closeFunc, err := buildTransport(cfg)
	require.NoError(t, err)
	assert.NotNil(t, tr)
	assert.Nil(t, closeFunc)

	_, isNTP := tr.(*transport.NTPTransport)
	assert.True(t, isNTP)
}

func TestBuildTransport_NTPWithBreaker(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Transport.Kind = "ntp"
	cfg.Transport.Breaker.Enabled = true

	tr, _, err := buildTransport(cfg)
	require.NoError(t, err)

	_, isBreaker := tr.(*transport.BreakerTransport)
	assert.True(t, isBreaker)
}

func TestBuildTransport_UnknownKind(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Transport.Kind = "carrier-pigeon"

	_, _, err := buildTransport(cfg)
	assert.Error(t, err)
}
