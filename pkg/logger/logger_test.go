package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInitLogger_JSON(t *testing.T) {
	err := InitLogger(Config{
		Level:     "debug",
		Format:    "json",
		Output:    "stdout",
		Component: "test",
	})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(Config{
		Level:     "info",
		Format:    "console",
		Component: "test",
	})
	require.NoError(t, err)
}

func TestInitLogger_FileFallsBackToStdout(t *testing.T) {
	// EnableFile false with output=file should not fail
	err := InitLogger(Config{
		Level:  "info",
		Format: "json",
		Output: "file",
	})
	require.NoError(t, err)
}

func TestLoggingHelpersDoNotPanic(t *testing.T) {
	require.NoError(t, InitLogger(Config{Level: "debug", Format: "json"}))

	Debug("test", "debug message")
	Debugf("test", "debug %d", 1)
	Info("test", "info message")
	Infof("test", "info %d", 2)
	Warn("test", "warn message")
	Warnf("test", "warn %d", 3)
	Error("test", "error message", assert.AnError)

	DebugFields("test", "fields", map[string]interface{}{"a": 1})
	InfoFields("test", "fields", map[string]interface{}{"b": "x"})
	WarnFields("test", "fields", map[string]interface{}{"c": 2.5})

	Sync("sync_success", map[string]interface{}{"offset_ms": 12.5, "rtt_ms": 40.0})
	HTTP("GET", "/time", 200, 0, "127.0.0.1")
	Startup("test", nil)
	Shutdown("test complete")
}
