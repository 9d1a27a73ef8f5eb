// Package config provides configuration loading with explicit naming
//
// Available functions:
//
//	LoadFromEnvVarsOnly()              - Environment variables ONLY
//	LoadFromYamlFile(path)             - YAML file ONLY (no env overrides)
//	LoadFromYamlWithEnvOverrides(path) - YAML base + Environment overrides
//	                                     Priority: Env Vars > YAML > Defaults
//
// Environment variables supported:
//
//	ENGINE:
//	  - SYNC_INTERVAL, SYNC_HISTORY_SIZE, SYNC_OUTLIER_THRESHOLD
//	  - SYNC_TIME_SLEW_RATE, SYNC_SCALE_RATE
//	  - SYNC_DRIFT_WARNING_THRESHOLD, SYNC_SLEEP_DETECTION_THRESHOLD
//
//	TRANSPORT:
//	  - TRANSPORT_KIND (websocket|ntp), TRANSPORT_URL, TRANSPORT_NTP_SERVER
//	  - TRANSPORT_NTP_TIMEOUT, TRANSPORT_NTP_VERSION
//	  - TRANSPORT_PINGS_PER_SECOND, TRANSPORT_BURST_SIZE
//	  - BREAKER_ENABLED, BREAKER_MAX_REQUESTS, BREAKER_INTERVAL
//	  - BREAKER_TIMEOUT, BREAKER_FAILURE_THRESHOLD
//
//	SERVER:
//	  - TIMESYNC_ADDRESS, TIMESYNC_PORT
//	  - SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT
//
//	LOGGING:
//	  - LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, LOG_ENABLE_FILE, LOG_FILE_PATH
//
//	METRICS:
//	  - METRICS_NAMESPACE, METRICS_SUBSYSTEM
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/timesync-io/timesync/pkg/logger"
)

// Config represents the complete application configuration
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Transport TransportConfig `yaml:"transport"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// EngineConfig contains sync engine configuration
type EngineConfig struct {
	SyncInterval            time.Duration `yaml:"sync_interval"`
	HistorySize             int           `yaml:"history_size"`
	OutlierThreshold        float64       `yaml:"outlier_threshold"`
	TimeSlewRate            float64       `yaml:"time_slew_rate"`
	ScaleRate               float64       `yaml:"scale_rate"`
	DriftWarningThreshold   time.Duration `yaml:"drift_warning_threshold"`
	SleepDetectionThreshold time.Duration `yaml:"sleep_detection_threshold"`
}

// TransportConfig contains transport configuration
type TransportConfig struct {
	Kind           string        `yaml:"kind"` // websocket or ntp
	URL            string        `yaml:"url"`
	NTPServer      string        `yaml:"ntp_server"`
	NTPTimeout     time.Duration `yaml:"ntp_timeout"`
	NTPVersion     int           `yaml:"ntp_version"`
	PingsPerSecond float64       `yaml:"pings_per_second"`
	BurstSize      int           `yaml:"burst_size"`
	Breaker        BreakerConfig `yaml:"circuit_breaker"`
}

// BreakerConfig contains circuit breaker configuration
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Address      string        `yaml:"address"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	EnableFile bool   `yaml:"enable_file"`
	FilePath   string `yaml:"file_path"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// LoadFromYamlFile reads configuration from a YAML file only (no env var overrides)
func LoadFromYamlFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("config", "Failed to read config file", err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		logger.Error("config", "Failed to parse config file", err)
		return nil, fmt.Errorf("failed to parse YAML config file %s: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration", err)
		return nil, fmt.Errorf("configuration validation failed for %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromYamlWithEnvOverrides loads base config from YAML, then overrides with environment variables
// Priority: Environment Variables > YAML File > Defaults
func LoadFromYamlWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadFromYamlFile(path)
	if err != nil {
		logger.Warn("config", "Failed to load YAML config file, falling back to env vars only")
		cfg = &Config{}
		ApplyDefaults(cfg)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration after env overrides", err)
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFromEnvVarsOnly loads configuration from environment variables only (no YAML file)
// Priority: Environment Variables > Defaults
func LoadFromEnvVarsOnly() (*Config, error) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration from environment", err)
		return nil, fmt.Errorf("environment configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to an existing config
func applyEnvOverrides(cfg *Config) {
	// ---------------------------------------------------------------------------
	// ENGINE - Sync engine configuration
	// ---------------------------------------------------------------------------
	if interval := os.Getenv("SYNC_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Engine.SyncInterval = d
		}
	}
	if size := os.Getenv("SYNC_HISTORY_SIZE"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			cfg.Engine.HistorySize = s
		}
	}
	if threshold := os.Getenv("SYNC_OUTLIER_THRESHOLD"); threshold != "" {
		if f, err := strconv.ParseFloat(threshold, 64); err == nil {
			cfg.Engine.OutlierThreshold = f
		}
	}
	if slewRate := os.Getenv("SYNC_TIME_SLEW_RATE"); slewRate != "" {
		if f, err := strconv.ParseFloat(slewRate, 64); err == nil {
			cfg.Engine.TimeSlewRate = f
		}
	}
	if scaleRate := os.Getenv("SYNC_SCALE_RATE"); scaleRate != "" {
		if f, err := strconv.ParseFloat(scaleRate, 64); err == nil {
			cfg.Engine.ScaleRate = f
		}
	}
	if drift := os.Getenv("SYNC_DRIFT_WARNING_THRESHOLD"); drift != "" {
		if d, err := time.ParseDuration(drift); err == nil {
			cfg.Engine.DriftWarningThreshold = d
		}
	}
	if sleep := os.Getenv("SYNC_SLEEP_DETECTION_THRESHOLD"); sleep != "" {
		if d, err := time.ParseDuration(sleep); err == nil {
			cfg.Engine.SleepDetectionThreshold = d
		}
	}

	// ---------------------------------------------------------------------------
	// TRANSPORT - Ping/pong transport configuration
	// ---------------------------------------------------------------------------
	if kind := os.Getenv("TRANSPORT_KIND"); kind != "" {
		cfg.Transport.Kind = kind
	}
	if url := os.Getenv("TRANSPORT_URL"); url != "" {
		cfg.Transport.URL = url
	}
	if server := os.Getenv("TRANSPORT_NTP_SERVER"); server != "" {
		cfg.Transport.NTPServer = server
	}
	if timeout := os.Getenv("TRANSPORT_NTP_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Transport.NTPTimeout = d
		}
	}
	if version := os.Getenv("TRANSPORT_NTP_VERSION"); version != "" {
		if v, err := strconv.Atoi(version); err == nil {
			cfg.Transport.NTPVersion = v
		}
	}
	if pps := os.Getenv("TRANSPORT_PINGS_PER_SECOND"); pps != "" {
		if f, err := strconv.ParseFloat(pps, 64); err == nil {
			cfg.Transport.PingsPerSecond = f
		}
	}
	if burst := os.Getenv("TRANSPORT_BURST_SIZE"); burst != "" {
		if b, err := strconv.Atoi(burst); err == nil {
			cfg.Transport.BurstSize = b
		}
	}

	// ---------------------------------------------------------------------------
	// CIRCUIT BREAKER - Circuit breaker configuration
	// ---------------------------------------------------------------------------
	if enabled := os.Getenv("BREAKER_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			cfg.Transport.Breaker.Enabled = b
		}
	}
	if maxRequests := os.Getenv("BREAKER_MAX_REQUESTS"); maxRequests != "" {
		if r, err := strconv.ParseUint(maxRequests, 10, 32); err == nil {
			cfg.Transport.Breaker.MaxRequests = uint32(r)
		}
	}
	if interval := os.Getenv("BREAKER_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Transport.Breaker.Interval = d
		}
	}
	if timeout := os.Getenv("BREAKER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Transport.Breaker.Timeout = d
		}
	}
	if threshold := os.Getenv("BREAKER_FAILURE_THRESHOLD"); threshold != "" {
		if f, err := strconv.ParseFloat(threshold, 64); err == nil {
			cfg.Transport.Breaker.FailureThreshold = f
		}
	}

	// ---------------------------------------------------------------------------
	// SERVER - HTTP server configuration
	// ---------------------------------------------------------------------------
	if addr := os.Getenv("TIMESYNC_ADDRESS"); addr != "" {
		cfg.Server.Address = addr
	}
	if port := os.Getenv("TIMESYNC_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if readTimeout := os.Getenv("SERVER_READ_TIMEOUT"); readTimeout != "" {
		if d, err := time.ParseDuration(readTimeout); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if writeTimeout := os.Getenv("SERVER_WRITE_TIMEOUT"); writeTimeout != "" {
		if d, err := time.ParseDuration(writeTimeout); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// ---------------------------------------------------------------------------
	// LOGGING - Logging configuration
	// ---------------------------------------------------------------------------
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
	if output := os.Getenv("LOG_OUTPUT"); output != "" {
		cfg.Logging.Output = output
	}
	if enableFile := os.Getenv("LOG_ENABLE_FILE"); enableFile != "" {
		if b, err := strconv.ParseBool(enableFile); err == nil {
			cfg.Logging.EnableFile = b
		}
	}
	if filePath := os.Getenv("LOG_FILE_PATH"); filePath != "" {
		cfg.Logging.FilePath = filePath
	}

	// ---------------------------------------------------------------------------
	// METRICS - Prometheus metrics configuration
	// ---------------------------------------------------------------------------
	if namespace := os.Getenv("METRICS_NAMESPACE"); namespace != "" {
		cfg.Metrics.Namespace = namespace
	}
	if subsystem := os.Getenv("METRICS_SUBSYSTEM"); subsystem != "" {
		cfg.Metrics.Subsystem = subsystem
	}
}
