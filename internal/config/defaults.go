package config

import "time"

// ApplyDefaults sets default values for unspecified configuration fields
func ApplyDefaults(cfg *Config) {
	// Engine defaults
	if cfg.Engine.SyncInterval == 0 {
		cfg.Engine.SyncInterval = 10 * time.Second
	}
	if cfg.Engine.HistorySize == 0 {
		cfg.Engine.HistorySize = 10
	}
	if cfg.Engine.OutlierThreshold == 0 {
		cfg.Engine.OutlierThreshold = 2
	}
	if cfg.Engine.TimeSlewRate == 0 {
		cfg.Engine.TimeSlewRate = 10
	}
	if cfg.Engine.ScaleRate == 0 {
		cfg.Engine.ScaleRate = 0.05
	}
	if cfg.Engine.DriftWarningThreshold == 0 {
		cfg.Engine.DriftWarningThreshold = 500 * time.Millisecond
	}
	if cfg.Engine.SleepDetectionThreshold == 0 {
		cfg.Engine.SleepDetectionThreshold = 10 * cfg.Engine.SyncInterval
	}

	// Transport defaults
	if cfg.Transport.Kind == "" {
		cfg.Transport.Kind = "ntp"
	}
	if cfg.Transport.NTPServer == "" {
		cfg.Transport.NTPServer = "pool.ntp.org"
	}
	if cfg.Transport.NTPTimeout == 0 {
		cfg.Transport.NTPTimeout = 5 * time.Second
	}
	if cfg.Transport.NTPVersion == 0 {
		cfg.Transport.NTPVersion = 4
	}
	if cfg.Transport.PingsPerSecond == 0 {
		cfg.Transport.PingsPerSecond = 10
	}
	if cfg.Transport.BurstSize == 0 {
		cfg.Transport.BurstSize = 5
	}

	// Circuit breaker defaults
	if cfg.Transport.Breaker.MaxRequests == 0 {
		cfg.Transport.Breaker.MaxRequests = 3
	}
	if cfg.Transport.Breaker.Interval == 0 {
		cfg.Transport.Breaker.Interval = 60 * time.Second
	}
	if cfg.Transport.Breaker.Timeout == 0 {
		cfg.Transport.Breaker.Timeout = 30 * time.Second
	}
	if cfg.Transport.Breaker.FailureThreshold == 0 {
		cfg.Transport.Breaker.FailureThreshold = 0.6
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9623
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "timesync"
	}
}
