package config

import (
	"errors"
	"strconv"
	"time"
)

// Validate checks if the configuration is valid
func Validate(cfg *Config) error {
	if err := validateEngine(&cfg.Engine); err != nil {
		return err
	}

	if err := validateTransport(&cfg.Transport); err != nil {
		return err
	}

	if err := validateServer(&cfg.Server); err != nil {
		return err
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}

	return nil
}

func validateEngine(cfg *EngineConfig) error {
	if cfg.SyncInterval < 10*time.Millisecond {
		return errors.New("sync_interval must be at least 10ms, got " + cfg.SyncInterval.String())
	}

	if cfg.HistorySize < 1 || cfg.HistorySize > 1000 {
		return errors.New("history_size must be between 1 and 1000, got " + strconv.Itoa(cfg.HistorySize))
	}

	if cfg.OutlierThreshold <= 0 {
		return errors.New("outlier_threshold must be a positive number")
	}

	if cfg.TimeSlewRate <= 0 {
		return errors.New("time_slew_rate must be a positive number of milliseconds")
	}

	if cfg.ScaleRate <= 0 || cfg.ScaleRate >= 1 {
		return errors.New("scale_rate must be between 0 and 1 exclusive")
	}

	if cfg.DriftWarningThreshold <= 0 {
		return errors.New("drift_warning_threshold must be positive")
	}

	if cfg.SleepDetectionThreshold <= cfg.SyncInterval {
		return errors.New("sleep_detection_threshold must exceed sync_interval")
	}

	return nil
}

func validateTransport(cfg *TransportConfig) error {
	switch cfg.Kind {
	case "websocket":
		if cfg.URL == "" {
			return errors.New("transport url is required when kind is websocket")
		}
	case "ntp":
		if cfg.NTPServer == "" {
			return errors.New("ntp_server is required when kind is ntp")
		}
		if cfg.NTPVersion < 2 || cfg.NTPVersion > 4 {
			return errors.New("ntp_version must be 2, 3, or 4, got " + strconv.Itoa(cfg.NTPVersion))
		}
		if cfg.NTPTimeout < time.Second || cfg.NTPTimeout > 60*time.Second {
			return errors.New("ntp_timeout must be between 1s and 60s")
		}
	default:
		return errors.New("transport kind must be websocket or ntp, got " + cfg.Kind)
	}

	if cfg.PingsPerSecond < 0 {
		return errors.New("pings_per_second must not be negative")
	}

	if cfg.Breaker.Enabled {
		if cfg.Breaker.FailureThreshold <= 0 || cfg.Breaker.FailureThreshold > 1 {
			return errors.New("circuit breaker failure_threshold must be in (0, 1]")
		}
	}

	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return errors.New("port must be between 1 and 65535, got " + strconv.Itoa(cfg.Port))
	}

	if cfg.ReadTimeout < 1*time.Second || cfg.ReadTimeout > 60*time.Second {
		return errors.New("read_timeout must be between 1s and 60s")
	}

	if cfg.WriteTimeout < 1*time.Second || cfg.WriteTimeout > 60*time.Second {
		return errors.New("write_timeout must be between 1s and 60s")
	}

	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	switch cfg.Level {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return errors.New("log level must be one of debug, info, warn, error, fatal, got " + cfg.Level)
	}

	switch cfg.Format {
	case "json", "console":
	default:
		return errors.New("log format must be json or console, got " + cfg.Format)
	}

	if cfg.Output == "file" && cfg.EnableFile && cfg.FilePath == "" {
		return errors.New("file_path is required when logging to a file")
	}

	return nil
}
