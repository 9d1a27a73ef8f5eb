package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/timesync-io/timesync/internal/config"
	"github.com/timesync-io/timesync/internal/engine"
	"github.com/timesync-io/timesync/internal/server"
	"github.com/timesync-io/timesync/internal/transport"
	"github.com/timesync-io/timesync/pkg/logger"
	"github.com/timesync-io/timesync/pkg/metrics"
)

var (
	// Build information
	version = "dev"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		println("timesyncd version", version)
		os.Exit(0)
	}

	// Load configuration before the logger exists, so failures go to
	// stderr directly.
	cfg, err := loadConfig(*configFile)
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitLogger(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		Component:  "timesyncd",
		EnableFile: cfg.Logging.EnableFile,
	}); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Startup(version, cfg)

	registry := metrics.NewRegistryWithConfig(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	if err := registry.Register(); err != nil {
		logger.Fatal("main", "Failed to register metrics", err)
	}

	m := registry.GetMetrics()
	m.BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)

	tr, closeTransport, err := buildTransport(cfg)
	if err != nil {
		logger.Fatal("main", "Failed to create transport", err)
	}

	e, err := engine.New(engine.Config{
		SyncInterval:            cfg.Engine.SyncInterval,
		HistorySize:             cfg.Engine.HistorySize,
		OutlierThreshold:        cfg.Engine.OutlierThreshold,
		TimeSlewRate:            cfg.Engine.TimeSlewRate,
		ScaleRate:               cfg.Engine.ScaleRate,
		DriftWarningThreshold:   cfg.Engine.DriftWarningThreshold,
		SleepDetectionThreshold: cfg.Engine.SleepDetectionThreshold,
		Transport:               tr,
	})
	if err != nil {
		logger.Fatal("main", "Failed to create sync engine", err)
	}

	detach := m.Attach(e)
	defer detach()

	e.Start()
	logger.InfoFields("main", "Sync engine started", map[string]interface{}{
		"transport":     cfg.Transport.Kind,
		"sync_interval": cfg.Engine.SyncInterval.String(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.New(cfg, registry.GetRegistry(), e)
	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- srv.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.InfoFields("main", "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		cancel()
	case err := <-serverErrChan:
		if err != nil {
			logger.Error("main", "Server error", err)
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main", "Server shutdown error", err)
	}

	e.Destroy()
	if closeTransport != nil {
		if err := closeTransport(); err != nil {
			logger.Error("main", "Transport close error", err)
		}
	}

	logger.Shutdown("graceful")
}

// loadConfig loads configuration based on whether a config file is specified
func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		// Priority: Environment Variables > YAML File > Defaults
		return config.LoadFromYamlWithEnvOverrides(configFile)
	}
	// Priority: Environment Variables > Defaults
	return config.LoadFromEnvVarsOnly()
}

// buildTransport constructs the configured transport, optionally
// wrapped in a circuit breaker. The returned close function is nil
// when the transport holds no connection.
func buildTransport(cfg *config.Config) (transport.Transport, func() error, error) {
	var (
		tr        transport.Transport
		closeFunc func() error
	)

	switch cfg.Transport.Kind {
	case "websocket":
		ws, err := transport.DialWebSocket(cfg.Transport.URL, transport.WSOptions{
			PingsPerSecond: cfg.Transport.PingsPerSecond,
			Burst:          cfg.Transport.BurstSize,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("websocket dial %s: %w", cfg.Transport.URL, err)
		}
		tr = ws
		closeFunc = ws.Close

	case "ntp":
		tr = transport.NewNTPTransport(cfg.Transport.NTPServer, transport.NTPOptions{
			Timeout: cfg.Transport.NTPTimeout,
			Version: cfg.Transport.NTPVersion,
		})

	default:
		return nil, nil, fmt.Errorf("unknown transport kind %q", cfg.Transport.Kind)
	}

	if cfg.Transport.Breaker.Enabled {
		tr = transport.NewBreakerTransport(tr, transport.BreakerConfig{
			MaxRequests:      cfg.Transport.Breaker.MaxRequests,
			Interval:         cfg.Transport.Breaker.Interval,
			Timeout:          cfg.Transport.Breaker.Timeout,
			FailureThreshold: cfg.Transport.Breaker.FailureThreshold,
		})
	}

	return tr, closeFunc, nil
}
