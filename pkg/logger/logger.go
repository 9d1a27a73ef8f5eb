package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the global logger instance
var Logger zerolog.Logger

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, file
	FilePath   string // path to log file if output=file
	Component  string // component name for structured logging
	EnableFile bool   // enable file output
}

// InitLogger initializes the global logger with the provided configuration
func InitLogger(cfg Config) error {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		Logger = zerolog.New(output).With().Timestamp().Str("component", cfg.Component).Logger()
	} else {
		var writer io.Writer
		switch cfg.Output {
		case "stderr":
			writer = os.Stderr
		case "file":
			if cfg.EnableFile && cfg.FilePath != "" {
				file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
				if err != nil {
					return err
				}
				writer = file
			} else {
				writer = os.Stdout
			}
		default:
			writer = os.Stdout
		}

		Logger = zerolog.New(writer).With().Timestamp().Str("component", cfg.Component).Logger()
	}

	log.Logger = Logger

	return nil
}

// parseLevel converts string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message
func Debug(pkg, message string) {
	Logger.Debug().
		Str("package", pkg).
		Msg(message)
}

// Debugf logs a formatted debug message
func Debugf(pkg, format string, args ...interface{}) {
	Logger.Debug().
		Str("package", pkg).
		Msgf(format, args...)
}

// Info logs an info message
func Info(pkg, message string) {
	Logger.Info().
		Str("package", pkg).
		Msg(message)
}

// Infof logs a formatted info message
func Infof(pkg, format string, args ...interface{}) {
	Logger.Info().
		Str("package", pkg).
		Msgf(format, args...)
}

// Warn logs a warning message
func Warn(pkg, message string) {
	Logger.Warn().
		Str("package", pkg).
		Msg(message)
}

// Warnf logs a formatted warning message
func Warnf(pkg, format string, args ...interface{}) {
	Logger.Warn().
		Str("package", pkg).
		Msgf(format, args...)
}

// Error logs an error message
func Error(pkg, message string, err error) {
	Logger.Error().
		Str("package", pkg).
		Err(err).
		Msg(message)
}

// Fatal logs a fatal message and exits
func Fatal(pkg, message string, err error) {
	Logger.Fatal().
		Str("package", pkg).
		Err(err).
		Msg(message)
}

// WithFields logs a message at the given level with structured fields
func WithFields(pkg, message string, level zerolog.Level, fields map[string]interface{}) {
	event := Logger.WithLevel(level).Str("package", pkg)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// DebugFields logs a debug message with structured fields
func DebugFields(pkg, message string, fields map[string]interface{}) {
	WithFields(pkg, message, zerolog.DebugLevel, fields)
}

// InfoFields logs an info message with structured fields
func InfoFields(pkg, message string, fields map[string]interface{}) {
	WithFields(pkg, message, zerolog.InfoLevel, fields)
}

// WarnFields logs a warning message with structured fields
func WarnFields(pkg, message string, fields map[string]interface{}) {
	WithFields(pkg, message, zerolog.WarnLevel, fields)
}

// Sync logs a clock synchronization event with its measurements
func Sync(event string, fields map[string]interface{}) {
	e := Logger.Debug().
		Str("package", "engine").
		Str("event", event)

	for k, v := range fields {
		e = e.Interface(k, v)
	}

	e.Msg("Sync event")
}

// HTTP logs HTTP request information
func HTTP(method, path string, statusCode int, duration time.Duration, remoteAddr string) {
	Logger.Info().
		Str("package", "http").
		Str("method", method).
		Str("path", path).
		Int("status", statusCode).
		Dur("duration", duration).
		Str("remote_addr", remoteAddr).
		Msg("HTTP request")
}

// Startup logs application startup information
func Startup(version string, config interface{}) {
	Logger.Info().
		Str("package", "main").
		Str("version", version).
		Interface("config", config).
		Msg("timesyncd starting")
}

// Shutdown logs application shutdown
func Shutdown(reason string) {
	Logger.Info().
		Str("package", "main").
		Str("reason", reason).
		Msg("timesyncd shutting down")
}
