// Package logging configures zerolog for the client library and the rbx CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug    LogLevel = "debug"
	LevelInfo     LogLevel = "info"
	LevelWarn     LogLevel = "warn"
	LevelError    LogLevel = "error"
	LevelDisabled LogLevel = "disabled"
)

// Component names used for the "component" field.
const (
	ComponentClient     = "rbx-client"
	ComponentSession    = "rbx-session"
	ComponentCache      = "rbx-cache"
	ComponentRateLimit  = "rbx-ratelimit"
	ComponentPagination = "rbx-pagination"
	ComponentServer     = "rbx-serve"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output defaults to os.Stderr when nil.
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(string(cfg.Level)))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a child of the global logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug:
//   - Session cache hit/miss
//   - Page fetches (url, cursor, item count)
//   - Reference resolution branch (partial or fetched)
//
// Info:
//   - Request log when DebugRequests is set
//   - Waiting out a rate-limit delay
//   - Server startup/shutdown
//
// Warn:
//   - Retry attempts
//   - Unknown session cache bucket
//   - Response cache errors (request still served)
//   - Unknown universe creator type
//
// Error:
//   - Retry exhaustion
//   - Rate limited beyond the retry ceiling
//
// Context Fields:
//   - host: API host (users.roblox.com)
//   - path: request path
//   - status_code: HTTP status code
//   - error_class: client, server, rate_limit, csrf, network
//   - bucket, id: session cache lookups
//   - cursor: page cursor
