// Package logging configures the process-wide slog logger for the
// telemetry reporter and hands component-scoped loggers to the delivery
// path.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// serviceName tags every log line so beacon's output is attributable when
// the reporter is embedded in a larger host process.
const serviceName = "beacon"

// Init creates and sets the package-level default slog logger.
// When sinkIsStdout is true, uses JSONHandler on stderr (avoids mixing with
// the stdout sink's NDJSON event stream). Otherwise uses TextHandler on
// stderr for human readability. Every line carries a service=beacon
// attribute.
func Init(sinkIsStdout bool, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if sinkIsStdout {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler).With("service", serviceName))
}

// Component returns a logger tagged with the given component name, for
// packages that log off the report path (sink flushes, async delivery).
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
