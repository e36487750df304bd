// Package logging wraps log/slog with the level/format/output switches the
// rest of the repository shares: components pull a *slog.Logger out of here
// instead of each inventing its own handler setup.
package logging

import (
	"io"
	"log/slog"
	"os"
)

var (
	defaultLogger *slog.Logger
	logLevel      slog.Level = slog.LevelInfo
)

// Init (re)configures the package-level default logger. format "json" picks
// a JSON handler; anything else falls back to text. output nil means stderr.
func Init(level, format string, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	defaultLogger = slog.New(handler)
}

// Default returns the package logger, lazily initializing it at info/text/stderr.
func Default() *slog.Logger {
	if defaultLogger == nil {
		Init("info", "text", nil)
	}
	return defaultLogger
}

// Component returns a logger tagged with a "component" field, the pattern
// every package in this module uses to identify its log lines.
func Component(name string) *slog.Logger {
	return Default().With("component", name)
}
