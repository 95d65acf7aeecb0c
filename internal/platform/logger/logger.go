// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a JSON logger for daemon surfaces (serve, run, watch, mcp).
func New(component string, level zerolog.Level) zerolog.Logger {
	return zerolog.New(os.Stderr).Level(level).With().
		Str("component", component).
		Timestamp().
		Logger()
}

// Console returns a human-readable logger for interactive CLI commands.
func Console(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().
		Timestamp().
		Logger()
}

// Discard returns a logger that drops everything; used by tests and the
// MCP stdio server, whose stdout must stay protocol-clean.
func Discard() zerolog.Logger {
	return zerolog.New(io.Discard)
}
