package telemetry

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger creates the service logger. Logs go to stderr so stdout
// stays reserved for the variable snapshot output.
func NewLogger(service string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	return zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// NewConsoleLogger creates a human-friendly logger for interactive use.
func NewConsoleLogger(service string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
