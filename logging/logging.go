// ABOUTME: Builds the zerolog logger from the [logging] config section
// ABOUTME: Console or JSON output to stderr or a log file (the --debug log)

// Package logging configures zerolog for eis-history.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DebugLogFile is the log file used by the --debug flag
const DebugLogFile = "eis-history-debug.log"

// Config holds logging configuration
type Config struct {
	Level  string    // trace, debug, info, warn, error
	Format string    // console or json
	File   string    // when set, log to this file instead of Output
	Output io.Writer // defaults to os.Stderr
}

// New creates a logger and returns a closer for the log file, if one was opened
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to create log file: %w", err)
		}

		out = f
		closer = f
	}

	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05.000",
			NoColor:    cfg.File != "",
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	log := zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	return log, closer, nil
}

// parseLevel converts a string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
