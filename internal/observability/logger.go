// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability provides the zerolog logger factory and the
// Prometheus metrics recorded during a collection run.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// NewLogger creates a zerolog logger writing to w (stderr when nil).
// Format "json" emits one JSON object per line; anything else uses the
// human-readable console writer.
func NewLogger(cfg types.LoggingConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	out := w
	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
		}
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(cfg.Level))
}

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

// WithRun adds the run identifier to a logger.
func WithRun(logger zerolog.Logger, runID string) zerolog.Logger {
	return logger.With().Str("run_id", runID).Logger()
}

// WithORCID adds the identifier being processed to a logger.
func WithORCID(logger zerolog.Logger, orcid string) zerolog.Logger {
	return logger.With().Str("orcid", orcid).Logger()
}

// WithDOI adds the DOI being enriched to a logger.
func WithDOI(logger zerolog.Logger, doi string) zerolog.Logger {
	return logger.With().Str("doi", doi).Logger()
}
