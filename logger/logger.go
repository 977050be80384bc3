// Package logger builds slog loggers for the command line and provides the
// attribute helpers used across the module.
//
// Helpers return an empty slog.Attr for nil input so that calls like
// log.Debug("msg", logger.Error(err)) need no nil checks.
package logger

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// New returns a logger writing to w. level is one of debug, info, warn or
// error (default warn); format is text or json (default text).
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Error creates an attribute for a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Path(p string) slog.Attr {
	if p == "" {
		return slog.Attr{}
	}
	return slog.String("path", p)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}
