// Package sl holds small helpers for building slog attributes.
package sl

import (
	"log/slog"
	"strings"
)

// Err returns an "error" attribute with the error text. A nil error is
// rendered as an empty string so callers can log unconditionally.
//
// Example:
//
//	log.Error("failed to record session", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Owner returns the attribute used to tag log lines with the tenant id.
func Owner(id int64) slog.Attr {
	return slog.Int64("owner_id", id)
}

// Level maps a config log level to slog. Unknown values mean info.
func Level(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
