package app

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Environment variables read by NewLogger.
const (
	EnvLogLevel = "TALLY_LOG_LEVEL"
	EnvJSONLog  = "TALLY_JSON_LOG"
)

// NewLogger builds a slog logger writing to w. TALLY_JSON_LOG=1/true/json
// selects the JSON handler; TALLY_LOG_LEVEL sets the level (default warn,
// so a plain run prints only its report).
func NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}
	var handler slog.Handler
	if jsonLogEnabled() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// DiscardLogger drops everything. Used by tests and library callers.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jsonLogEnabled() bool {
	switch strings.ToLower(os.Getenv(EnvJSONLog)) {
	case "1", "true", "json":
		return true
	}
	return false
}

func levelFromEnv() slog.Leveler {
	switch strings.ToLower(os.Getenv(EnvLogLevel)) {
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
