package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to stdout. Level parsing is lenient:
// anything unrecognized falls back to info so a bad env var never silences
// the service.
func New(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
