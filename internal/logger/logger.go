// Package logger configures the process-wide slog logger: JSON output for
// production log aggregation, text for local development.
package logger

import (
	"log/slog"
	"os"
)

var L *slog.Logger = slog.Default()

// Setup installs the global logger for the given environment.
func Setup(environment string) {
	var handler slog.Handler
	switch environment {
	case "production", "prod":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	L = slog.New(handler)
	slog.SetDefault(L)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
