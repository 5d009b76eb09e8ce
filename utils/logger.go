package utils

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger создает JSON-логгер; в окружении dev включается уровень debug
func NewLogger(env string) *slog.Logger {
	return NewLoggerTo(os.Stdout, env)
}

// NewLoggerTo то же, что NewLogger, но пишет в w
func NewLoggerTo(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
