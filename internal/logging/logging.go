package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init настраивает глобальный slog с JSON-выводом.
// Уровни: debug, info, warn, error; неизвестный уровень считается info.
func Init(level string) *slog.Logger {
	return New(os.Stdout, level)
}

// New создаёт JSON-логгер в w и делает его логгером по умолчанию.
func New(w io.Writer, level string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: true,
	}))
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
