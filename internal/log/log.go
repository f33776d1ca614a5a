// Package log provides structured logging for go-gazepointer.
// It wraps slog with sensible defaults and optional rotating file output.
package log

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Init initializes the global logger with the specified level.
// Valid levels: "debug", "info", "warn", "error"
func Init(level string) {
	InitWithFile(level, "")
}

// InitWithFile initializes the global logger and, when path is not empty,
// mirrors output into a size-rotated log file.
func InitWithFile(level, path string) {
	once.Do(func() {
		var out io.Writer = os.Stderr
		if path != "" {
			out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
				Filename:   path,
				LocalTime:  true,
				Compress:   true,
				MaxSize:    50, // megabytes
				MaxAge:     7,  // days
				MaxBackups: 3,
			})
		}
		logger = newLogger(out, level)
		slog.SetDefault(logger)
	})
}

func newLogger(out io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	// Use JSON in production, text in development
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
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

// L returns the global logger instance.
func L() *slog.Logger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
