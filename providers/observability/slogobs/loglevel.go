package slogobs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits below slog.LevelDebug and backs [Observer.Trace].
// It is filtered out unless explicitly enabled via [WithLevel] or the
// GRAFO_LOG_LEVEL environment variable.
const LevelTrace = slog.LevelDebug - 4

// LevelFromEnv reads the minimum log level from the environment.
// GRAFO_LOG_LEVEL takes priority, then LOG_LEVEL; when neither is set it
// returns slog.LevelInfo.
func LevelFromEnv() slog.Level {
	level := os.Getenv("GRAFO_LOG_LEVEL")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		return slog.LevelInfo
	}
	return ParseLevel(level)
}

// ParseLevel parses a level name into a slog.Level. Supported values are
// TRACE, DEBUG, INFO, WARN, WARNING, and ERROR (case-insensitive). Unknown
// values return INFO and print a warning to stderr.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "Warning: Unknown log level '%s', using INFO\n", level)
		return slog.LevelInfo
	}
}

// levelString maps a slog.Level to its display name, including the custom
// TRACE level below DEBUG.
func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
