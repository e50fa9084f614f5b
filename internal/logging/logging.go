// Package logging provides the configured slog logger used across the
// brandlens services. Output format is controlled by LOG_FORMAT (text/json,
// defaulting to text on a TTY) and verbosity by LOG_LEVEL.
package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// New creates a configured logger. Text output is used when LOG_FORMAT=text
// or when stdout is a terminal; JSON otherwise. Source locations are
// shortened to paths relative to the working directory.
func New() *slog.Logger {
	wd, _ := os.Getwd()

	opts := &slog.HandlerOptions{
		Level:     Level(os.Getenv("LOG_LEVEL")),
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if src, ok := a.Value.Any().(*slog.Source); ok {
					if rel, err := filepath.Rel(wd, src.File); err == nil {
						src.File = rel
					} else {
						src.File = filepath.Base(src.File)
					}
				}
			}
			return a
		},
	}

	format := os.Getenv("LOG_FORMAT")
	var handler slog.Handler
	if format == "text" || (format == "" && isTerminal(os.Stdout)) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// SetDefault creates a logger and installs it as the slog default.
func SetDefault() *slog.Logger {
	logger := New()
	slog.SetDefault(logger)
	return logger
}

// Level parses a log level name, defaulting to info.
func Level(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
