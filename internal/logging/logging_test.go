package logging

import (
	"log/slog"
	"testing"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"  warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := Level(tt.in); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewReturnsLogger(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	logger := New()
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if !logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("default level should enable info")
	}
}

func TestNewRespectsLogLevel(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "error")
	logger := New()
	if logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Error("warn should be disabled at error level")
	}
	if !logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("error should be enabled at error level")
	}
}
