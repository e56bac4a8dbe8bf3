package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantLevel zerolog.Level
	}{
		{
			name:      "debug level",
			opts:      Options{Level: "debug", Format: "json", Env: "development"},
			wantLevel: zerolog.DebugLevel,
		},
		{
			name:      "info level",
			opts:      Options{Level: "info", Format: "json", Env: "production"},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:      "warn level",
			opts:      Options{Level: "warn", Format: "console", Env: "staging"},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name:      "unknown level falls back to info",
			opts:      Options{Level: "loud", Format: "json", Env: "development"},
			wantLevel: zerolog.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.opts)
			if logger == nil {
				t.Fatal("Expected logger to be created")
			}

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("Expected global level %v, got %v", tt.wantLevel, zerolog.GlobalLevel())
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWithFields(t *testing.T) {
	log := NewNop()

	child := log.WithFields(map[string]interface{}{
		"run_id": "2024-01",
		"count":  42,
	})
	if child == nil {
		t.Fatal("Expected child logger")
	}
	if child == log {
		t.Error("WithFields should return a new logger")
	}

	// Must not panic on any level
	child.Debug("debug")
	child.Info("info")
	child.Warn("warn")
	child.Error("error")
	child.WithField("k", "v").Infof("formatted %d", 1)
}
