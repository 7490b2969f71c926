package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nerrad567/lightguard-core/internal/control"
	"github.com/nerrad567/lightguard-core/internal/failsafe"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/config"
)

// Compile-time checks that Logger plugs into the control-cycle packages.
var (
	_ control.Logger  = (*Logger)(nil)
	_ failsafe.Logger = (*Logger)(nil)
)

func setupLogger(t *testing.T, level, format string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewWithWriter(config.LoggingConfig{Level: level, Format: format}, "test", &buf), &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_Destinations(t *testing.T) {
	for _, out := range []string{"stdout", "stderr", ""} {
		if New(config.LoggingConfig{Output: out}, "1.0.0") == nil {
			t.Errorf("New(output=%q) = nil", out)
		}
	}
	if Default() == nil {
		t.Error("Default() = nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLogger_DefaultFields(t *testing.T) {
	logger, buf := setupLogger(t, "info", "json")
	logger.Info("tick overrun", "elapsed_ms", 12)

	entry := decode(t, buf)
	if entry["service"] != "lightguard" {
		t.Errorf("service = %v, want lightguard", entry["service"])
	}
	if entry["version"] != "test" {
		t.Errorf("version = %v, want test", entry["version"])
	}
	if entry["msg"] != "tick overrun" {
		t.Errorf("msg = %v, want %q", entry["msg"], "tick overrun")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := setupLogger(t, "warn", "json")

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %s", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn not written: %s", buf.String())
	}
}

func TestLogger_Component(t *testing.T) {
	logger, buf := setupLogger(t, "info", "json")

	child := logger.Component("control")
	if child == logger {
		t.Fatal("Component() returned the parent logger")
	}
	child.Info("state changed")

	if entry := decode(t, buf); entry["component"] != "control" {
		t.Errorf("component = %v, want control", entry["component"])
	}
}

func TestLogger_TextFormat(t *testing.T) {
	logger, buf := setupLogger(t, "debug", "text")
	logger.Debug("tracks lost", "count", 2)

	out := buf.String()
	if !strings.Contains(out, "service=lightguard") || !strings.Contains(out, "count=2") {
		t.Errorf("text output = %q", out)
	}
}
