package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: FormatJSON}, "test-svc", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return out
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "invalid-level")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug to be filtered at info level, got %q", buf.String())
	}
	l.Info("shown")
	if buf.Len() == 0 {
		t.Error("expected info message to be written")
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("LOG_FORMAT")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.GetLogger().GetLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %s", l.GetLogger().GetLevel())
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug").WithComponent("di")

	l.Debug("resolved", Fields(FieldKey, "database", FieldDepth, 2))

	out := decodeLine(t, &buf)
	if out["message"] != "resolved" {
		t.Errorf("expected message 'resolved', got %v", out["message"])
	}
	if out[FieldComponent] != "di" {
		t.Errorf("expected component 'di', got %v", out[FieldComponent])
	}
	if out[FieldKey] != "database" {
		t.Errorf("expected key 'database', got %v", out[FieldKey])
	}
	if out["service"] != "test-svc" {
		t.Errorf("expected service 'test-svc', got %v", out["service"])
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info").
		WithFields(map[string]interface{}{FieldScope: "abc"}).
		WithError(errors.New("boom"))

	l.Error("failed")

	out := decodeLine(t, &buf)
	if out[FieldScope] != "abc" {
		t.Errorf("expected scope field, got %v", out[FieldScope])
	}
	if out["error"] != "boom" {
		t.Errorf("expected error field, got %v", out["error"])
	}
}

func TestEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")
	if l.Enabled(zerolog.DebugLevel) {
		t.Error("expected debug disabled at warn level")
	}
	if !l.Enabled(zerolog.ErrorLevel) {
		t.Error("expected error enabled at warn level")
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("nothing")
	if l.Enabled(zerolog.ErrorLevel) {
		t.Error("expected nop logger to be disabled")
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: FormatConsole, NoColor: true}, "svc", &buf)
	l.Info("hello", Fields(FieldKey, "greeting"))

	line := buf.String()
	if !strings.Contains(line, "[INF]") {
		t.Errorf("expected [INF] level tag, got %q", line)
	}
	if !strings.Contains(line, "key:") {
		t.Errorf("expected formatted field name, got %q", line)
	}
}

func TestInitAndGlobal(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	Init(Config{Level: "debug", Format: "json", Output: "discard"})
	if GetGlobalLogger() == prev {
		t.Error("expected Init to replace the global logger")
	}

	// Smoke test package-level helpers.
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")
}

func TestRegisterAndGet(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	var buf bytes.Buffer
	custom := jsonLogger(&buf, "info")
	Register("custom", custom)
	if Get("custom") != custom {
		t.Error("expected registered logger to be returned")
	}

	SetGlobalLogger(Nop())
	if Get("custom") == custom {
		t.Error("expected registry to be reset when the global logger changes")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(f) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(f), f)
	}
	if f["a"] != 1 || f["b"] != "two" {
		t.Errorf("unexpected fields: %v", f)
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("provide", errors.New("missing"))
	if ef[FieldOperation] != "provide" || ef[FieldError] != "missing" {
		t.Errorf("unexpected error fields: %v", ef)
	}

	df := DurationFields("provide", 1500*time.Microsecond)
	if df[FieldDuration] != 1.5 {
		t.Errorf("expected 1.5ms, got %v", df[FieldDuration])
	}

	merged := MergeWithError(nil, errors.New("x"))
	if merged[FieldError] != "x" {
		t.Errorf("expected error merged into nil map, got %v", merged)
	}
}
