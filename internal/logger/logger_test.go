package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		env     string
		want    zapcore.Level
		wantErr bool
	}{
		{"explicit debug", "debug", "", zap.DebugLevel, false},
		{"upper case", "WARN", "", zap.WarnLevel, false},
		{"env fallback", "", "error", zap.ErrorLevel, false},
		{"explicit wins over env", "info", "debug", zap.InfoLevel, false},
		{"default info", "", "", zap.InfoLevel, false},
		{"unknown", "verbose", "", zap.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			got, err := parseLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	l, err := New("debug", false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !l.Core().Enabled(zap.DebugLevel) {
		t.Error("debug level should be enabled")
	}

	l, err = New("", true)
	if err != nil {
		t.Fatalf("New(development) error = %v", err)
	}
	if l.Core().Enabled(zap.DebugLevel) {
		t.Error("info default should not enable debug")
	}

	if _, err := New("loud", false); err == nil {
		t.Error("New(unknown level) should fail")
	}
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWriter(&buf, "info")
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("hidden")
	l.Info("batch rendered", zap.Int("documents", 3))
	_ = l.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["msg"] != "batch rendered" || entry["documents"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Errorf("entry missing ts: %v", entry)
	}
}
