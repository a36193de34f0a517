package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(string) bool
	}{
		{"json", "json", func(s string) bool { return strings.HasPrefix(s, "{") }},
		{"text", "text", func(s string) bool { return strings.Contains(s, "msg=hello") }},
		{"console", "console", func(s string) bool { return strings.Contains(s, "msg=hello") }},
		{"unknown falls back to json", "xml", func(s string) bool { return strings.HasPrefix(s, "{") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Format: tt.format, Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			l.Info("hello")
			if !tt.check(buf.String()) {
				t.Errorf("unexpected output for format %q: %s", tt.format, buf.String())
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")
	defer SetLevel("info")

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %s", len(entries), buf.String())
	}
	if entries[0]["msg"] != "w" || entries[1]["msg"] != "e" {
		t.Errorf("unexpected messages: %v", entries)
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newBufferLogger(t, "error")
	defer SetLevel("info")

	l.Info("dropped")
	SetLevel("debug")
	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}
	l.Debug("kept")

	entries := decodeLines(t, buf)
	if len(entries) != 1 || entries[0]["msg"] != "kept" {
		t.Errorf("unexpected entries after SetLevel: %v", entries)
	}
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warn", "warning", " error "} {
		if !ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = false", s)
		}
	}
	for _, s := range []string{"", "trace", "fatal"} {
		if ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = true", s)
		}
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.With("op", "signin").Info("dispatch")

	entries := decodeLines(t, buf)
	if len(entries) != 1 || entries[0]["op"] != "signin" {
		t.Errorf("With attribute missing: %v", entries)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	l.With("a", 1).WithContext(context.Background()).Info("nothing")
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	l, buf := newBufferLogger(t, "info")
	SetDefault(l)
	Info("via default")

	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("package-level Info did not reach default logger: %s", buf.String())
	}
}
