package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown", "path", "form_config.yaml")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if m["msg"] != "shown" || m["path"] != "form_config.yaml" {
		t.Fatalf("unexpected record %v", m)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
	if _, err := Zap("info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestSet(t *testing.T) {
	prev := L
	defer Set(prev)
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	Set(l)
	Set(nil)
	if L != l {
		t.Fatalf("Set(nil) must keep the current logger")
	}
}
