package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf))
	l.Info("hello", "key", "value")

	out := buf.String()
	for _, want := range []string{"hello", "key", "value"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(WithWriter(&buf), WithDebug(false)).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug logged without WithDebug: %q", buf.String())
	}
	New(WithWriter(&buf), WithDebug(true)).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug not logged: %q", buf.String())
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(WithWriter(&buf), WithJSON(true), WithPretty(true)).Info("structured", "count", 42)

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("not JSON: %v: %q", err, buf.String())
	}
	if parsed["msg"] != "structured" || parsed["count"] != float64(42) {
		t.Errorf("parsed = %v", parsed)
	}
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	New(WithWriter(&buf), WithPretty(true)).Info("pretty output")
	if !strings.Contains(buf.String(), "pretty output") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNew_Writers(t *testing.T) {
	var a, b bytes.Buffer
	New(WithWriters(&a, &b)).Info("multi")
	if !strings.Contains(a.String(), "multi") || !strings.Contains(b.String(), "multi") {
		t.Errorf("a = %q, b = %q", a.String(), b.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.With("k", "v").WithGroup("g").Info("msg")
	if l.Handler().Enabled(context.Background(), slog.LevelError) {
		t.Error("nop handler enabled")
	}
}

func TestMulti(t *testing.T) {
	var text, js bytes.Buffer
	l := Multi(
		New(WithWriter(&text)),
		New(WithWriter(&js), WithJSON(true), WithDebug(true)),
	)
	l.Debug("only json")
	l.With("req", "r1").Info("both")

	if strings.Contains(text.String(), "only json") {
		t.Error("text handler received debug record")
	}
	if !strings.Contains(js.String(), "only json") {
		t.Error("json handler missed debug record")
	}
	if !strings.Contains(text.String(), "req=r1") || !strings.Contains(js.String(), `"req":"r1"`) {
		t.Errorf("attrs not propagated: text=%q json=%q", text.String(), js.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
