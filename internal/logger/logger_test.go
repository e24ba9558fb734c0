package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNew_WritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "dashboard", slog.LevelInfo)
	l.Debug("hidden")
	l.Info("rendered", "slot", "currentPrice")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not one JSON record: %v\n%s", err, buf.String())
	}
	if rec["service"] != "dashboard" || rec["slot"] != "currentPrice" {
		t.Errorf("record = %v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	if tid := TraceID(ctx); tid != "" {
		t.Errorf("expected empty trace id, got %q", tid)
	}
	ctx = WithTraceID(ctx, "3f2a")
	if tid := TraceID(ctx); tid != "3f2a" {
		t.Errorf("expected '3f2a', got %q", tid)
	}
}

func TestWithTrace(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, "dashboard", slog.LevelInfo)

	if LogWithTrace(context.Background()) != nil {
		t.Error("expected nil attrs without a trace id")
	}

	ctx := WithTraceID(context.Background(), "req-1")
	WithTrace(ctx, base).Info("prediction complete")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["trace_id"] != "req-1" {
		t.Errorf("trace_id = %v", rec["trace_id"])
	}
}
