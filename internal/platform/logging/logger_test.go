package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo).Named("poller")

	logger.Info("snapshot published", "sport", "Soccer", "events", 6, "error", errors.New("boom"))
	logger.Debug("dropped below level")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one log line, got %d: %q", len(lines), buf.String())
	}

	var decoded map[string]any
	if err := sonic.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if decoded["msg"] != "snapshot published" {
		t.Fatalf("unexpected msg: %v", decoded["msg"])
	}
	if decoded["logger"] != "poller" {
		t.Fatalf("unexpected logger name: %v", decoded["logger"])
	}
	if decoded["sport"] != "Soccer" {
		t.Fatalf("unexpected sport field: %v", decoded["sport"])
	}
	if decoded["error"] != "boom" {
		t.Fatalf("unexpected error field: %v", decoded["error"])
	}
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelDebug)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.WarnContext(ctx, "fetch retry")

	out := buf.String()
	if !strings.Contains(out, `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`) {
		t.Fatalf("expected trace id in %q", out)
	}
	if !strings.Contains(out, `"span_id":"00f067aa0ba902b7"`) {
		t.Fatalf("expected span id in %q", out)
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if logger.Enabled(LevelError) {
		t.Fatalf("nil logger should report disabled")
	}
}

func TestLogger_ZapBacksStdLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo).Named("http")

	zap.NewStdLog(logger.Zap()).Print("http: TLS handshake error")

	if !strings.Contains(buf.String(), `"msg":"http: TLS handshake error"`) {
		t.Fatalf("std log line not written through zap: %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"logger":"http"`) {
		t.Fatalf("expected logger name on std log line: %q", buf.String())
	}

	var nilLogger *Logger
	if nilLogger.Zap() == nil {
		t.Fatalf("nil logger must return a usable zap logger")
	}
}
