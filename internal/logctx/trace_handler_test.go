package logctx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

// TestTraceHandler_NoSpanContext verifies that logs without span context
// do NOT include trace_id or span_id fields.
func TestTraceHandler_NoSpanContext(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewTraceHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{})))
	logger.InfoContext(context.Background(), "test message", "key", "value")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse JSON log output: %v", err)
	}

	if _, exists := logEntry["trace_id"]; exists {
		t.Errorf("trace_id should not be present without span context, got: %v", logEntry["trace_id"])
	}

	if _, exists := logEntry["span_id"]; exists {
		t.Errorf("span_id should not be present without span context, got: %v", logEntry["span_id"])
	}

	if logEntry["msg"] != "test message" {
		t.Errorf("expected msg='test message', got: %v", logEntry["msg"])
	}

	if logEntry["key"] != "value" {
		t.Errorf("expected key='value', got: %v", logEntry["key"])
	}
}

// TestTraceHandler_WithSpanContext verifies that logs carrying a valid span
// context include trace_id and span_id fields.
func TestTraceHandler_WithSpanContext(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewTraceHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{})))

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:  trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "test message")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse JSON log output: %v", err)
	}

	if logEntry["trace_id"] != spanCtx.TraceID().String() {
		t.Errorf("expected trace_id %q, got: %v", spanCtx.TraceID().String(), logEntry["trace_id"])
	}

	if logEntry["span_id"] != spanCtx.SpanID().String() {
		t.Errorf("expected span_id %q, got: %v", spanCtx.SpanID().String(), logEntry["span_id"])
	}
}

// TestLoggerFromContext verifies the context round trip and the default
// fallback.
func TestLoggerFromContext(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	ctx := WithLogger(context.Background(), logger)
	if LoggerFromContext(ctx) != logger {
		t.Error("expected the logger stored in the context")
	}

	if LoggerFromContext(context.Background()) != slog.Default() {
		t.Error("expected slog.Default() for a bare context")
	}
}
