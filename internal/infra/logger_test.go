package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"event-rsvp-service/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): want %v, got %v", in, want, got)
		}
	}
}

func TestTraceHandler_AddsTraceFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{OtelEnabled: true, GoogleCloudProject: "proj", LogLevel: "INFO"}
	logger := slog.New(NewTraceHandler(slog.NewJSONHandler(&buf, nil), cfg))

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.InfoContext(ctx, "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}
	traceID := span.SpanContext().TraceID().String()
	if entry["trace"] != traceID {
		t.Errorf("want trace %s, got %v", traceID, entry["trace"])
	}
	if entry["logging.googleapis.com/trace"] != "projects/proj/traces/"+traceID {
		t.Errorf("unexpected cloud logging trace: %v", entry["logging.googleapis.com/trace"])
	}
}

func TestTraceHandler_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewTraceHandler(slog.NewJSONHandler(&buf, nil), &config.Config{}))

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.InfoContext(ctx, "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}
	if _, ok := entry["trace"]; ok {
		t.Error("expected no trace field when otel is disabled")
	}
}
