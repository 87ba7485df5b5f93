package emit

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOTelEmitter(t *testing.T) {
	newRecorder := func() (*OTelEmitter, *tracetest.SpanRecorder) {
		recorder := tracetest.NewSpanRecorder()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		return NewOTelEmitter(provider.Tracer("test")), recorder
	}

	t.Run("creates a span per event with attributes", func(t *testing.T) {
		emitter, recorder := newRecorder()

		emitter.Emit(Event{
			RunID:      "run-1",
			Seq:        3,
			ExecutorID: "aggregate",
			Msg:        "barrier fired",
			Meta:       map[string]interface{}{"latency_ms": int64(12)},
		})

		spans := recorder.Ended()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		span := spans[0]
		if span.Name() != "barrier fired" {
			t.Errorf("expected span named after the event, got %q", span.Name())
		}

		attrs := make(map[string]interface{})
		for _, kv := range span.Attributes() {
			attrs[string(kv.Key)] = kv.Value.AsInterface()
		}
		if attrs["agentflow.run_id"] != "run-1" {
			t.Errorf("expected run id attribute, got %v", attrs["agentflow.run_id"])
		}
		if attrs["agentflow.seq"] != int64(3) {
			t.Errorf("expected seq attribute, got %v", attrs["agentflow.seq"])
		}
		if attrs["agentflow.executor.latency_ms"] != int64(12) {
			t.Errorf("expected mapped latency attribute, got %v", attrs["agentflow.executor.latency_ms"])
		}
	})

	t.Run("error metadata sets error status", func(t *testing.T) {
		emitter, recorder := newRecorder()

		emitter.Emit(Event{
			RunID: "run-1",
			Msg:   "run failed",
			Meta:  map[string]interface{}{"error": "handler exploded"},
		})

		spans := recorder.Ended()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		status := spans[0].Status()
		if status.Code != codes.Error {
			t.Errorf("expected error status, got %v", status.Code)
		}
		if status.Description != "handler exploded" {
			t.Errorf("expected error description, got %q", status.Description)
		}
	})

	t.Run("emit batch", func(t *testing.T) {
		emitter, recorder := newRecorder()

		events := []Event{
			{RunID: "run-1", Msg: "dispatch"},
			{RunID: "run-1", Msg: "yield"},
		}
		if err := emitter.EmitBatch(context.Background(), events); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := len(recorder.Ended()); got != 2 {
			t.Errorf("expected 2 spans, got %d", got)
		}
	})
}
