package emit

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter implements Emitter by creating OpenTelemetry spans.
//
// Each event becomes a span named after event.Msg, carrying the run ID,
// sequence number, executor ID, and all metadata as attributes. If the
// event metadata contains an "error" string, the span status is set to
// error and the error is recorded.
//
// Usage:
//
//	tracer := otel.Tracer("agentflow")
//	emitter := emit.NewOTelEmitter(tracer)
//	runner := workflow.NewRunner(workflow.WithEmitter(emitter))
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an OTelEmitter using the given tracer.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

// Emit creates a span for the event and ends it immediately. Events
// represent points in time rather than durations, so open spans are not
// kept.
func (o *OTelEmitter) Emit(event Event) {
	ctx := context.Background()
	_, span := o.tracer.Start(ctx, event.Msg)
	defer span.End()

	o.addAttributes(span, event)

	if errStr, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, errStr)
		span.RecordError(fmt.Errorf("%s", errStr))
	}
}

// EmitBatch creates spans for multiple events. The span processor
// batches them for efficient export.
func (o *OTelEmitter) EmitBatch(ctx context.Context, events []Event) error {
	for _, event := range events {
		_, span := o.tracer.Start(ctx, event.Msg)
		o.addAttributes(span, event)
		if errStr, ok := event.Meta["error"].(string); ok {
			span.SetStatus(codes.Error, errStr)
			span.RecordError(fmt.Errorf("%s", errStr))
		}
		span.End()
	}
	return nil
}

// Flush forces export of all pending spans. Call before shutdown so
// buffered spans reach the backend. Returns nil when the installed
// tracer provider does not support flushing.
func (o *OTelEmitter) Flush(ctx context.Context) error {
	tp := otel.GetTracerProvider()

	type flusher interface {
		ForceFlush(context.Context) error
	}

	if f, ok := tp.(flusher); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}

func (o *OTelEmitter) addAttributes(span trace.Span, event Event) {
	span.SetAttributes(
		attribute.String("agentflow.run_id", event.RunID),
		attribute.Int("agentflow.seq", event.Seq),
		attribute.String("agentflow.executor_id", event.ExecutorID),
	)

	for key, value := range event.Meta {
		attrKey := key
		switch key {
		case "latency_ms":
			attrKey = "agentflow.executor.latency_ms"
		case "target":
			attrKey = "agentflow.route.target"
		case "source":
			attrKey = "agentflow.barrier.source"
		case "model":
			attrKey = "agentflow.llm.model"
		case "tokens_in":
			attrKey = "agentflow.llm.tokens_in"
		case "tokens_out":
			attrKey = "agentflow.llm.tokens_out"
		}

		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(attrKey, v))
		case int:
			span.SetAttributes(attribute.Int(attrKey, v))
		case int64:
			span.SetAttributes(attribute.Int64(attrKey, v))
		case float64:
			span.SetAttributes(attribute.Float64(attrKey, v))
		case bool:
			span.SetAttributes(attribute.Bool(attrKey, v))
		case time.Duration:
			span.SetAttributes(attribute.Int64(attrKey, int64(v/time.Millisecond)))
		default:
			span.SetAttributes(attribute.String(attrKey, fmt.Sprintf("%v", v)))
		}
	}
}
