package emit

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapEmitter(t *testing.T) {
	t.Run("logs events at info level with fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		emitter := NewZapEmitter(zap.New(core))

		emitter.Emit(Event{
			RunID:      "run-1",
			Seq:        2,
			ExecutorID: "dispatch",
			Msg:        "executor dispatched",
			Meta:       map[string]interface{}{"target": "compliance_expert"},
		})

		entries := logs.All()
		if len(entries) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(entries))
		}
		entry := entries[0]
		if entry.Level != zapcore.InfoLevel {
			t.Errorf("expected info level, got %v", entry.Level)
		}
		if entry.Message != "executor dispatched" {
			t.Errorf("unexpected message: %q", entry.Message)
		}

		fields := entry.ContextMap()
		if fields["run_id"] != "run-1" {
			t.Errorf("expected run_id field, got %v", fields["run_id"])
		}
		if fields["executor_id"] != "dispatch" {
			t.Errorf("expected executor_id field, got %v", fields["executor_id"])
		}
		if fields["target"] != "compliance_expert" {
			t.Errorf("expected meta field, got %v", fields["target"])
		}
	})

	t.Run("error metadata escalates to error level", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		emitter := NewZapEmitter(zap.New(core))

		emitter.Emit(Event{
			RunID: "run-1",
			Msg:   "run failed",
			Meta:  map[string]interface{}{"error": "handler exploded"},
		})

		entries := logs.All()
		if len(entries) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(entries))
		}
		if entries[0].Level != zapcore.ErrorLevel {
			t.Errorf("expected error level, got %v", entries[0].Level)
		}
	})

	t.Run("nil logger is safe", func(t *testing.T) {
		emitter := NewZapEmitter(nil)
		emitter.Emit(Event{RunID: "run-1", Msg: "noop"})
	})
}
