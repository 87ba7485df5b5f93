package workflow

import (
	"errors"
	"testing"
)

func testJoinEdge() fanInEdge {
	return fanInEdge{From: []ExecutorID{"w1", "w2", "w3"}, To: "join"}
}

func TestBarrier_Deliver(t *testing.T) {
	t.Run("fires only when set completes", func(t *testing.T) {
		b := newBarrier(testJoinEdge())

		batch, err := b.deliver(Envelope{Source: "w1", Payload: TextResult{Text: "one"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch != nil {
			t.Fatal("barrier fired before set completed")
		}

		batch, err = b.deliver(Envelope{Source: "w2", Payload: TextResult{Text: "two"}})
		if err != nil || batch != nil {
			t.Fatalf("expected buffering, got batch=%v err=%v", batch, err)
		}

		batch, err = b.deliver(Envelope{Source: "w3", Payload: TextResult{Text: "three"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(batch) != 3 {
			t.Fatalf("expected batch of 3, got %d", len(batch))
		}
	})

	t.Run("batch order follows declaration not arrival", func(t *testing.T) {
		b := newBarrier(testJoinEdge())

		// Deliver in reverse declaration order.
		for _, src := range []ExecutorID{"w3", "w1"} {
			if _, err := b.deliver(Envelope{Source: src, Payload: TextResult{Text: string(src)}}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		batch, err := b.deliver(Envelope{Source: "w2", Payload: TextResult{Text: "w2"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []ExecutorID{"w1", "w2", "w3"}
		for i, env := range batch {
			if env.Source != want[i] {
				t.Errorf("batch[%d]: expected source %q, got %q", i, want[i], env.Source)
			}
		}
	})

	t.Run("duplicate delivery fails", func(t *testing.T) {
		b := newBarrier(testJoinEdge())

		if _, err := b.deliver(Envelope{Source: "w1", Payload: TextResult{}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := b.deliver(Envelope{Source: "w1", Payload: TextResult{}})

		var dup *DuplicateDeliveryError
		if !errors.As(err, &dup) {
			t.Fatalf("expected *DuplicateDeliveryError, got %T: %v", err, err)
		}
		if dup.Source != "w1" || dup.Join != "join" {
			t.Errorf("unexpected error fields: %+v", dup)
		}
	})

	t.Run("delivery after firing fails", func(t *testing.T) {
		b := newBarrier(fanInEdge{From: []ExecutorID{"w1"}, To: "join"})

		batch, err := b.deliver(Envelope{Source: "w1", Payload: TextResult{}})
		if err != nil || batch == nil {
			t.Fatalf("expected barrier to fire, got batch=%v err=%v", batch, err)
		}

		_, err = b.deliver(Envelope{Source: "w1", Payload: TextResult{}})
		var dup *DuplicateDeliveryError
		if !errors.As(err, &dup) {
			t.Fatalf("expected *DuplicateDeliveryError after firing, got %T: %v", err, err)
		}
	})

	t.Run("undeclared source fails", func(t *testing.T) {
		b := newBarrier(testJoinEdge())

		_, err := b.deliver(Envelope{Source: "stranger", Payload: TextResult{}})
		var routing *RoutingError
		if !errors.As(err, &routing) {
			t.Fatalf("expected *RoutingError, got %T: %v", err, err)
		}
		if routing.Source != "stranger" || routing.Join != "join" {
			t.Errorf("unexpected error fields: %+v", routing)
		}
	})

	t.Run("missing reports undelivered predecessors", func(t *testing.T) {
		b := newBarrier(testJoinEdge())

		if _, err := b.deliver(Envelope{Source: "w2", Payload: TextResult{}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		missing := b.missing()
		if len(missing) != 2 || missing[0] != "w1" || missing[1] != "w3" {
			t.Errorf("expected missing [w1 w3], got %v", missing)
		}
	})

	t.Run("missing is nil after firing", func(t *testing.T) {
		b := newBarrier(fanInEdge{From: []ExecutorID{"w1"}, To: "join"})
		if _, err := b.deliver(Envelope{Source: "w1", Payload: TextResult{}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if missing := b.missing(); missing != nil {
			t.Errorf("expected nil missing after firing, got %v", missing)
		}
	})
}
