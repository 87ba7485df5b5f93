package workflow

import (
	"sort"
	"testing"
)

func TestComputeOrderKey(t *testing.T) {
	t.Run("deterministic across calls", func(t *testing.T) {
		a := computeOrderKey("dispatch", 0)
		b := computeOrderKey("dispatch", 0)
		if a != b {
			t.Errorf("same inputs produced different keys: %d vs %d", a, b)
		}
	})

	t.Run("distinct edges get distinct keys", func(t *testing.T) {
		seen := make(map[uint64]bool)
		for i := 0; i < 8; i++ {
			key := computeOrderKey("dispatch", i)
			if seen[key] {
				t.Fatalf("edge index %d collided", i)
			}
			seen[key] = true
		}
		if computeOrderKey("a", 0) == computeOrderKey("b", 0) {
			t.Error("different parents produced the same key")
		}
	})
}

func TestFrontier(t *testing.T) {
	t.Run("dequeues in order key order", func(t *testing.T) {
		f := newFrontier()

		keys := []uint64{}
		for i := 0; i < 5; i++ {
			key := computeOrderKey("src", i)
			keys = append(keys, key)
			f.Enqueue(delivery{Target: "t", OrderKey: key})
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		for i := 0; i < 5; i++ {
			d, ok := f.Dequeue()
			if !ok {
				t.Fatal("frontier closed unexpectedly")
			}
			if d.OrderKey != keys[i] {
				t.Errorf("dequeue %d: expected key %d, got %d", i, keys[i], d.OrderKey)
			}
		}
	})

	t.Run("dequeue blocks until enqueue", func(t *testing.T) {
		f := newFrontier()
		got := make(chan delivery, 1)

		go func() {
			d, _ := f.Dequeue()
			got <- d
		}()

		f.Enqueue(delivery{Target: "t", OrderKey: 7})
		d := <-got
		if d.OrderKey != 7 {
			t.Errorf("expected key 7, got %d", d.OrderKey)
		}
	})

	t.Run("close wakes blocked consumers", func(t *testing.T) {
		f := newFrontier()
		done := make(chan bool, 1)

		go func() {
			_, ok := f.Dequeue()
			done <- ok
		}()

		f.Close()
		if ok := <-done; ok {
			t.Error("expected Dequeue to report closed")
		}
	})

	t.Run("pending deliveries drain after close", func(t *testing.T) {
		f := newFrontier()
		f.Enqueue(delivery{Target: "t", OrderKey: 1})
		f.Close()

		if d, ok := f.Dequeue(); !ok || d.OrderKey != 1 {
			t.Errorf("expected to drain pending delivery, got ok=%v key=%d", ok, d.OrderKey)
		}
		if _, ok := f.Dequeue(); ok {
			t.Error("expected closed after drain")
		}
	})

	t.Run("enqueue after close is dropped", func(t *testing.T) {
		f := newFrontier()
		if !f.Enqueue(delivery{Target: "t", OrderKey: 1}) {
			t.Error("expected enqueue to be accepted before close")
		}
		f.Close()
		if f.Enqueue(delivery{Target: "t", OrderKey: 2}) {
			t.Error("expected enqueue after close to report the drop")
		}
		if f.Len() != 1 {
			t.Errorf("expected only the pre-close delivery queued, got %d", f.Len())
		}
	})
}
