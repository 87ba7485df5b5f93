package workflow

import (
	"container/heap"
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// delivery is one schedulable unit of work: a single envelope (or a
// completed join batch) addressed to one executor.
type delivery struct {
	// Target is the executor to invoke.
	Target ExecutorID

	// Env is the envelope for ordinary executors. Unused when Batch is set.
	Env Envelope

	// Batch is the completed, declaration-ordered batch for a join
	// executor. Nil for ordinary deliveries.
	Batch []Envelope

	// OrderKey is a deterministic sort key computed from the producing
	// executor and the edge index taken. Sibling deliveries that are ready
	// simultaneously dequeue in a stable order across runs.
	OrderKey uint64
}

// computeOrderKey hashes the producing executor id and the edge index into
// a stable uint64 sort key. The key only breaks ties among deliveries that
// are ready at the same time; completion order across concurrent siblings
// is still unordered by design.
func computeOrderKey(parent ExecutorID, edgeIndex int) uint64 {
	h := sha256.New()
	h.Write([]byte(parent))

	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(edgeIndex))
	h.Write(idx[:])

	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

type deliveryHeap []delivery

func (h deliveryHeap) Len() int            { return len(h) }
func (h deliveryHeap) Less(i, j int) bool  { return h[i].OrderKey < h[j].OrderKey }
func (h deliveryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *deliveryHeap) Push(x interface{}) { *h = append(*h, x.(delivery)) }
func (h *deliveryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// frontier is the per-run work queue. It keeps ready deliveries in a
// priority heap keyed by OrderKey so dequeue order is deterministic even
// when deliveries are enqueued concurrently from sibling handlers.
//
// All methods are safe for concurrent use.
type frontier struct {
	mu     sync.Mutex
	cond   *sync.Cond
	heap   deliveryHeap
	closed bool
}

func newFrontier() *frontier {
	f := &frontier{}
	f.cond = sync.NewCond(&f.mu)
	heap.Init(&f.heap)
	return f
}

// Enqueue adds a delivery and reports whether it was accepted. Enqueueing
// after Close drops the delivery and returns false; the run is already
// terminating and the delivery would never execute.
func (f *frontier) Enqueue(d delivery) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	heap.Push(&f.heap, d)
	f.cond.Signal()
	return true
}

// Dequeue blocks until a delivery is available or the frontier is closed.
// The second return is false once the frontier is closed and drained.
func (f *frontier) Dequeue() (delivery, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for f.heap.Len() == 0 && !f.closed {
		f.cond.Wait()
	}
	if f.heap.Len() == 0 {
		return delivery{}, false
	}
	return heap.Pop(&f.heap).(delivery), true
}

// Close wakes all blocked consumers. Pending deliveries may still be
// drained; new deliveries are discarded.
func (f *frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.cond.Broadcast()
}

// Len reports the number of queued deliveries.
func (f *frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heap.Len()
}
