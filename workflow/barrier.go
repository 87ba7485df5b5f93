package workflow

import "sync"

// barrier tracks which declared predecessors of one fan-in join have
// delivered during a single run, and buffers their envelopes until the set
// is complete.
//
// One barrier exists per join per run, created lazily on the first arrival
// and retained after firing so late deliveries are rejected rather than
// opening a fresh barrier. Mutation is mutually exclusive within the join
// so that two envelopes completing the set concurrently cannot both
// trigger the handler.
type barrier struct {
	mu       sync.Mutex
	join     ExecutorID
	expected []ExecutorID
	received map[ExecutorID]Envelope
	fired    bool
}

func newBarrier(edge fanInEdge) *barrier {
	return &barrier{
		join:     edge.To,
		expected: edge.From,
		received: make(map[ExecutorID]Envelope, len(edge.From)),
	}
}

// deliver records one arriving envelope. When the arrival completes the
// expected set, deliver atomically transitions the barrier to fired and
// returns the batch assembled in declared-predecessor order; callers must
// invoke the join handler exactly once for a non-nil batch.
func (b *barrier) deliver(env Envelope) (batch []Envelope, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	member := false
	for _, id := range b.expected {
		if id == env.Source {
			member = true
			break
		}
	}
	if !member {
		return nil, &RoutingError{Source: env.Source, Join: b.join}
	}

	if _, dup := b.received[env.Source]; dup || b.fired {
		return nil, &DuplicateDeliveryError{Source: env.Source, Join: b.join}
	}
	b.received[env.Source] = env

	if len(b.received) < len(b.expected) {
		return nil, nil
	}

	b.fired = true
	batch = make([]Envelope, len(b.expected))
	for i, id := range b.expected {
		batch[i] = b.received[id]
	}
	return batch, nil
}

// missing returns the declared predecessors that have not delivered.
// Used for stall reporting once no task can supply them.
func (b *barrier) missing() []ExecutorID {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fired {
		return nil
	}
	var out []ExecutorID
	for _, id := range b.expected {
		if _, ok := b.received[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
