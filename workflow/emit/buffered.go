package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory,
// organized by runID. It is intended for tests, debugging, and
// post-run analysis.
//
// All events are kept until cleared, so long-running deployments with
// high event volume should prefer a streaming backend.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // runID -> events
}

// HistoryFilter selects a subset of a run's events. All set fields must
// match (AND logic); zero-valued fields are ignored.
type HistoryFilter struct {
	ExecutorID string // filter by executor (empty = no filter)
	Msg        string // filter by message (empty = no filter)
	MinSeq     *int   // minimum sequence number (nil = no filter)
	MaxSeq     *int   // maximum sequence number (nil = no filter)
}

// NewBufferedEmitter creates a BufferedEmitter. Safe for concurrent use.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit stores the event in the buffer.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// GetHistory returns all events for a run in emission order. Returns an
// empty slice when the run has no events. The returned slice is a copy.
func (b *BufferedEmitter) GetHistory(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[runID]
	if events == nil {
		return []Event{}
	}

	result := make([]Event, len(events))
	copy(result, events)
	return result
}

// GetHistoryWithFilter returns the run's events matching the filter, in
// emission order. The returned slice is a copy.
func (b *BufferedEmitter) GetHistoryWithFilter(runID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[runID]
	if events == nil {
		return []Event{}
	}

	var result []Event
	for _, event := range events {
		if !matchesFilter(event, filter) {
			continue
		}
		result = append(result, event)
	}

	if result == nil {
		return []Event{}
	}
	return result
}

func matchesFilter(event Event, filter HistoryFilter) bool {
	if filter.ExecutorID != "" && event.ExecutorID != filter.ExecutorID {
		return false
	}
	if filter.Msg != "" && event.Msg != filter.Msg {
		return false
	}
	if filter.MinSeq != nil && event.Seq < *filter.MinSeq {
		return false
	}
	if filter.MaxSeq != nil && event.Seq > *filter.MaxSeq {
		return false
	}
	return true
}

// Clear removes events for the given runID, or all events when runID is
// empty.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if runID == "" {
		b.events = make(map[string][]Event)
	} else {
		delete(b.events, runID)
	}
}
