// Package emit provides observability event emission for workflow runs.
package emit

// Event is one observability event emitted during a run.
type Event struct {
	// RunID identifies the run that emitted this event.
	RunID string

	// Seq orders events within a run (1-indexed).
	Seq int

	// ExecutorID identifies the executor concerned.
	// Empty for run-level events (start, complete, fail).
	ExecutorID string

	// Msg is a human-readable description of the event.
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "latency_ms": handler execution duration in milliseconds
	//   - "error": error details
	//   - "target": the executor selected by a conditional route
	//   - "source": the arriving predecessor at a barrier
	Meta map[string]interface{}
}

// Emitter receives observability events.
//
// Implementations should not block run execution. If the backend is
// unavailable or slow, events should be buffered, dropped with internal
// logging, or sent asynchronously. Emit must not panic.
type Emitter interface {
	Emit(event Event)
}
