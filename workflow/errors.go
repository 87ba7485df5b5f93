package workflow

import (
	"fmt"
	"strings"
)

// TopologyError reports a malformed graph at Build time. The run never
// starts; the error names the offending executor or edge.
type TopologyError struct {
	// Edge describes the offending edge or declaration, e.g.
	// "fan-out from dispatch" or "start".
	Edge string

	// Message is the human-readable violation.
	Message string
}

func (e *TopologyError) Error() string {
	if e.Edge != "" {
		return "topology: " + e.Edge + ": " + e.Message
	}
	return "topology: " + e.Message
}

// RoutingError reports an envelope delivered to a join it is not a declared
// predecessor of. This is a programming error and is fatal to the run.
type RoutingError struct {
	Source ExecutorID
	Join   ExecutorID
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing: %s is not a declared predecessor of join %s", e.Source, e.Join)
}

// DuplicateDeliveryError reports a predecessor that delivered twice into the
// same barrier instance. The join is not re-fired; the run fails.
type DuplicateDeliveryError struct {
	Source ExecutorID
	Join   ExecutorID
}

func (e *DuplicateDeliveryError) Error() string {
	return fmt.Sprintf("duplicate delivery: %s already delivered to join %s in this run", e.Source, e.Join)
}

// HandlerError wraps a failure inside an executor's own logic or its
// external collaborator call. Fatal to the run; the underlying cause is
// preserved for errors.Is/As.
type HandlerError struct {
	Executor ExecutorID
	Cause    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("executor %s: %v", e.Executor, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *HandlerError) Unwrap() error { return e.Cause }

// StalledRunError reports a run whose task queue drained while a barrier
// remained partially filled: no further task can supply the missing
// predecessors, so the run would otherwise hang silently.
type StalledRunError struct {
	// Join is the fan-in whose barrier never completed.
	Join ExecutorID

	// Missing lists the declared predecessors that never delivered.
	Missing []ExecutorID
}

func (e *StalledRunError) Error() string {
	names := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		names[i] = string(id)
	}
	return fmt.Sprintf("run stalled: join %s still waiting on %s", e.Join, strings.Join(names, ", "))
}
