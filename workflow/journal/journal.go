// Package journal records per-run execution events for audit and
// inspection: dispatches, barrier activity, yields, and run outcomes.
//
// The journal is strictly append-only observability data. The engine never
// reads it back to resume or replay a run.
package journal

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run has no journaled entries.
var ErrNotFound = errors.New("not found")

// Entry is one journaled execution event.
type Entry struct {
	// RunID identifies the run that produced the event.
	RunID string

	// Seq orders entries within a run.
	Seq int

	// Executor is the executor concerned, empty for run-level events.
	Executor string

	// Kind classifies the event: run_started, dispatch, barrier_arrival,
	// barrier_fired, yield, run_completed, run_failed.
	Kind string

	// Detail carries kind-specific context (payload kind, arrival source,
	// yielded text).
	Detail string

	// At is the event time in UTC.
	At time.Time
}

// Journal persists run events.
type Journal interface {
	// Append records one entry.
	Append(ctx context.Context, e Entry) error

	// Entries returns all entries for a run ordered by Seq.
	// Returns ErrNotFound if the run has no entries.
	Entries(ctx context.Context, runID string) ([]Entry, error)
}
