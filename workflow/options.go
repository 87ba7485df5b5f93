package workflow

import (
	"time"

	"github.com/zavalabs/agentflow/workflow/emit"
	"github.com/zavalabs/agentflow/workflow/journal"
)

// Option is a functional option configuring a Runner.
//
// Options are chainable and optional: only specify the configuration you
// need.
//
// Example:
//
//	runner := workflow.NewRunner(
//	    workflow.WithMaxConcurrent(16),
//	    workflow.WithDefaultHandlerTimeout(30*time.Second),
//	    workflow.WithEmitter(emit.NewLogEmitter(os.Stderr, false)),
//	)
type Option func(*runnerOptions)

type runnerOptions struct {
	maxConcurrent         int
	defaultHandlerTimeout time.Duration
	emitter               emit.Emitter
	metrics               *Metrics
	journal               journal.Journal
}

func defaultOptions() runnerOptions {
	return runnerOptions{
		maxConcurrent: 8,
	}
}

// WithMaxConcurrent sets the number of workers executing deliveries
// concurrently per run.
//
// Default: 8. Must cover the widest fan-out in the topology for sibling
// branches to overlap rather than serialize. I/O-bound handlers tolerate
// higher values; a value below 1 is treated as 1.
func WithMaxConcurrent(n int) Option {
	return func(o *runnerOptions) {
		o.maxConcurrent = n
	}
}

// WithDefaultHandlerTimeout bounds every handler invocation that has no
// per-executor policy timeout.
//
// Default: 0 (no timeout). A handler that overruns observes cancellation
// via its context at the next collaborator call.
func WithDefaultHandlerTimeout(d time.Duration) Option {
	return func(o *runnerOptions) {
		o.defaultHandlerTimeout = d
	}
}

// WithEmitter attaches an observability event emitter. Runs emit start,
// dispatch, barrier, routing, yield, and completion events.
//
// Default: no emitter (events are dropped).
func WithEmitter(e emit.Emitter) Option {
	return func(o *runnerOptions) {
		o.emitter = e
	}
}

// WithMetrics attaches Prometheus metrics collection.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	runner := workflow.NewRunner(
//	    workflow.WithMetrics(workflow.NewMetrics(registry)),
//	)
func WithMetrics(m *Metrics) Option {
	return func(o *runnerOptions) {
		o.metrics = m
	}
}

// WithJournal attaches a run journal recording dispatches, barrier
// activity, and yields for audit. The journal is an append-only record;
// the engine never reads it back to resume a run.
func WithJournal(j journal.Journal) Option {
	return func(o *runnerOptions) {
		o.journal = j
	}
}
