package workflow

import "context"

// Handler is the capability of an ordinary executor: consume one envelope,
// produce zero or more outbound envelopes, optionally yield a terminal
// result.
//
// Handlers are invoked by the Runner with the run's context. A handler that
// performs external collaborator calls should pass ctx through so the call
// is cancelled when the run fails or is cancelled.
//
// A handler may:
//   - emit no outbound envelopes (terminal, no further routing)
//   - emit one outbound envelope (linear continuation)
//   - yield a terminal result AND emit an outbound envelope (a node can both
//     produce a user-visible result and continue the graph)
//
// Handlers must not retain the envelope after returning.
type Handler interface {
	Handle(ctx context.Context, env Envelope) Result
}

// BatchHandler is the capability of a fan-in join executor: consume the
// complete batch of envelopes from the join's declared predecessor set.
//
// The batch is ordered by the declaration order of the predecessor set, not
// by arrival order, so aggregation is deterministic regardless of which
// sibling finishes first.
type BatchHandler interface {
	HandleBatch(ctx context.Context, batch []Envelope) Result
}

// Result is the output of an executor invocation.
type Result struct {
	// Out contains the outbound envelopes to route. Usually zero or one;
	// each is routed independently along the executor's outgoing edge group.
	Out []Envelope

	// Yield, if non-nil, is a terminal output surfaced to the caller of the
	// run. Yielding does not stop routing of Out.
	Yield *Yield

	// Err is a handler-level error. A non-nil Err fails the whole run; the
	// runner wraps it in a HandlerError naming the executor.
	Err error
}

// Yield is a final, user-visible output emitted by an executor,
// independent of further graph continuation.
type Yield struct {
	// Executor is the id of the executor that yielded.
	Executor ExecutorID

	// Text is the yielded output.
	Text string
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, env Envelope) Result

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, env Envelope) Result {
	return f(ctx, env)
}

// BatchHandlerFunc adapts a plain function to the BatchHandler interface.
type BatchHandlerFunc func(ctx context.Context, batch []Envelope) Result

// HandleBatch implements BatchHandler.
func (f BatchHandlerFunc) HandleBatch(ctx context.Context, batch []Envelope) Result {
	return f(ctx, batch)
}

// Emit is a convenience constructor for a Result carrying a single outbound
// envelope tagged with the given source.
func Emit(source ExecutorID, payload Payload) Result {
	return Result{Out: []Envelope{{Source: source, Payload: payload}}}
}

// Fail is a convenience constructor for a failed Result.
func Fail(err error) Result {
	return Result{Err: err}
}
