package workflow

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zavalabs/agentflow/workflow/emit"
	"github.com/zavalabs/agentflow/workflow/journal"
)

// RunState is the lifecycle state of one run.
type RunState int32

const (
	// StatePending means the run has been created but not started.
	StatePending RunState = iota

	// StateRunning means deliveries are being scheduled and executed.
	StateRunning

	// StateCompleted means the run quiesced with no error: the task queue
	// drained and no barrier remained partially filled.
	StateCompleted

	// StateFailed means the run was terminated by an error or
	// cancellation. Yields produced before the failure remain valid.
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Runner drives topologies from an initial input to quiescence. A Runner is
// stateless between runs and safe for concurrent use; per-run state lives in
// the Run it returns.
type Runner struct {
	opts runnerOptions
}

// NewRunner creates a Runner configured by functional options.
//
// Example:
//
//	runner := workflow.NewRunner(
//	    workflow.WithMaxConcurrent(8),
//	    workflow.WithEmitter(emit.NewLogEmitter(os.Stderr, false)),
//	)
func NewRunner(opts ...Option) *Runner {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runner{opts: cfg}
}

// Run executes one pass of the topology and collects every terminal yield.
// On error the yields produced before the failure are returned alongside it;
// partial results are not discarded.
func (r *Runner) Run(ctx context.Context, topo *Topology, input Payload) ([]Yield, error) {
	run := r.Stream(ctx, topo, input)
	for range run.Yields() {
		// Drain; yields are also collected on the run.
	}
	return run.Outputs(), run.Err()
}

// Stream starts one pass of the topology and returns a handle exposing the
// lazy, finite sequence of terminal yields. The sequence is non-restartable:
// Yields is closed once the run quiesces, after which Err reports the
// outcome.
func (r *Runner) Stream(ctx context.Context, topo *Topology, input Payload) *Run {
	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{
		id:       uuid.NewString(),
		topo:     topo,
		opts:     r.opts,
		ctx:      runCtx,
		cancel:   cancel,
		queue:    newFrontier(),
		barriers: make(map[ExecutorID]*barrier),
		locks:    make(map[ExecutorID]*sync.Mutex),
		yields:   make(chan Yield),
		done:     make(chan struct{}),
	}
	run.start(input)
	return run
}

// Run is the context of one invocation of a whole topology: its barriers,
// its task queue, the terminal outputs produced so far, and its completion
// state. A Run is created by Runner.Stream and is useless once quiesced.
type Run struct {
	id   string
	topo *Topology
	opts runnerOptions

	ctx    context.Context
	cancel context.CancelFunc

	queue   *frontier
	pending atomic.Int64
	seq     atomic.Int64
	state   atomic.Int32

	mu        sync.Mutex
	barriers  map[ExecutorID]*barrier
	locks     map[ExecutorID]*sync.Mutex
	collected []Yield
	err       error

	yields chan Yield
	done   chan struct{}
	wg     sync.WaitGroup
}

// ID returns the generated run identifier.
func (run *Run) ID() string { return run.id }

// State returns the run's current lifecycle state.
func (run *Run) State() RunState { return RunState(run.state.Load()) }

// Yields returns the stream of terminal outputs. The channel is closed when
// the run quiesces; consume it fully, then check Err.
func (run *Run) Yields() <-chan Yield { return run.yields }

// Outputs returns a copy of the yields collected so far. After Yields
// closes this is the complete set, including any produced before a failure.
func (run *Run) Outputs() []Yield {
	run.mu.Lock()
	defer run.mu.Unlock()
	out := make([]Yield, len(run.collected))
	copy(out, run.collected)
	return out
}

// Err blocks until the run quiesces and returns its terminal error, if any.
func (run *Run) Err() error {
	<-run.done
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.err
}

// Cancel marks the run cancelled. In-flight handlers observe cancellation
// through their context before the next collaborator call; no further
// deliveries are scheduled.
func (run *Run) Cancel() {
	run.cancel()
}

func (run *Run) start(input Payload) {
	run.state.Store(int32(StateRunning))
	run.emit("", "run started", nil)
	run.journal("", "run_started", "")

	workers := run.opts.maxConcurrent
	if workers < 1 {
		workers = 1
	}
	run.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go run.worker()
	}

	// Completion watcher: closes the yield stream once all workers exit.
	go func() {
		run.wg.Wait()
		run.finish()
	}()

	run.schedule(delivery{Target: run.topo.start, Env: Envelope{Payload: input}})
}

// schedule accounts for one pending delivery and enqueues it. The pending
// counter reaching zero is the quiescence condition. The counter is bumped
// before the enqueue so a worker draining the new delivery cannot observe
// zero first, and rolled back if the closed frontier drops the delivery.
func (run *Run) schedule(d delivery) {
	run.pending.Add(1)
	if run.opts.metrics != nil {
		run.opts.metrics.queueDepth.Inc()
	}
	if !run.queue.Enqueue(d) {
		run.pending.Add(-1)
		if run.opts.metrics != nil {
			run.opts.metrics.queueDepth.Dec()
		}
	}
}

func (run *Run) worker() {
	defer run.wg.Done()
	for {
		d, ok := run.queue.Dequeue()
		if !ok {
			return
		}
		if run.opts.metrics != nil {
			run.opts.metrics.queueDepth.Dec()
		}

		// A failed or cancelled run drops the remaining deliveries
		// instead of executing further nodes.
		if run.ctx.Err() == nil {
			run.execute(d)
		}

		if run.pending.Add(-1) == 0 {
			run.queue.Close()
		}
	}
}

// execute invokes one executor with a single envelope or a completed batch.
// No two invocations of the same executor for the same run overlap.
func (run *Run) execute(d delivery) {
	entry := run.topo.executors[d.Target]

	lock := run.executorLock(d.Target)
	lock.Lock()
	defer lock.Unlock()

	if run.opts.metrics != nil {
		run.opts.metrics.inflightHandlers.Inc()
		defer run.opts.metrics.inflightHandlers.Dec()
	}

	started := time.Now()
	var result Result
	if d.Batch != nil {
		result = invokeWithTimeout(run.ctx, entry, run.opts.defaultHandlerTimeout, func(ctx context.Context) Result {
			return entry.batch.HandleBatch(ctx, d.Batch)
		})
	} else {
		result = invokeWithTimeout(run.ctx, entry, run.opts.defaultHandlerTimeout, func(ctx context.Context) Result {
			return entry.handler.Handle(ctx, d.Env)
		})
	}

	status := "success"
	if result.Err != nil {
		status = "error"
	}
	if run.opts.metrics != nil {
		run.opts.metrics.handlerLatency.WithLabelValues(string(d.Target), status).Observe(float64(time.Since(started).Milliseconds()))
	}

	if result.Err != nil {
		run.fail(&HandlerError{Executor: d.Target, Cause: result.Err})
		return
	}

	run.emit(d.Target, "executor completed", map[string]interface{}{
		"latency_ms": time.Since(started).Milliseconds(),
		"outbound":   len(result.Out),
	})

	if result.Yield != nil {
		run.recordYield(*result.Yield)
	}

	for _, env := range result.Out {
		if run.ctx.Err() != nil {
			return
		}
		run.route(d.Target, env)
	}
}

// route dispatches one outbound envelope along the producing executor's
// outgoing edge group.
func (run *Run) route(from ExecutorID, env Envelope) {
	if edge, ok := run.topo.fanOuts[from]; ok {
		for i, target := range edge.To {
			run.journal(string(target), "dispatch", string(env.Payload.Kind()))
			run.schedule(delivery{Target: target, Env: env, OrderKey: computeOrderKey(from, i)})
		}
		return
	}

	if edge, ok := run.topo.conditionals[from]; ok {
		target := edge.route(env.Payload)
		run.emit(from, "conditional routed", map[string]interface{}{"target": string(target)})
		run.journal(string(target), "dispatch", string(env.Payload.Kind()))
		run.schedule(delivery{Target: target, Env: env, OrderKey: computeOrderKey(from, 0)})
		return
	}

	if join, ok := run.topo.joinOf[from]; ok {
		run.deliverToJoin(join, env)
		return
	}

	// No outgoing edge group: the envelope is terminal and is discarded.
	run.emit(from, "envelope discarded", map[string]interface{}{"kind": string(env.Payload.Kind())})
}

// deliverToJoin records one arrival at the join's barrier and schedules the
// join exactly once, when the declared predecessor set completes.
func (run *Run) deliverToJoin(join ExecutorID, env Envelope) {
	run.mu.Lock()
	b, ok := run.barriers[join]
	if !ok {
		b = newBarrier(run.topo.joins[join])
		run.barriers[join] = b
	}
	run.mu.Unlock()

	batch, err := b.deliver(env)
	if err != nil {
		run.fail(err)
		return
	}

	run.emit(join, "barrier arrival", map[string]interface{}{
		"source": string(env.Source),
	})
	run.journal(string(join), "barrier_arrival", string(env.Source))

	if batch == nil {
		return
	}

	// The fired barrier stays in the map for the rest of the run so a late
	// delivery from a misbehaving predecessor hits the duplicate guard
	// instead of lazily opening a fresh barrier and re-firing the join.
	run.emit(join, "barrier fired", map[string]interface{}{"batch": len(batch)})
	run.journal(string(join), "barrier_fired", "")
	run.schedule(delivery{Target: join, Batch: batch, OrderKey: computeOrderKey(join, 0)})
}

func (run *Run) recordYield(y Yield) {
	run.mu.Lock()
	run.collected = append(run.collected, y)
	run.mu.Unlock()

	run.emit(y.Executor, "yield", map[string]interface{}{"text_len": len(y.Text)})
	run.journal(string(y.Executor), "yield", y.Text)
	if run.opts.metrics != nil {
		run.opts.metrics.yieldsTotal.Inc()
	}

	select {
	case run.yields <- y:
	case <-run.ctx.Done():
	}
}

// fail records the first terminal error and cancels the run. Later errors
// are dropped; the run is already failing.
func (run *Run) fail(err error) {
	run.mu.Lock()
	if run.err == nil {
		run.err = err
	}
	run.mu.Unlock()
	run.cancel()
	run.queue.Close()
}

// finish resolves the run's terminal state once all workers have exited.
func (run *Run) finish() {
	run.mu.Lock()
	err := run.err
	run.mu.Unlock()

	if err == nil {
		if ctxErr := run.ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
	}

	if err == nil {
		// Quiesced cleanly, but a partially filled barrier with nothing
		// left to supply it is a deadlock, not a completion.
		run.mu.Lock()
		for join, b := range run.barriers {
			if missing := b.missing(); missing != nil {
				err = &StalledRunError{Join: join, Missing: missing}
				break
			}
		}
		run.mu.Unlock()
	}

	run.mu.Lock()
	if run.err == nil {
		run.err = err
	}
	finalErr := run.err
	run.mu.Unlock()

	outcome := "completed"
	if finalErr != nil {
		run.state.Store(int32(StateFailed))
		outcome = "failed"
		run.emit("", "run failed", map[string]interface{}{"error": finalErr.Error()})
	} else {
		run.state.Store(int32(StateCompleted))
		run.emit("", "run completed", nil)
	}
	run.journal("", "run_"+outcome, "")
	if run.opts.metrics != nil {
		run.opts.metrics.runsTotal.WithLabelValues(outcome).Inc()
	}

	run.cancel()
	close(run.yields)
	close(run.done)
}

func (run *Run) executorLock(id ExecutorID) *sync.Mutex {
	run.mu.Lock()
	defer run.mu.Unlock()
	lock, ok := run.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		run.locks[id] = lock
	}
	return lock
}

func (run *Run) emit(executor ExecutorID, msg string, meta map[string]interface{}) {
	if run.opts.emitter == nil {
		return
	}
	run.opts.emitter.Emit(emit.Event{
		RunID:      run.id,
		Seq:        int(run.seq.Add(1)),
		ExecutorID: string(executor),
		Msg:        msg,
		Meta:       meta,
	})
}

func (run *Run) journal(executor, kind, detail string) {
	if run.opts.journal == nil {
		return
	}
	// Journal writes are best effort; a broken journal must not fail the
	// run it is auditing. The append context is detached from run
	// cancellation: a failed run cancels its context before the terminal
	// run_failed entry is written, and that record must still land.
	_ = run.opts.journal.Append(context.WithoutCancel(run.ctx), journal.Entry{
		RunID:    run.id,
		Seq:      int(run.seq.Add(1)),
		Executor: executor,
		Kind:     kind,
		Detail:   detail,
		At:       time.Now().UTC(),
	})
}
