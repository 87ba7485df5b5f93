package workflow

import "fmt"

// Builder assembles a Topology. Declarations are collected as-is; all
// validation happens in Build, so a failed Build registers no partial state.
//
// Example:
//
//	topo, err := workflow.NewBuilder().
//	    AddExecutor("dispatch", dispatcher).
//	    AddExecutor("a", expertA).
//	    AddExecutor("b", expertB).
//	    AddExecutor("join", aggregator).
//	    SetStart("dispatch").
//	    AddFanOut("dispatch", "a", "b").
//	    AddFanIn([]workflow.ExecutorID{"a", "b"}, "join").
//	    Build()
type Builder struct {
	start        ExecutorID
	startSet     bool
	executors    []declaredExecutor
	fanOuts      []fanOutEdge
	fanIns       []fanInEdge
	conditionals []conditionalEdge
}

// declaredExecutor defers the Handler/BatchHandler distinction to Build:
// whether an executor needs a batch capability depends on whether a fan-in
// names it as the join target.
type declaredExecutor struct {
	id         ExecutorID
	capability any
	policy     *ExecutorPolicy
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddExecutor registers a named executor. The capability must implement
// Handler, or BatchHandler if the executor is later declared as a fan-in
// join target. Registering the same id twice is a Build-time error.
func (b *Builder) AddExecutor(id ExecutorID, capability any) *Builder {
	b.executors = append(b.executors, declaredExecutor{id: id, capability: capability})
	return b
}

// AddExecutorWithPolicy registers an executor with a per-executor policy
// (e.g. a handler timeout overriding the runner default).
func (b *Builder) AddExecutorWithPolicy(id ExecutorID, capability any, policy ExecutorPolicy) *Builder {
	p := policy
	b.executors = append(b.executors, declaredExecutor{id: id, capability: capability, policy: &p})
	return b
}

// AddFanOut declares a broadcast edge: every envelope emitted by from is
// delivered to each target. A single target makes a plain linear edge.
func (b *Builder) AddFanOut(from ExecutorID, to ...ExecutorID) *Builder {
	b.fanOuts = append(b.fanOuts, fanOutEdge{From: from, To: to})
	return b
}

// AddFanIn declares a join: envelopes from every member of from are
// buffered until the set is complete, then delivered to to as one ordered
// batch. Batch order is the order of from, not arrival order.
func (b *Builder) AddFanIn(from []ExecutorID, to ExecutorID) *Builder {
	members := make([]ExecutorID, len(from))
	copy(members, from)
	b.fanIns = append(b.fanIns, fanInEdge{From: members, To: to})
	return b
}

// AddConditional declares an exclusive switch-case edge group: each envelope
// emitted by from is routed to the first case whose predicate matches, else
// to the mandatory default.
func (b *Builder) AddConditional(from ExecutorID, cases []Case, deflt ExecutorID) *Builder {
	cs := make([]Case, len(cases))
	copy(cs, cases)
	b.conditionals = append(b.conditionals, conditionalEdge{From: from, Cases: cs, Default: deflt})
	return b
}

// SetStart declares the entry executor that receives the initial input.
func (b *Builder) SetStart(id ExecutorID) *Builder {
	b.start = id
	b.startSet = true
	return b
}

// Build validates every declaration and returns the immutable Topology.
// Any violation returns a *TopologyError naming the offending edge and
// leaves no partial state behind.
func (b *Builder) Build() (*Topology, error) {
	t := &Topology{
		executors:    make(map[ExecutorID]*executorEntry, len(b.executors)),
		fanOuts:      make(map[ExecutorID]fanOutEdge, len(b.fanOuts)),
		conditionals: make(map[ExecutorID]conditionalEdge, len(b.conditionals)),
		joins:        make(map[ExecutorID]fanInEdge, len(b.fanIns)),
		joinOf:       make(map[ExecutorID]ExecutorID, len(b.fanIns)),
	}

	joinTargets := make(map[ExecutorID]bool, len(b.fanIns))
	for _, edge := range b.fanIns {
		joinTargets[edge.To] = true
	}

	for _, decl := range b.executors {
		if decl.id == "" {
			return nil, &TopologyError{Message: "executor id cannot be empty"}
		}
		if decl.capability == nil {
			return nil, &TopologyError{Edge: string(decl.id), Message: "executor capability cannot be nil"}
		}
		if _, exists := t.executors[decl.id]; exists {
			return nil, &TopologyError{Edge: string(decl.id), Message: "duplicate executor id"}
		}

		entry := &executorEntry{id: decl.id, policy: decl.policy}
		if joinTargets[decl.id] {
			batch, ok := decl.capability.(BatchHandler)
			if !ok {
				return nil, &TopologyError{
					Edge:    "fan-in to " + string(decl.id),
					Message: "join executor must implement BatchHandler",
				}
			}
			entry.batch = batch
		} else {
			h, ok := decl.capability.(Handler)
			if !ok {
				return nil, &TopologyError{Edge: string(decl.id), Message: "executor must implement Handler"}
			}
			entry.handler = h
		}
		t.executors[decl.id] = entry
	}

	if !b.startSet {
		return nil, &TopologyError{Edge: "start", Message: "start executor not set"}
	}
	if _, ok := t.executors[b.start]; !ok {
		return nil, &TopologyError{Edge: "start", Message: "start executor not registered: " + string(b.start)}
	}
	t.start = b.start

	// outgoing tracks the single outgoing route of each source: a fan-out,
	// a conditional, or membership in a join's predecessor set.
	outgoing := make(map[ExecutorID]string)
	claim := func(src ExecutorID, kind string) error {
		if prior, taken := outgoing[src]; taken {
			return &TopologyError{
				Edge:    kind + " from " + string(src),
				Message: "executor already has an outgoing " + prior + " edge",
			}
		}
		outgoing[src] = kind
		return nil
	}

	for _, edge := range b.fanOuts {
		tag := "fan-out from " + string(edge.From)
		if _, ok := t.executors[edge.From]; !ok {
			return nil, &TopologyError{Edge: tag, Message: "source executor not registered"}
		}
		if len(edge.To) == 0 {
			return nil, &TopologyError{Edge: tag, Message: "target set is empty"}
		}
		for _, target := range edge.To {
			if _, ok := t.executors[target]; !ok {
				return nil, &TopologyError{Edge: tag, Message: "target executor not registered: " + string(target)}
			}
		}
		if err := claim(edge.From, "fan-out"); err != nil {
			return nil, err
		}
		t.fanOuts[edge.From] = edge
	}

	for _, edge := range b.conditionals {
		tag := "conditional from " + string(edge.From)
		if _, ok := t.executors[edge.From]; !ok {
			return nil, &TopologyError{Edge: tag, Message: "source executor not registered"}
		}
		if edge.Default == "" {
			return nil, &TopologyError{Edge: tag, Message: "default target is mandatory"}
		}
		if _, ok := t.executors[edge.Default]; !ok {
			return nil, &TopologyError{Edge: tag, Message: "default target not registered: " + string(edge.Default)}
		}
		for i, cs := range edge.Cases {
			if cs.When == nil {
				return nil, &TopologyError{Edge: tag, Message: fmt.Sprintf("case %d has a nil predicate", i)}
			}
			if _, ok := t.executors[cs.To]; !ok {
				return nil, &TopologyError{Edge: tag, Message: "case target not registered: " + string(cs.To)}
			}
		}
		if err := claim(edge.From, "conditional"); err != nil {
			return nil, err
		}
		t.conditionals[edge.From] = edge
	}

	for _, edge := range b.fanIns {
		tag := "fan-in to " + string(edge.To)
		if _, ok := t.executors[edge.To]; !ok {
			return nil, &TopologyError{Edge: tag, Message: "join executor not registered"}
		}
		if len(edge.From) == 0 {
			return nil, &TopologyError{Edge: tag, Message: "predecessor set is empty"}
		}
		if _, dup := t.joins[edge.To]; dup {
			return nil, &TopologyError{Edge: tag, Message: "join already declared"}
		}
		seen := make(map[ExecutorID]bool, len(edge.From))
		for _, member := range edge.From {
			if _, ok := t.executors[member]; !ok {
				return nil, &TopologyError{Edge: tag, Message: "predecessor not registered: " + string(member)}
			}
			if seen[member] {
				return nil, &TopologyError{Edge: tag, Message: "predecessor declared twice: " + string(member)}
			}
			seen[member] = true
			if err := claim(member, "fan-in"); err != nil {
				return nil, err
			}
			t.joinOf[member] = edge.To
		}
		t.joins[edge.To] = edge
	}

	if err := t.checkAcyclic(); err != nil {
		return nil, err
	}

	return t, nil
}

// checkAcyclic rejects cycles reachable from the start executor. Cycles
// would make barrier completion undecidable, so they are a construction-time
// failure rather than a runtime hang.
func (t *Topology) checkAcyclic() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[ExecutorID]int, len(t.executors))

	var visit func(id ExecutorID) error
	visit = func(id ExecutorID) error {
		switch state[id] {
		case inProgress:
			return &TopologyError{Edge: string(id), Message: "cycle reachable from start"}
		case done:
			return nil
		}
		state[id] = inProgress
		for _, next := range t.successors(id) {
			if err := visit(next); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	return visit(t.start)
}

// successors returns every executor reachable from id in one hop, across
// all edge kinds.
func (t *Topology) successors(id ExecutorID) []ExecutorID {
	if edge, ok := t.fanOuts[id]; ok {
		return edge.To
	}
	if edge, ok := t.conditionals[id]; ok {
		out := make([]ExecutorID, 0, len(edge.Cases)+1)
		for _, cs := range edge.Cases {
			out = append(out, cs.To)
		}
		return append(out, edge.Default)
	}
	if join, ok := t.joinOf[id]; ok {
		return []ExecutorID{join}
	}
	return nil
}
