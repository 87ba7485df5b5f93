package workflow

// Topology is the immutable graph of executors and edges produced by
// Builder.Build. It is shared, read-only state: any number of runs may
// execute against the same Topology concurrently.
type Topology struct {
	start     ExecutorID
	executors map[ExecutorID]*executorEntry

	// At most one outgoing edge group per source executor.
	fanOuts      map[ExecutorID]fanOutEdge
	conditionals map[ExecutorID]conditionalEdge

	// joins is keyed by the join executor; joinOf maps each declared
	// predecessor to its join.
	joins  map[ExecutorID]fanInEdge
	joinOf map[ExecutorID]ExecutorID
}

// executorEntry holds one registered executor. Exactly one of handler and
// batch is set: joins carry a BatchHandler, everything else a Handler.
type executorEntry struct {
	id      ExecutorID
	handler Handler
	batch   BatchHandler
	policy  *ExecutorPolicy
}

// Start returns the entry executor.
func (t *Topology) Start() ExecutorID { return t.start }

// Executors returns the ids of all registered executors.
func (t *Topology) Executors() []ExecutorID {
	ids := make([]ExecutorID, 0, len(t.executors))
	for id := range t.executors {
		ids = append(ids, id)
	}
	return ids
}

// JoinPredecessors returns the declared predecessor set of a join, in
// declaration order, or nil if the executor is not a join.
func (t *Topology) JoinPredecessors(join ExecutorID) []ExecutorID {
	edge, ok := t.joins[join]
	if !ok {
		return nil
	}
	out := make([]ExecutorID, len(edge.From))
	copy(out, edge.From)
	return out
}
