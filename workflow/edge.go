package workflow

// Predicate evaluates an envelope payload to decide whether a conditional
// case should be taken.
//
// Predicates enable exclusive routing based on message content. They should
// be pure functions (deterministic, no side effects) that switch on the
// payload's kind.
//
// Common patterns:
// - Decision flag: p.Kind() == KindDecision && p.(Decision).Favorable.
// - Presence: p.Kind() == KindAgentReply && p.(AgentReply).Text != "".
type Predicate func(p Payload) bool

// Case pairs a predicate with its routing target inside a conditional edge
// group. Cases are evaluated in declaration order; the first predicate to
// return true wins.
type Case struct {
	// When is the predicate guarding this case.
	When Predicate

	// To is the executor selected when the predicate matches.
	To ExecutorID
}

// fanOutEdge broadcasts one envelope to every target. A single-target
// fan-out is a plain linear edge.
type fanOutEdge struct {
	From ExecutorID
	To   []ExecutorID
}

// conditionalEdge routes one envelope to exactly one target: the first case
// whose predicate matches, else the mandatory default.
type conditionalEdge struct {
	From    ExecutorID
	Cases   []Case
	Default ExecutorID
}

// route evaluates the cases in declared order and returns the selected
// target. Exactly one target results: never zero, never more than one.
func (c conditionalEdge) route(p Payload) ExecutorID {
	for _, cs := range c.Cases {
		if cs.When(p) {
			return cs.To
		}
	}
	return c.Default
}

// fanInEdge joins envelopes from every member of the declared predecessor
// set into a single batch delivered to the join executor.
type fanInEdge struct {
	From []ExecutorID
	To   ExecutorID
}
