// Package workflow provides a typed message-passing orchestration engine:
// a directed graph of executors connected by fan-out, fan-in, and
// conditional edges, driven concurrently by a Runner.
package workflow

// ExecutorID uniquely identifies an executor within a topology.
// It doubles as the routing key on edges and as the source tag on envelopes.
type ExecutorID string

// PayloadKind discriminates the payload variants carried by an Envelope.
// Predicates and handlers switch on the kind rather than on runtime type
// identity, so routing decisions stay explicit and testable.
type PayloadKind string

const (
	// KindPrompt is a free-text prompt, typically the initial graph input.
	KindPrompt PayloadKind = "prompt"

	// KindAgentReply is a structured response from an agent executor:
	// free text plus the id of the executor that produced it.
	KindAgentReply PayloadKind = "agent_reply"

	// KindDecision is a decision record: a boolean flag plus the findings
	// that informed it. Conditional predicates typically inspect this kind.
	KindDecision PayloadKind = "decision"

	// KindTextResult is a terminal text result.
	KindTextResult PayloadKind = "text_result"
)

// Payload is the tagged-variant content of an Envelope.
//
// Implementations are immutable value types. Handlers must not retain a
// payload after returning; ownership transfers to the runner on send and to
// the receiving executor on delivery.
type Payload interface {
	Kind() PayloadKind
}

// Prompt is a free-text prompt payload.
type Prompt struct {
	Text string
}

// Kind implements Payload.
func (Prompt) Kind() PayloadKind { return KindPrompt }

// AgentReply is the structured output of an agent executor.
type AgentReply struct {
	// From is the executor that produced the reply.
	From ExecutorID

	// Text is the concatenated assistant text of the reply.
	Text string
}

// Kind implements Payload.
func (AgentReply) Kind() PayloadKind { return KindAgentReply }

// Decision is a decision record produced by an aggregating executor.
type Decision struct {
	// Favorable is the routing flag conditional predicates inspect.
	Favorable bool

	// Findings holds the structured findings behind the decision,
	// keyed by the executor that contributed each one.
	Findings map[ExecutorID]string

	// Summary is a consolidated, human-readable view of the findings.
	Summary string
}

// Kind implements Payload.
func (Decision) Kind() PayloadKind { return KindDecision }

// TextResult is a terminal text payload.
type TextResult struct {
	Text string
}

// Kind implements Payload.
func (TextResult) Kind() PayloadKind { return KindTextResult }

// Envelope is the immutable unit of data flowing along an edge.
type Envelope struct {
	// Source is the executor that produced this envelope. For the initial
	// input delivered to the start executor, Source is empty.
	Source ExecutorID

	// Payload is the typed content.
	Payload Payload
}
