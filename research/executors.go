package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/zavalabs/agentflow/workflow"
	"github.com/zavalabs/agentflow/workflow/model"
	"github.com/zavalabs/agentflow/workflow/tool"
)

// Executor ids of the market research topology.
const (
	ExecDispatch    workflow.ExecutorID = "dispatch_to_experts"
	ExecCompliance  workflow.ExecutorID = "compliance_expert"
	ExecCommercial  workflow.ExecutorID = "commercial_expert"
	ExecProcurement workflow.ExecutorID = "procurement_expert"
	ExecAggregate   workflow.ExecutorID = "aggregate_insights"
	ExecNegotiate   workflow.ExecutorID = "negotiator"
	ExecDismiss     workflow.ExecutorID = "reviewer"
)

// Dispatcher is the start executor. It accepts the proposal prompt and
// re-emits it; the fan-out edge broadcasts the copy to every expert.
type Dispatcher struct{}

// Handle implements workflow.Handler.
func (Dispatcher) Handle(ctx context.Context, env workflow.Envelope) workflow.Result {
	prompt, ok := env.Payload.(workflow.Prompt)
	if !ok {
		return workflow.Fail(fmt.Errorf("dispatch expects a prompt, got %s", env.Payload.Kind()))
	}
	return workflow.Emit(ExecDispatch, prompt)
}

// agentTool pairs an executable tool with the ToolSpec advertised to the LLM.
type agentTool struct {
	Tool tool.Tool
	Spec model.ToolSpec
}

// ExpertAgent is an LLM-backed executor analyzing the proposal from one
// perspective. The agent may call its research tool; tool results are
// fed back for a final answer in a single follow-up round.
type ExpertAgent struct {
	id           workflow.ExecutorID
	instructions string
	chat         model.ChatModel
	tools        []agentTool
}

// NewExpertAgent creates an expert executor.
func NewExpertAgent(id workflow.ExecutorID, instructions string, chat model.ChatModel, tools ...agentTool) *ExpertAgent {
	return &ExpertAgent{
		id:           id,
		instructions: instructions,
		chat:         chat,
		tools:        tools,
	}
}

// Handle implements workflow.Handler.
func (e *ExpertAgent) Handle(ctx context.Context, env workflow.Envelope) workflow.Result {
	prompt, ok := env.Payload.(workflow.Prompt)
	if !ok {
		return workflow.Fail(fmt.Errorf("%s expects a prompt, got %s", e.id, env.Payload.Kind()))
	}

	text, err := runAgent(ctx, e.chat, e.instructions, prompt.Text, e.tools)
	if err != nil {
		return workflow.Fail(err)
	}

	return workflow.Emit(e.id, workflow.AgentReply{From: e.id, Text: text})
}

// runAgent performs one chat turn with optional tools. When the LLM
// requests tool calls, each is executed and the results are sent back
// in one follow-up turn; the follow-up answer is final.
func runAgent(ctx context.Context, chat model.ChatModel, instructions, userPrompt string, tools []agentTool) (string, error) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: instructions},
		{Role: model.RoleUser, Content: userPrompt},
	}

	var specs []model.ToolSpec
	byName := make(map[string]tool.Tool, len(tools))
	for _, at := range tools {
		specs = append(specs, at.Spec)
		byName[at.Spec.Name] = at.Tool
	}

	out, err := chat.Chat(ctx, messages, specs)
	if err != nil {
		return "", err
	}
	if len(out.ToolCalls) == 0 {
		return out.Text, nil
	}

	var results strings.Builder
	results.WriteString("Tool results:\n")
	for _, call := range out.ToolCalls {
		t, ok := byName[call.Name]
		if !ok {
			fmt.Fprintf(&results, "\n[%s] unknown tool\n", call.Name)
			continue
		}
		toolOut, err := t.Call(ctx, call.Input)
		if err != nil {
			fmt.Fprintf(&results, "\n[%s] failed: %v\n", call.Name, err)
			continue
		}
		if report, ok := toolOut["report"].(string); ok {
			fmt.Fprintf(&results, "\n[%s]\n%s\n", call.Name, report)
		} else {
			fmt.Fprintf(&results, "\n[%s]\n%v\n", call.Name, toolOut)
		}
	}

	if out.Text != "" {
		messages = append(messages, model.Message{Role: model.RoleAssistant, Content: out.Text})
	}
	messages = append(messages, model.Message{Role: model.RoleUser, Content: results.String() + "\nUse these results to give your final assessment."})

	final, err := chat.Chat(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return final.Text, nil
}

const evaluatorInstructions = "You are an expert evaluator. Analyze the insights and determine if the proposal is competitive. Look for strong compliance, good financial metrics, and strategic value. Start your answer with a line 'VERDICT: COMPETITIVE' or 'VERDICT: NOT COMPETITIVE', then give clear reasoning."

// Aggregator is the fan-in join executor. It receives the complete set
// of expert replies as one ordered batch, consolidates them, asks the
// evaluator model for a competitiveness verdict, and emits the decision.
type Aggregator struct {
	experts   []workflow.ExecutorID
	labels    map[workflow.ExecutorID]string
	evaluator model.ChatModel
}

// NewAggregator creates the aggregating executor. experts gives the
// expected contributors in presentation order; labels maps each to its
// section heading in the consolidated summary.
func NewAggregator(experts []workflow.ExecutorID, labels map[workflow.ExecutorID]string, evaluator model.ChatModel) *Aggregator {
	ids := make([]workflow.ExecutorID, len(experts))
	copy(ids, experts)
	return &Aggregator{
		experts:   ids,
		labels:    labels,
		evaluator: evaluator,
	}
}

// HandleBatch implements workflow.BatchHandler.
func (a *Aggregator) HandleBatch(ctx context.Context, batch []workflow.Envelope) workflow.Result {
	findings := make(map[workflow.ExecutorID]string, len(batch))
	for _, env := range batch {
		reply, ok := env.Payload.(workflow.AgentReply)
		if !ok {
			return workflow.Fail(fmt.Errorf("aggregate expects agent replies, got %s from %s", env.Payload.Kind(), env.Source))
		}
		findings[reply.From] = reply.Text
	}

	summary := a.consolidate(findings)

	prompt := fmt.Sprintf(`Based on these expert insights, determine if this proposal is COMPETITIVE:

%s

Decision factors:
- Compliance score and risk level
- Commercial viability and market position
- Procurement value and strategic fit`, summary)

	out, err := a.evaluator.Chat(ctx, []model.Message{
		{Role: model.RoleSystem, Content: evaluatorInstructions},
		{Role: model.RoleUser, Content: prompt},
	}, nil)
	if err != nil {
		return workflow.Fail(err)
	}

	return workflow.Emit(ExecAggregate, workflow.Decision{
		Favorable: parseVerdict(out.Text),
		Findings:  findings,
		Summary:   summary,
	})
}

func (a *Aggregator) consolidate(findings map[workflow.ExecutorID]string) string {
	var sb strings.Builder
	for _, id := range a.experts {
		label := a.labels[id]
		if label == "" {
			label = strings.ToUpper(string(id))
		}
		fmt.Fprintf(&sb, "%s:\n%s\n\n", label, findings[id])
	}
	return strings.TrimRight(sb.String(), "\n")
}

// parseVerdict extracts the competitiveness verdict from evaluator
// output. A "VERDICT:" line wins; otherwise a whole-text heuristic
// applies: competitive unless the text says "not competitive".
func parseVerdict(text string) bool {
	lower := strings.ToLower(text)

	for _, line := range strings.Split(lower, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "verdict:") {
			continue
		}
		verdict := strings.TrimSpace(strings.TrimPrefix(line, "verdict:"))
		return strings.Contains(verdict, "competitive") && !strings.Contains(verdict, "not competitive")
	}

	return strings.Contains(lower, "competitive") && !strings.Contains(lower, "not competitive")
}

const negotiatorInstructions = "You're a skilled negotiator. Create a winning negotiation strategy based on the competitive analysis. Use the research tools to identify leverage points and optimal terms."

// Negotiator handles competitive proposals: it builds a negotiation
// strategy and yields it as a terminal output.
type Negotiator struct {
	chat  model.ChatModel
	tools []agentTool
}

// NewNegotiator creates the negotiation executor.
func NewNegotiator(chat model.ChatModel, tools ...agentTool) *Negotiator {
	return &Negotiator{chat: chat, tools: tools}
}

// Handle implements workflow.Handler.
func (n *Negotiator) Handle(ctx context.Context, env workflow.Envelope) workflow.Result {
	decision, ok := env.Payload.(workflow.Decision)
	if !ok {
		return workflow.Fail(fmt.Errorf("negotiator expects a decision, got %s", env.Payload.Kind()))
	}

	prompt := fmt.Sprintf("Create negotiation strategy for this competitive proposal:\n%s", decision.Summary)
	text, err := runAgent(ctx, n.chat, negotiatorInstructions, prompt, n.tools)
	if err != nil {
		return workflow.Fail(err)
	}

	return workflow.Result{
		Yield: &workflow.Yield{
			Executor: ExecNegotiate,
			Text:     "NEGOTIATION STRATEGY:\n" + text,
		},
	}
}

const reviewerInstructions = "You review non-competitive proposals. Provide clear reasons for rejection and suggest improvements. Be constructive but decisive."

// Reviewer handles non-competitive proposals: it writes a rejection
// review and yields it as a terminal output.
type Reviewer struct {
	chat model.ChatModel
}

// NewReviewer creates the review executor.
func NewReviewer(chat model.ChatModel) *Reviewer {
	return &Reviewer{chat: chat}
}

// Handle implements workflow.Handler.
func (r *Reviewer) Handle(ctx context.Context, env workflow.Envelope) workflow.Result {
	decision, ok := env.Payload.(workflow.Decision)
	if !ok {
		return workflow.Fail(fmt.Errorf("reviewer expects a decision, got %s", env.Payload.Kind()))
	}

	prompt := fmt.Sprintf("Review this non-competitive proposal:\n%s", decision.Summary)
	out, err := r.chat.Chat(ctx, []model.Message{
		{Role: model.RoleSystem, Content: reviewerInstructions},
		{Role: model.RoleUser, Content: prompt},
	}, nil)
	if err != nil {
		return workflow.Fail(err)
	}

	return workflow.Result{
		Yield: &workflow.Yield{
			Executor: ExecDismiss,
			Text:     "PROPOSAL REVIEW:\n" + out.Text,
		},
	}
}
