package research

import (
	"github.com/zavalabs/agentflow/collab"
	"github.com/zavalabs/agentflow/workflow"
	"github.com/zavalabs/agentflow/workflow/model"
)

// Deps holds the collaborators the topology is assembled from.
type Deps struct {
	// Chat is the LLM backing every agent executor.
	Chat model.ChatModel

	// Integrations are the external research services the agents' tools
	// draw on.
	Integrations collab.Integrations
}

// IsCompetitive is the routing predicate on the aggregator's decision:
// true when the proposal was judged competitive.
func IsCompetitive(p workflow.Payload) bool {
	decision, ok := p.(workflow.Decision)
	return ok && decision.Favorable
}

// BuildTopology assembles the market research graph:
//
//	dispatch ──fan-out──> compliance ─┐
//	                      commercial  ├─fan-in──> aggregate ──switch──> negotiator
//	                      procurement ┘                          └────> reviewer
//
// The aggregator's decision routes to the negotiator when competitive,
// to the reviewer otherwise.
func BuildTopology(deps Deps) (*workflow.Topology, error) {
	supplierResearch := agentTool{
		Tool: collab.NewSupplierResearchTool(deps.Integrations),
		Spec: model.ToolSpec{
			Name:        "supplier_research",
			Description: "Research a supplier or product category across document search, market analytics, and technology signals.",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Supplier name or product category to research",
					},
				},
				"required": []string{"query"},
			},
		},
	}

	financialAnalysis := agentTool{
		Tool: collab.NewFinancialAnalysisTool(deps.Integrations),
		Spec: model.ToolSpec{
			Name:        "financial_analysis",
			Description: "Analyze a company's financial metrics, market intelligence, and technology investment.",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"company": map[string]interface{}{
						"type":        "string",
						"description": "Company name to analyze",
					},
				},
				"required": []string{"company"},
			},
		},
	}

	complianceCheck := agentTool{
		Tool: collab.NewComplianceCheckTool(deps.Integrations),
		Spec: model.ToolSpec{
			Name:        "compliance_check",
			Description: "Check a supplier's compliance documents, metrics, and security posture.",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"supplier": map[string]interface{}{
						"type":        "string",
						"description": "Supplier name to check",
					},
				},
				"required": []string{"supplier"},
			},
		},
	}

	experts := []workflow.ExecutorID{ExecCompliance, ExecCommercial, ExecProcurement}
	labels := map[workflow.ExecutorID]string{
		ExecCompliance:  "COMPLIANCE FINDINGS",
		ExecCommercial:  "COMMERCIAL ANALYSIS",
		ExecProcurement: "PROCUREMENT ASSESSMENT",
	}

	return workflow.NewBuilder().
		AddExecutor(ExecDispatch, Dispatcher{}).
		AddExecutor(ExecCompliance, NewExpertAgent(
			ExecCompliance,
			"You're a compliance expert for Zava stores. Analyze supplier proposals for legal, regulatory, and ESG compliance using the research tools.",
			deps.Chat,
			complianceCheck,
		)).
		AddExecutor(ExecCommercial, NewExpertAgent(
			ExecCommercial,
			"You're a commercial analyst. Evaluate market competitiveness, pricing, and business value using financial analysis and market intelligence.",
			deps.Chat,
			financialAnalysis,
		)).
		AddExecutor(ExecProcurement, NewExpertAgent(
			ExecProcurement,
			"You're a procurement specialist. Assess supplier proposals for cost-effectiveness, strategic fit, and operational value using the research tools.",
			deps.Chat,
			supplierResearch,
		)).
		AddExecutor(ExecAggregate, NewAggregator(experts, labels, deps.Chat)).
		AddExecutor(ExecNegotiate, NewNegotiator(deps.Chat, supplierResearch)).
		AddExecutor(ExecDismiss, NewReviewer(deps.Chat)).
		SetStart(ExecDispatch).
		AddFanOut(ExecDispatch, ExecCompliance, ExecCommercial, ExecProcurement).
		AddFanIn(experts, ExecAggregate).
		AddConditional(ExecAggregate, []workflow.Case{
			{When: IsCompetitive, To: ExecNegotiate},
		}, ExecDismiss).
		Build()
}
