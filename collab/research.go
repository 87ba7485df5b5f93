package collab

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zavalabs/agentflow/workflow/tool"
)

// Integrations bundles the external services the research tools draw
// on. Any field may be a live client or a mock.
type Integrations struct {
	Search    DocumentSearch
	Analytics Analytics
	Repos     RepoHost
}

// SupplierResearchTool implements tool.Tool by combining document
// search, market analytics, and repository analysis into one supplier
// research report. The three services are queried concurrently;
// individual failures become lines in the report rather than failing
// the whole tool, so one unavailable integration does not sink an
// expert's research.
//
// Input: {"query": "<supplier or category>"}
// Output: {"report": "<formatted findings>"}
type SupplierResearchTool struct {
	integrations Integrations
}

// NewSupplierResearchTool creates a SupplierResearchTool.
func NewSupplierResearchTool(integrations Integrations) *SupplierResearchTool {
	return &SupplierResearchTool{integrations: integrations}
}

// Name implements tool.Tool.
func (t *SupplierResearchTool) Name() string {
	return "supplier_research"
}

// Call implements tool.Tool.
func (t *SupplierResearchTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	query, ok := input["query"].(string)
	if !ok || query == "" {
		return nil, fmt.Errorf("query parameter required (string)")
	}

	var (
		search    SearchResult
		searchErr error
		market    DatasetResult
		marketErr error
		repos     RepoSearchResult
		reposErr  error
		stack     TechStackReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		search, searchErr = t.integrations.Search.Search(gctx, "supplier "+query, 5)
		return nil
	})
	g.Go(func() error {
		market, marketErr = t.integrations.Analytics.MarketInsights(gctx, query)
		return nil
	})
	g.Go(func() error {
		repos, reposErr = t.integrations.Repos.SearchRepositories(gctx, query+" supplier")
		if reposErr == nil {
			stack, _ = t.integrations.Repos.TechStack(gctx, strings.ReplaceAll(query, " ", "-"))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var report strings.Builder
	report.WriteString("Document search:\n")
	switch {
	case searchErr != nil:
		fmt.Fprintf(&report, "- unavailable: %v\n", searchErr)
	case len(search.Documents) > 0:
		fmt.Fprintf(&report, "- found %d documents in %s\n", search.Total, search.Elapsed.Round(0))
	default:
		report.WriteString("- no documents found\n")
	}

	report.WriteString("\nMarket analytics:\n")
	if marketErr != nil {
		fmt.Fprintf(&report, "- unavailable: %v\n", marketErr)
	} else {
		fmt.Fprintf(&report, "- market data for %q returned %d rows\n", query, len(market.Rows))
	}

	report.WriteString("\nTechnology analysis:\n")
	switch {
	case reposErr != nil:
		fmt.Fprintf(&report, "- unavailable: %v\n", reposErr)
	case len(repos.Repositories) > 0:
		fmt.Fprintf(&report, "- found %d repositories\n", repos.Total)
		if len(stack.Languages) > 0 {
			langs := stack.Languages
			if len(langs) > 3 {
				langs = langs[:3]
			}
			fmt.Fprintf(&report, "- primary languages: %s\n", strings.Join(langs, ", "))
		}
	default:
		report.WriteString("- no repository data available\n")
	}

	return map[string]interface{}{"report": report.String()}, nil
}

// FinancialAnalysisTool implements tool.Tool by gathering financial
// datasets, market intelligence, document search, and technology
// investment signals for a company.
//
// Input: {"company": "<company name>"}
// Output: {"report": "<formatted findings>"}
type FinancialAnalysisTool struct {
	integrations Integrations
}

// NewFinancialAnalysisTool creates a FinancialAnalysisTool.
func NewFinancialAnalysisTool(integrations Integrations) *FinancialAnalysisTool {
	return &FinancialAnalysisTool{integrations: integrations}
}

// Name implements tool.Tool.
func (t *FinancialAnalysisTool) Name() string {
	return "financial_analysis"
}

// Call implements tool.Tool.
func (t *FinancialAnalysisTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	company, ok := input["company"].(string)
	if !ok || company == "" {
		return nil, fmt.Errorf("company parameter required (string)")
	}

	var (
		metrics    DatasetResult
		metricsErr error
		insights   DatasetResult
		insightErr error
		docs       SearchResult
		docsErr    error
		stack      TechStackReport
		stackErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		metrics, metricsErr = t.integrations.Analytics.QueryDataset(gctx, "financials", fmt.Sprintf("company='%s'", company))
		return nil
	})
	g.Go(func() error {
		insights, insightErr = t.integrations.Analytics.MarketInsights(gctx, company+" financial")
		return nil
	})
	g.Go(func() error {
		docs, docsErr = t.integrations.Search.Search(gctx, company+" financial performance", 5)
		return nil
	})
	g.Go(func() error {
		org := strings.ReplaceAll(strings.ToLower(company), " ", "-")
		stack, stackErr = t.integrations.Repos.TechStack(gctx, org)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var report strings.Builder
	fmt.Fprintf(&report, "Financial analysis for %s:\n\n", company)

	report.WriteString("Financial data:\n")
	if metricsErr != nil {
		fmt.Fprintf(&report, "- unavailable: %v\n", metricsErr)
	} else {
		fmt.Fprintf(&report, "- %s query returned %d rows in %s\n", metrics.Dataset, len(metrics.Rows), metrics.Elapsed.Round(0))
	}

	report.WriteString("\nMarket intelligence:\n")
	if insightErr != nil {
		fmt.Fprintf(&report, "- unavailable: %v\n", insightErr)
	} else {
		fmt.Fprintf(&report, "- market analysis returned %d rows\n", len(insights.Rows))
	}

	report.WriteString("\nFinancial documents:\n")
	switch {
	case docsErr != nil:
		fmt.Fprintf(&report, "- unavailable: %v\n", docsErr)
	case len(docs.Documents) > 0:
		fmt.Fprintf(&report, "- found %d financial documents\n", docs.Total)
	default:
		report.WriteString("- no financial documents available\n")
	}

	report.WriteString("\nTechnology investment:\n")
	if stackErr != nil {
		fmt.Fprintf(&report, "- unavailable: %v\n", stackErr)
	} else {
		fmt.Fprintf(&report, "- %s maintains %d repositories\n", stack.Organization, stack.TotalRepos)
	}

	return map[string]interface{}{"report": report.String()}, nil
}

// ComplianceCheckTool implements tool.Tool by collecting compliance
// documents, compliance metrics, and security repository signals for a
// supplier.
//
// Input: {"supplier": "<supplier name>"}
// Output: {"report": "<formatted findings>"}
type ComplianceCheckTool struct {
	integrations Integrations
}

// NewComplianceCheckTool creates a ComplianceCheckTool.
func NewComplianceCheckTool(integrations Integrations) *ComplianceCheckTool {
	return &ComplianceCheckTool{integrations: integrations}
}

// Name implements tool.Tool.
func (t *ComplianceCheckTool) Name() string {
	return "compliance_check"
}

// Call implements tool.Tool.
func (t *ComplianceCheckTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	supplier, ok := input["supplier"].(string)
	if !ok || supplier == "" {
		return nil, fmt.Errorf("supplier parameter required (string)")
	}

	var (
		docs       SearchResult
		docsErr    error
		metrics    DatasetResult
		metricsErr error
		security   RepoSearchResult
		secErr     error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, docsErr = t.integrations.Search.Search(gctx, supplier+" compliance ESG", 5)
		return nil
	})
	g.Go(func() error {
		metrics, metricsErr = t.integrations.Analytics.QueryDataset(gctx, "compliance", fmt.Sprintf("supplier='%s'", supplier))
		return nil
	})
	g.Go(func() error {
		security, secErr = t.integrations.Repos.SearchRepositories(gctx, supplier+" security compliance")
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var report strings.Builder
	fmt.Fprintf(&report, "Compliance report for %s:\n\n", supplier)

	report.WriteString("Compliance documents:\n")
	switch {
	case docsErr != nil:
		fmt.Fprintf(&report, "- unavailable: %v\n", docsErr)
	case len(docs.Documents) > 0:
		fmt.Fprintf(&report, "- found %d compliance documents\n", docs.Total)
	default:
		report.WriteString("- no compliance documents available\n")
	}

	report.WriteString("\nCompliance metrics:\n")
	if metricsErr != nil {
		fmt.Fprintf(&report, "- unavailable: %v\n", metricsErr)
	} else {
		fmt.Fprintf(&report, "- %s query returned %d rows\n", metrics.Dataset, len(metrics.Rows))
	}

	report.WriteString("\nSecurity repositories:\n")
	switch {
	case secErr != nil:
		fmt.Fprintf(&report, "- unavailable: %v\n", secErr)
	case len(security.Repositories) > 0:
		fmt.Fprintf(&report, "- found %d security repositories\n", security.Total)
	default:
		report.WriteString("- no security repositories available\n")
	}

	return map[string]interface{}{"report": report.String()}, nil
}

// Compile-time interface checks.
var (
	_ tool.Tool = (*SupplierResearchTool)(nil)
	_ tool.Tool = (*FinancialAnalysisTool)(nil)
	_ tool.Tool = (*ComplianceCheckTool)(nil)
)
