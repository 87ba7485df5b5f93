package collab

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func healthyIntegrations() Integrations {
	return Integrations{
		Search: &MockDocumentSearch{
			Result: SearchResult{
				Documents: []map[string]interface{}{{"title": "doc"}},
				Total:     7,
				Elapsed:   5 * time.Millisecond,
			},
		},
		Analytics: &MockAnalytics{
			Result: DatasetResult{
				Rows: []map[string]interface{}{{"v": 1}, {"v": 2}},
			},
		},
		Repos: &MockRepoHost{
			SearchResult: RepoSearchResult{
				Total:        3,
				Repositories: []Repository{{FullName: "acme/a", Language: "Go"}},
			},
			Report: TechStackReport{
				TotalRepos: 10,
				Languages:  []string{"Go", "Python", "Rust", "C"},
			},
		},
	}
}

func TestSupplierResearchTool(t *testing.T) {
	ctx := context.Background()

	t.Run("requires query", func(t *testing.T) {
		tool := NewSupplierResearchTool(healthyIntegrations())
		if _, err := tool.Call(ctx, map[string]interface{}{}); err == nil {
			t.Fatal("expected error for missing query")
		}
	})

	t.Run("combines all integrations", func(t *testing.T) {
		integrations := healthyIntegrations()
		tool := NewSupplierResearchTool(integrations)

		out, err := tool.Call(ctx, map[string]interface{}{"query": "acme widgets"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		report := out["report"].(string)
		for _, want := range []string{
			"found 7 documents",
			`market data for "acme widgets" returned 2 rows`,
			"found 3 repositories",
			"primary languages: Go, Python, Rust",
		} {
			if !strings.Contains(report, want) {
				t.Errorf("report missing %q:\n%s", want, report)
			}
		}

		search := integrations.Search.(*MockDocumentSearch)
		if len(search.Queries) != 1 || search.Queries[0] != "supplier acme widgets" {
			t.Errorf("unexpected search queries: %v", search.Queries)
		}
	})

	t.Run("tolerates integration failures", func(t *testing.T) {
		integrations := healthyIntegrations()
		integrations.Search = &MockDocumentSearch{Err: ErrNotConfigured}
		integrations.Analytics = &MockAnalytics{Err: errors.New("fabric down")}

		out, err := NewSupplierResearchTool(integrations).Call(ctx, map[string]interface{}{"query": "acme"})
		if err != nil {
			t.Fatalf("expected tolerant report, got error: %v", err)
		}

		report := out["report"].(string)
		if !strings.Contains(report, "unavailable: ") {
			t.Errorf("expected unavailable lines in report:\n%s", report)
		}
		if !strings.Contains(report, "found 3 repositories") {
			t.Errorf("healthy integration should still contribute:\n%s", report)
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewSupplierResearchTool(healthyIntegrations()).Call(cancelled, map[string]interface{}{"query": "acme"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestFinancialAnalysisTool(t *testing.T) {
	ctx := context.Background()

	t.Run("requires company", func(t *testing.T) {
		tool := NewFinancialAnalysisTool(healthyIntegrations())
		if _, err := tool.Call(ctx, map[string]interface{}{}); err == nil {
			t.Fatal("expected error for missing company")
		}
	})

	t.Run("reports every section", func(t *testing.T) {
		integrations := healthyIntegrations()
		tool := NewFinancialAnalysisTool(integrations)

		out, err := tool.Call(ctx, map[string]interface{}{"company": "Acme Corp"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		report := out["report"].(string)
		for _, want := range []string{
			"Financial analysis for Acme Corp",
			"Financial data:",
			"Market intelligence:",
			"Financial documents:",
			"Technology investment:",
			"maintains 10 repositories",
		} {
			if !strings.Contains(report, want) {
				t.Errorf("report missing %q:\n%s", want, report)
			}
		}

		repos := integrations.Repos.(*MockRepoHost)
		if len(repos.Queries) != 1 || repos.Queries[0] != "org:acme-corp" {
			t.Errorf("expected org lookup for normalized name, got %v", repos.Queries)
		}
	})
}

func TestComplianceCheckTool(t *testing.T) {
	ctx := context.Background()

	t.Run("requires supplier", func(t *testing.T) {
		tool := NewComplianceCheckTool(healthyIntegrations())
		if _, err := tool.Call(ctx, map[string]interface{}{}); err == nil {
			t.Fatal("expected error for missing supplier")
		}
	})

	t.Run("gathers compliance signals", func(t *testing.T) {
		integrations := healthyIntegrations()
		tool := NewComplianceCheckTool(integrations)

		out, err := tool.Call(ctx, map[string]interface{}{"supplier": "Acme"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		report := out["report"].(string)
		for _, want := range []string{
			"Compliance report for Acme",
			"found 7 compliance documents",
			"query returned 2 rows",
			"found 3 security repositories",
		} {
			if !strings.Contains(report, want) {
				t.Errorf("report missing %q:\n%s", want, report)
			}
		}

		search := integrations.Search.(*MockDocumentSearch)
		if len(search.Queries) != 1 || search.Queries[0] != "Acme compliance ESG" {
			t.Errorf("unexpected search queries: %v", search.Queries)
		}
	})
}
