package collab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAzureSearchClient(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		client := NewAzureSearchClient("", "", "")
		_, err := client.Search(ctx, "anything", 5)
		if !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("search request and response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/indexes/supplier-docs/docs/search" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("api-version"); got != searchAPIVersion {
				t.Errorf("expected api-version %s, got %s", searchAPIVersion, got)
			}
			if got := r.Header.Get("api-key"); got != "secret" {
				t.Errorf("expected api-key header, got %q", got)
			}

			var payload map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			if payload["search"] != "acme compliance" {
				t.Errorf("unexpected search term: %v", payload["search"])
			}
			if payload["top"] != float64(3) {
				t.Errorf("unexpected top: %v", payload["top"])
			}

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"@odata.count": 12,
				"value": []map[string]interface{}{
					{"title": "Acme ESG report"},
					{"title": "Acme audit"},
				},
			})
		}))
		defer server.Close()

		client := NewAzureSearchClient(server.URL, "secret", "")
		result, err := client.Search(ctx, "acme compliance", 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Total != 12 {
			t.Errorf("expected total 12, got %d", result.Total)
		}
		if len(result.Documents) != 2 {
			t.Errorf("expected 2 documents, got %d", len(result.Documents))
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := NewAzureSearchClient(server.URL, "secret", "docs")
		_, err := client.Search(ctx, "q", 5)
		if err == nil {
			t.Fatal("expected error for 403 response")
		}
	})
}

func TestFabricClient(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		client := NewFabricClient("", "", "")
		_, err := client.QueryDataset(ctx, "financials", "SELECT 1")
		if !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("query dataset", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/workspaces/ws-1/items/financials/executeQueries" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("expected bearer token, got %q", got)
			}

			var payload struct {
				Queries []map[string]string `json:"queries"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			if len(payload.Queries) != 1 || payload.Queries[0]["query"] != "SELECT 1" {
				t.Errorf("unexpected queries: %v", payload.Queries)
			}

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"results": []map[string]interface{}{{"revenue": 100}, {"revenue": 200}},
			})
		}))
		defer server.Close()

		client := NewFabricClient("ws-1", "tok", server.URL)
		result, err := client.QueryDataset(ctx, "financials", "SELECT 1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Dataset != "financials" {
			t.Errorf("expected dataset name preserved, got %q", result.Dataset)
		}
		if len(result.Rows) != 2 {
			t.Errorf("expected 2 rows, got %d", len(result.Rows))
		}
	})

	t.Run("market insights targets the market dataset", func(t *testing.T) {
		var gotPath, gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			var payload struct {
				Queries []map[string]string `json:"queries"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			gotQuery = payload.Queries[0]["query"]
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": []map[string]interface{}{}})
		}))
		defer server.Close()

		client := NewFabricClient("ws-1", "tok", server.URL)
		if _, err := client.MarketInsights(ctx, "electronics"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotPath != "/workspaces/ws-1/items/market-insights/executeQueries" {
			t.Errorf("unexpected path: %s", gotPath)
		}
		if gotQuery != "SELECT * FROM market_data WHERE category = 'electronics'" {
			t.Errorf("unexpected query: %s", gotQuery)
		}
	})
}

func TestGitHubClient(t *testing.T) {
	ctx := context.Background()

	t.Run("search repositories", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search/repositories" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("sort") != "stars" || q.Get("per_page") != "5" {
				t.Errorf("unexpected query params: %v", q)
			}
			if got := r.Header.Get("Authorization"); got != "token gh-tok" {
				t.Errorf("expected token auth, got %q", got)
			}

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"total_count": 42,
				"items": []map[string]interface{}{
					{"full_name": "acme/platform", "language": "Go", "stargazers_count": 900},
				},
			})
		}))
		defer server.Close()

		client := NewGitHubClient("gh-tok", server.URL)
		result, err := client.SearchRepositories(ctx, "acme supplier")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Total != 42 {
			t.Errorf("expected total 42, got %d", result.Total)
		}
		if len(result.Repositories) != 1 || result.Repositories[0].Stars != 900 {
			t.Errorf("unexpected repositories: %+v", result.Repositories)
		}
	})

	t.Run("tech stack aggregates languages", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/orgs/acme/repos" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			_ = json.NewEncoder(w).Encode([]map[string]interface{}{
				{"full_name": "acme/a", "language": "Go"},
				{"full_name": "acme/b", "language": "Python"},
				{"full_name": "acme/c", "language": "Go"},
				{"full_name": "acme/d", "language": ""},
			})
		}))
		defer server.Close()

		client := NewGitHubClient("", server.URL)
		report, err := client.TechStack(ctx, "acme")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.TotalRepos != 4 {
			t.Errorf("expected 4 repos, got %d", report.TotalRepos)
		}
		if report.Distribution["Go"] != 2 || report.Distribution["Python"] != 1 {
			t.Errorf("unexpected distribution: %v", report.Distribution)
		}
		if len(report.Languages) != 2 {
			t.Errorf("expected 2 languages, got %v", report.Languages)
		}
	})

	t.Run("tech stack requires org", func(t *testing.T) {
		client := NewGitHubClient("", "")
		if _, err := client.TechStack(ctx, ""); err == nil {
			t.Fatal("expected error for empty organization")
		}
	})
}
