package collab

import (
	"context"
	"sync"
)

// MockDocumentSearch is a test implementation of DocumentSearch.
type MockDocumentSearch struct {
	Result  SearchResult
	Err     error
	Queries []string

	mu sync.Mutex
}

// Search implements DocumentSearch.
func (m *MockDocumentSearch) Search(ctx context.Context, query string, top int) (SearchResult, error) {
	if ctx.Err() != nil {
		return SearchResult{}, ctx.Err()
	}

	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.Err != nil {
		return SearchResult{}, m.Err
	}
	return m.Result, nil
}

// MockAnalytics is a test implementation of Analytics.
type MockAnalytics struct {
	Result  DatasetResult
	Err     error
	Queries []string

	mu sync.Mutex
}

// QueryDataset implements Analytics.
func (m *MockAnalytics) QueryDataset(ctx context.Context, dataset, query string) (DatasetResult, error) {
	if ctx.Err() != nil {
		return DatasetResult{}, ctx.Err()
	}

	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.Err != nil {
		return DatasetResult{}, m.Err
	}
	result := m.Result
	if result.Dataset == "" {
		result.Dataset = dataset
	}
	return result, nil
}

// MarketInsights implements Analytics.
func (m *MockAnalytics) MarketInsights(ctx context.Context, category string) (DatasetResult, error) {
	return m.QueryDataset(ctx, "market-insights", "category="+category)
}

// MockRepoHost is a test implementation of RepoHost.
type MockRepoHost struct {
	SearchResult RepoSearchResult
	Report       TechStackReport
	Err          error
	Queries      []string

	mu sync.Mutex
}

// SearchRepositories implements RepoHost.
func (m *MockRepoHost) SearchRepositories(ctx context.Context, query string) (RepoSearchResult, error) {
	if ctx.Err() != nil {
		return RepoSearchResult{}, ctx.Err()
	}

	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.Err != nil {
		return RepoSearchResult{}, m.Err
	}
	return m.SearchResult, nil
}

// TechStack implements RepoHost.
func (m *MockRepoHost) TechStack(ctx context.Context, org string) (TechStackReport, error) {
	if ctx.Err() != nil {
		return TechStackReport{}, ctx.Err()
	}

	m.mu.Lock()
	m.Queries = append(m.Queries, "org:"+org)
	m.mu.Unlock()

	if m.Err != nil {
		return TechStackReport{}, m.Err
	}
	report := m.Report
	if report.Organization == "" {
		report.Organization = org
	}
	return report, nil
}
