// Package collab provides the external research integrations used by
// the market research workflow: document search, market analytics, and
// repository analysis. Each integration has a live HTTP client and a
// mock, behind a small interface so executors stay testable.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured indicates an integration is missing credentials.
var ErrNotConfigured = errors.New("collab: integration not configured")

const searchAPIVersion = "2023-11-01"

// SearchResult holds the outcome of a document search.
type SearchResult struct {
	// Documents are the matching documents, as returned by the index.
	Documents []map[string]interface{}

	// Total is the total match count reported by the service.
	Total int

	// Elapsed is the observed query latency.
	Elapsed time.Duration
}

// DocumentSearch searches an external document index.
type DocumentSearch interface {
	// Search runs a full-text query and returns up to top documents.
	Search(ctx context.Context, query string, top int) (SearchResult, error)
}

// AzureSearchClient implements DocumentSearch against the Azure AI
// Search REST API.
type AzureSearchClient struct {
	endpoint string
	apiKey   string
	index    string
	client   *http.Client
}

// NewAzureSearchClient creates a client for the given search endpoint
// and index.
func NewAzureSearchClient(endpoint, apiKey, index string) *AzureSearchClient {
	if index == "" {
		index = "supplier-docs"
	}
	return &AzureSearchClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		index:    index,
		client:   &http.Client{},
	}
}

// Search implements DocumentSearch. Returns ErrNotConfigured when the
// endpoint or API key is missing.
func (c *AzureSearchClient) Search(ctx context.Context, query string, top int) (SearchResult, error) {
	if c.endpoint == "" || c.apiKey == "" {
		return SearchResult{}, fmt.Errorf("%w: document search requires endpoint and api key", ErrNotConfigured)
	}
	if top <= 0 {
		top = 5
	}

	searchURL := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", c.endpoint, c.index, searchAPIVersion)

	payload, err := json.Marshal(map[string]interface{}{
		"search":            query,
		"top":               top,
		"includeTotalCount": true,
		"queryType":         "simple",
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, bytes.NewReader(payload))
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("document search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return SearchResult{}, fmt.Errorf("document search returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Value []map[string]interface{} `json:"value"`
		Count int                      `json:"@odata.count"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return SearchResult{}, fmt.Errorf("failed to decode search response: %w", err)
	}

	return SearchResult{
		Documents: parsed.Value,
		Total:     parsed.Count,
		Elapsed:   time.Since(start),
	}, nil
}
