package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultFabricBaseURL = "https://api.fabric.microsoft.com/v1"

// DatasetResult holds the outcome of an analytics dataset query.
type DatasetResult struct {
	// Dataset names the dataset that was queried.
	Dataset string

	// Rows are the result rows returned by the service.
	Rows []map[string]interface{}

	// Elapsed is the observed query latency.
	Elapsed time.Duration
}

// Analytics queries an external analytics platform for market data.
type Analytics interface {
	// QueryDataset runs a query against a named dataset.
	QueryDataset(ctx context.Context, dataset, query string) (DatasetResult, error)

	// MarketInsights fetches market data for a product category.
	MarketInsights(ctx context.Context, category string) (DatasetResult, error)
}

// FabricClient implements Analytics against the Microsoft Fabric REST
// API.
type FabricClient struct {
	workspaceID string
	accessToken string
	baseURL     string
	client      *http.Client
}

// NewFabricClient creates a client for the given workspace. An empty
// baseURL uses the public Fabric endpoint.
func NewFabricClient(workspaceID, accessToken, baseURL string) *FabricClient {
	if baseURL == "" {
		baseURL = defaultFabricBaseURL
	}
	return &FabricClient{
		workspaceID: workspaceID,
		accessToken: accessToken,
		baseURL:     baseURL,
		client:      &http.Client{},
	}
}

// QueryDataset implements Analytics. Returns ErrNotConfigured when the
// workspace ID or access token is missing.
func (c *FabricClient) QueryDataset(ctx context.Context, dataset, query string) (DatasetResult, error) {
	if c.workspaceID == "" || c.accessToken == "" {
		return DatasetResult{}, fmt.Errorf("%w: analytics requires workspace id and access token", ErrNotConfigured)
	}

	queryURL := fmt.Sprintf("%s/workspaces/%s/items/%s/executeQueries", c.baseURL, c.workspaceID, dataset)

	payload, err := json.Marshal(map[string]interface{}{
		"queries":            []map[string]string{{"query": query}},
		"serializerSettings": map[string]bool{"includeNulls": false},
	})
	if err != nil {
		return DatasetResult{}, fmt.Errorf("failed to encode query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, queryURL, bytes.NewReader(payload))
	if err != nil {
		return DatasetResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return DatasetResult{}, fmt.Errorf("analytics request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return DatasetResult{}, fmt.Errorf("failed to read analytics response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return DatasetResult{}, fmt.Errorf("analytics query returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return DatasetResult{}, fmt.Errorf("failed to decode analytics response: %w", err)
	}

	return DatasetResult{
		Dataset: dataset,
		Rows:    parsed.Results,
		Elapsed: time.Since(start),
	}, nil
}

// MarketInsights implements Analytics by querying the market-insights
// dataset for the given category.
func (c *FabricClient) MarketInsights(ctx context.Context, category string) (DatasetResult, error) {
	query := fmt.Sprintf("SELECT * FROM market_data WHERE category = '%s'", category)
	return c.QueryDataset(ctx, "market-insights", query)
}
