// Package research implements the Zava market research workflow: a
// supplier proposal is dispatched to three expert agents in parallel,
// their findings are aggregated into a competitiveness decision, and
// the decision routes to either a negotiation strategy or a dismissal
// review.
package research

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/zavalabs/agentflow/collab"
	"github.com/zavalabs/agentflow/workflow/model"
	"github.com/zavalabs/agentflow/workflow/model/anthropic"
	"github.com/zavalabs/agentflow/workflow/model/google"
	"github.com/zavalabs/agentflow/workflow/model/openai"
)

// Config holds all configuration for the market research workflow.
type Config struct {
	// LLM provider selection
	LLM LLMConfig

	// External research integrations
	Search    SearchConfig
	Analytics AnalyticsConfig
	RepoHost  RepoHostConfig

	// Execution settings
	MaxConcurrent  int           `env:"RESEARCH_MAX_CONCURRENT" envDefault:"8"`
	HandlerTimeout time.Duration `env:"RESEARCH_HANDLER_TIMEOUT" envDefault:"120s"`
}

// LLMConfig selects and configures the chat model provider.
type LLMConfig struct {
	// Provider is one of: mock, anthropic, openai, google.
	Provider string `env:"LLM_PROVIDER" envDefault:"mock"`
	APIKey   string `env:"LLM_API_KEY"`
	Model    string `env:"LLM_MODEL"`
}

// SearchConfig configures the document search integration.
type SearchConfig struct {
	Endpoint string `env:"AZURE_SEARCH_ENDPOINT"`
	APIKey   string `env:"AZURE_SEARCH_API_KEY"`
	Index    string `env:"AZURE_SEARCH_INDEX_NAME" envDefault:"supplier-docs"`
}

// AnalyticsConfig configures the market analytics integration.
type AnalyticsConfig struct {
	WorkspaceID string `env:"FABRIC_WORKSPACE_ID"`
	AccessToken string `env:"FABRIC_ACCESS_TOKEN"`
	BaseURL     string `env:"FABRIC_BASE_URL"`
}

// RepoHostConfig configures the code host integration.
type RepoHostConfig struct {
	Token  string `env:"GITHUB_TOKEN"`
	APIURL string `env:"GITHUB_API_URL"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "mock":
	case "anthropic", "openai", "google":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM API key is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s (must be mock, anthropic, openai, or google)", c.LLM.Provider)
	}

	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be at least 1")
	}

	return nil
}

// ChatModel constructs the configured chat model. The mock provider
// returns a deterministic model suitable for demos without API keys.
func (c *Config) ChatModel(ctx context.Context) (model.ChatModel, error) {
	switch c.LLM.Provider {
	case "anthropic":
		return anthropic.NewChatModel(c.LLM.APIKey, c.LLM.Model), nil
	case "openai":
		return openai.NewChatModel(c.LLM.APIKey, c.LLM.Model), nil
	case "google":
		return google.NewChatModel(ctx, c.LLM.APIKey, c.LLM.Model)
	case "mock":
		return demoChatModel(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", c.LLM.Provider)
	}
}

// Integrations constructs the external research clients. Integrations
// without credentials stay wired and report themselves unavailable when
// called, so the workflow degrades instead of failing to start.
func (c *Config) Integrations() collab.Integrations {
	return collab.Integrations{
		Search:    collab.NewAzureSearchClient(c.Search.Endpoint, c.Search.APIKey, c.Search.Index),
		Analytics: collab.NewFabricClient(c.Analytics.WorkspaceID, c.Analytics.AccessToken, c.Analytics.BaseURL),
		Repos:     collab.NewGitHubClient(c.RepoHost.Token, c.RepoHost.APIURL),
	}
}

// demoChatModel returns a mock that produces plausible expert output and
// a favorable verdict, for running the workflow without credentials.
func demoChatModel() model.ChatModel {
	return &model.MockChatModel{
		Responses: []model.ChatOut{
			{Text: "The proposal meets regulatory and ESG requirements with minor remediation items. VERDICT: COMPETITIVE. Strong compliance posture, solid financials, and good strategic fit."},
		},
	}
}
