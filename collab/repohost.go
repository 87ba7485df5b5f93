package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultGitHubAPIURL = "https://api.github.com"

const repoHostUserAgent = "agentflow-research"

// Repository describes one repository from a code host search.
type Repository struct {
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
}

// RepoSearchResult holds the outcome of a repository search.
type RepoSearchResult struct {
	Total        int
	Repositories []Repository
	Elapsed      time.Duration
}

// TechStackReport summarizes the technology mix of an organization.
type TechStackReport struct {
	Organization string
	TotalRepos   int
	Languages    []string
	Distribution map[string]int
	Elapsed      time.Duration
}

// RepoHost analyzes repositories on an external code host.
type RepoHost interface {
	// SearchRepositories finds repositories matching the query, ordered
	// by popularity.
	SearchRepositories(ctx context.Context, query string) (RepoSearchResult, error)

	// TechStack analyzes the language mix of an organization's
	// repositories.
	TechStack(ctx context.Context, org string) (TechStackReport, error)
}

// GitHubClient implements RepoHost against the GitHub REST API. A token
// is optional; unauthenticated requests use GitHub's public rate
// limits.
type GitHubClient struct {
	token  string
	apiURL string
	client *http.Client
}

// NewGitHubClient creates a client. An empty apiURL uses the public
// GitHub API.
func NewGitHubClient(token, apiURL string) *GitHubClient {
	if apiURL == "" {
		apiURL = defaultGitHubAPIURL
	}
	return &GitHubClient{
		token:  token,
		apiURL: apiURL,
		client: &http.Client{},
	}
}

// SearchRepositories implements RepoHost.
func (c *GitHubClient) SearchRepositories(ctx context.Context, query string) (RepoSearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", "5")

	start := time.Now()
	body, err := c.get(ctx, c.apiURL+"/search/repositories?"+params.Encode())
	if err != nil {
		return RepoSearchResult{}, err
	}

	var parsed struct {
		TotalCount int          `json:"total_count"`
		Items      []Repository `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return RepoSearchResult{}, fmt.Errorf("failed to decode repository search response: %w", err)
	}

	return RepoSearchResult{
		Total:        parsed.TotalCount,
		Repositories: parsed.Items,
		Elapsed:      time.Since(start),
	}, nil
}

// TechStack implements RepoHost by listing the organization's
// repositories and aggregating their primary languages.
func (c *GitHubClient) TechStack(ctx context.Context, org string) (TechStackReport, error) {
	if org == "" {
		return TechStackReport{}, fmt.Errorf("organization name required")
	}

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(50))
	params.Set("sort", "updated")

	start := time.Now()
	body, err := c.get(ctx, c.apiURL+"/orgs/"+url.PathEscape(org)+"/repos?"+params.Encode())
	if err != nil {
		return TechStackReport{}, err
	}

	var repos []Repository
	if err := json.Unmarshal(body, &repos); err != nil {
		return TechStackReport{}, fmt.Errorf("failed to decode repository list: %w", err)
	}

	distribution := make(map[string]int)
	var languages []string
	for _, repo := range repos {
		if repo.Language == "" {
			continue
		}
		if distribution[repo.Language] == 0 {
			languages = append(languages, repo.Language)
		}
		distribution[repo.Language]++
	}

	return TechStackReport{
		Organization: org,
		TotalRepos:   len(repos),
		Languages:    languages,
		Distribution: distribution,
		Elapsed:      time.Since(start),
	}, nil
}

func (c *GitHubClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", repoHostUserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("code host request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read code host response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("code host returned status %d", resp.StatusCode)
	}

	return body, nil
}
