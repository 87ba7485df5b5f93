package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPTool makes HTTP requests. It supports GET and POST and returns
// the status code, headers, and body of the response.
//
// Input parameters:
//   - url: target URL (required)
//   - method: "GET" or "POST" (defaults to "GET")
//   - headers: optional map of request headers
//   - body: optional request body string (for POST)
//
// Output:
//   - status_code: HTTP status code
//   - headers: response headers
//   - body: response body as string
type HTTPTool struct {
	client *http.Client
}

// NewHTTPTool creates an HTTPTool. Timeouts are handled via context.
func NewHTTPTool() *HTTPTool {
	return &HTTPTool{client: &http.Client{}}
}

// Name returns the tool identifier.
func (h *HTTPTool) Name() string {
	return "http_request"
}

// Call executes an HTTP request with the provided parameters.
func (h *HTTPTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	target, _ := input["url"].(string)
	if target == "" {
		return nil, fmt.Errorf("url parameter required (string)")
	}

	method := http.MethodGet
	if m, ok := input["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("unsupported HTTP method: %s (supported: GET, POST)", method)
	}

	var payload io.Reader
	if body, ok := input["body"].(string); ok && body != "" {
		payload = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if headers, ok := input["headers"].(map[string]interface{}); ok {
		for name, value := range headers {
			if s, ok := value.(string); ok {
				req.Header.Set(name, s)
			}
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return map[string]interface{}{
		"status_code": resp.StatusCode,
		"headers":     flattenHeader(resp.Header),
		"body":        string(respBody),
	}, nil
}

// flattenHeader collapses single-valued headers to plain strings so the
// result stays friendly to LLM tool consumption.
func flattenHeader(header http.Header) map[string]interface{} {
	out := make(map[string]interface{}, len(header))
	for name, values := range header {
		if len(values) == 1 {
			out[name] = values[0]
		} else {
			out[name] = values
		}
	}
	return out
}
