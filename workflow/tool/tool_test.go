package tool

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMockTool(t *testing.T) {
	ctx := context.Background()

	t.Run("sequences responses and repeats last", func(t *testing.T) {
		mock := &MockTool{
			ToolName: "search",
			Responses: []map[string]interface{}{
				{"report": "first"},
				{"report": "second"},
			},
		}

		for i, want := range []string{"first", "second", "second"} {
			out, err := mock.Call(ctx, map[string]interface{}{"query": "q"})
			if err != nil {
				t.Fatalf("call %d: unexpected error: %v", i, err)
			}
			if out["report"] != want {
				t.Errorf("call %d: expected %q, got %v", i, want, out["report"])
			}
		}
	})

	t.Run("records input and counts calls", func(t *testing.T) {
		mock := &MockTool{ToolName: "search"}
		_, _ = mock.Call(ctx, map[string]interface{}{"query": "suppliers"})

		if mock.CallCount() != 1 {
			t.Fatalf("expected 1 call, got %d", mock.CallCount())
		}
		if got := mock.Calls[0].Input["query"]; got != "suppliers" {
			t.Errorf("expected recorded query, got %v", got)
		}
	})

	t.Run("error injection still records the call", func(t *testing.T) {
		sentinel := errors.New("backend unavailable")
		mock := &MockTool{ToolName: "search", Err: sentinel}

		_, err := mock.Call(ctx, nil)
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected injected error, got %v", err)
		}
		if mock.CallCount() != 1 {
			t.Error("expected failing call recorded")
		}
	})

	t.Run("reset restores initial state", func(t *testing.T) {
		mock := &MockTool{
			ToolName:  "search",
			Responses: []map[string]interface{}{{"report": "a"}, {"report": "b"}},
		}
		_, _ = mock.Call(ctx, nil)
		mock.Reset()

		if mock.CallCount() != 0 {
			t.Error("expected history cleared")
		}
		out, _ := mock.Call(ctx, nil)
		if out["report"] != "a" {
			t.Errorf("expected sequence restarted, got %v", out["report"])
		}
	})
}

func TestHTTPTool(t *testing.T) {
	ctx := context.Background()

	t.Run("GET request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET, got %s", r.Method)
			}
			w.Header().Set("X-Custom", "value")
			_, _ = w.Write([]byte("hello"))
		}))
		defer server.Close()

		result, err := NewHTTPTool().Call(ctx, map[string]interface{}{"url": server.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result["status_code"] != http.StatusOK {
			t.Errorf("expected 200, got %v", result["status_code"])
		}
		if result["body"] != "hello" {
			t.Errorf("expected body 'hello', got %v", result["body"])
		}
		headers := result["headers"].(map[string]interface{})
		if headers["X-Custom"] != "value" {
			t.Errorf("expected custom header, got %v", headers["X-Custom"])
		}
	})

	t.Run("POST with body and headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type header, got %q", ct)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"q":"test"}` {
				t.Errorf("unexpected body: %s", body)
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		result, err := NewHTTPTool().Call(ctx, map[string]interface{}{
			"url":     server.URL,
			"method":  "post",
			"body":    `{"q":"test"}`,
			"headers": map[string]interface{}{"Content-Type": "application/json"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result["status_code"] != http.StatusCreated {
			t.Errorf("expected 201, got %v", result["status_code"])
		}
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := NewHTTPTool().Call(ctx, map[string]interface{}{})
		if err == nil {
			t.Fatal("expected error for missing url")
		}
	})

	t.Run("unsupported method", func(t *testing.T) {
		_, err := NewHTTPTool().Call(ctx, map[string]interface{}{
			"url":    "http://example.com",
			"method": "DELETE",
		})
		if err == nil {
			t.Fatal("expected error for unsupported method")
		}
	})
}
