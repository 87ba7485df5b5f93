package tool

import (
	"context"
	"sync"
)

// MockTool is a test implementation of Tool. It returns configured
// responses, records every call, and supports error injection. Safe for
// concurrent use.
//
// Example:
//
//	mock := &MockTool{
//	    ToolName:  "search_web",
//	    Responses: []map[string]interface{}{{"results": []string{"a", "b"}}},
//	}
//	out, err := mock.Call(ctx, map[string]interface{}{"query": "test"})
type MockTool struct {
	// ToolName is the identifier returned by Name.
	ToolName string

	// Responses is the sequence of outputs to return. Each Call returns
	// the next one; when exhausted, the last response repeats.
	Responses []map[string]interface{}

	// Err, if set, is returned by Call instead of a response.
	Err error

	// Calls records every Call invocation.
	Calls []MockToolCall

	mu        sync.Mutex
	callIndex int
}

// MockToolCall records a single Call invocation.
type MockToolCall struct {
	Input map[string]interface{}
}

// Name implements Tool.
func (m *MockTool) Name() string {
	return m.ToolName
}

// Call implements Tool. The call is recorded even when Err is set.
func (m *MockTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockToolCall{Input: input})

	if m.Err != nil {
		return nil, m.Err
	}

	if len(m.Responses) == 0 {
		return map[string]interface{}{}, nil
	}

	idx := m.callIndex
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.callIndex++
	}

	return m.Responses[idx], nil
}

// Reset clears the call history and response index.
func (m *MockTool) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = nil
	m.callIndex = 0
}

// CallCount returns how many times Call has been invoked.
func (m *MockTool) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Calls)
}
