// Package tool defines executable tools that executors and LLMs can invoke.
package tool

import "context"

// Tool is the interface for executable tools: web searches, database
// queries, API calls, calculations.
//
// Implementations should validate input parameters, respect context
// cancellation, and return structured output. Example:
//
//	type WeatherTool struct{}
//
//	func (w *WeatherTool) Name() string { return "get_weather" }
//
//	func (w *WeatherTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
//	    location, ok := input["location"].(string)
//	    if !ok {
//	        return nil, errors.New("location parameter required")
//	    }
//	    return map[string]interface{}{"temperature": 72.5, "location": location}, nil
//	}
type Tool interface {
	// Name returns the unique identifier for this tool. It must match
	// the name in any model.ToolSpec advertised to an LLM. Use lowercase
	// with underscores: "search_web", "get_weather".
	Name() string

	// Call executes the tool. input holds the parameters as key-value
	// pairs and may be nil for parameterless tools; its structure
	// should match the tool's advertised schema. Implementations check
	// ctx.Err() before expensive operations and return descriptive
	// errors for invalid inputs.
	Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error)
}
