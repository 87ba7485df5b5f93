// Package model provides LLM integration adapters.
package model

import "context"

// ChatModel is the interface implemented by LLM chat providers.
//
// It abstracts the differences between providers (OpenAI, Anthropic,
// Google) behind a unified chat API. Implementations should handle
// provider-specific authentication, convert the portable Message format
// to the provider wire format, parse responses back into ChatOut, and
// respect context cancellation.
//
// Example:
//
//	m := anthropic.NewChatModel(apiKey, "claude-sonnet-4-20250514")
//	out, err := m.Chat(ctx, []model.Message{
//	    {Role: model.RoleUser, Content: "Summarize the attached findings."},
//	}, nil)
type ChatModel interface {
	// Chat sends the conversation to the LLM and returns its response.
	// tools is optional; pass nil when the model should not call tools.
	// The model may answer with text, tool calls, or both.
	Chat(ctx context.Context, messages []Message, tools []ToolSpec) (ChatOut, error)
}

// Message is a single message in an LLM conversation.
type Message struct {
	// Role identifies the sender. Use the Role* constants.
	Role string

	// Content is the message text. May be empty for messages that only
	// carry tool calls.
	Content string
}

// Standard role constants, aligned with the conventions of the major
// LLM providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolSpec describes a tool the LLM may call. Schema follows JSON
// Schema and describes the expected input parameters.
type ToolSpec struct {
	// Name uniquely identifies the tool. Must be a valid function name.
	Name string

	// Description tells the LLM what the tool does and when to use it.
	Description string

	// Schema defines the input parameters in JSON Schema format.
	// Optional for tools with no parameters.
	Schema map[string]interface{}
}

// ChatOut is the output of a chat completion. The LLM may respond with
// text, tool calls, or both.
type ChatOut struct {
	// Text contains the generated response. May be empty if the LLM
	// only requested tool calls.
	Text string

	// ToolCalls contains tools the LLM wants to invoke.
	ToolCalls []ToolCall

	// TokensIn and TokensOut report token usage when the provider
	// returns it; zero otherwise.
	TokensIn  int
	TokensOut int
}

// ToolCall is a request from the LLM to invoke a tool. The application
// executes the tool with Input and sends the result back in a new
// message.
type ToolCall struct {
	// Name matches a ToolSpec.Name from the available tools.
	Name string

	// Input contains the call parameters, shaped by the tool's schema.
	// May be nil for tools without parameters.
	Input map[string]interface{}
}
