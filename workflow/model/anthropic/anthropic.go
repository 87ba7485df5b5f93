// Package anthropic implements model.ChatModel for Anthropic's Claude API.
package anthropic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zavalabs/agentflow/workflow/model"
)

const defaultModel = "claude-sonnet-4-20250514"

const maxTokens = 4096

// ChatModel wraps the official anthropic-sdk-go client. It extracts
// system messages into Anthropic's separate system parameter, converts
// tool specs to Claude's tool format, and parses text and tool_use
// blocks out of the response.
//
// Safe for concurrent use after creation.
//
// Example:
//
//	m := anthropic.NewChatModel(os.Getenv("ANTHROPIC_API_KEY"), "")
//	out, err := m.Chat(ctx, messages, nil)
type ChatModel struct {
	client    *anthropic.Client
	modelName string
}

// NewChatModel creates a ChatModel for the Claude API. An empty
// modelName selects a default Claude model. The API key comes from
// https://console.anthropic.com/.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = defaultModel
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ChatModel{
		client:    &client,
		modelName: modelName,
	}
}

// Chat implements model.ChatModel.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message, tools []model.ToolSpec) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	systemPrompt, conversation := splitSystemPrompt(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.modelName),
		MaxTokens: maxTokens,
		Messages:  toMessageParams(conversation),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	for _, spec := range tools {
		params.Tools = append(params.Tools, toToolParam(spec))
	}

	message, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return model.ChatOut{}, err
	}

	out := model.ChatOut{
		TokensIn:  int(message.Usage.InputTokens),
		TokensOut: int(message.Usage.OutputTokens),
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(variant.Text)
		case anthropic.ToolUseBlock:
			call := model.ToolCall{Name: variant.Name}
			var input map[string]interface{}
			if err := json.Unmarshal([]byte(variant.JSON.Input.Raw()), &input); err == nil {
				call.Input = input
			}
			out.ToolCalls = append(out.ToolCalls, call)
		}
	}
	out.Text = text.String()

	return out, nil
}

// splitSystemPrompt separates system messages from the conversation.
// Anthropic's API takes the system prompt as a separate parameter.
func splitSystemPrompt(messages []model.Message) (string, []model.Message) {
	var system strings.Builder
	var conversation []model.Message

	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(msg.Content)
		} else {
			conversation = append(conversation, msg)
		}
	}

	return system.String(), conversation
}

func toMessageParams(messages []model.Message) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == model.RoleAssistant {
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		} else {
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return params
}

func toToolParam(spec model.ToolSpec) anthropic.ToolUnionParam {
	tool := anthropic.ToolParam{
		Name:        spec.Name,
		Description: anthropic.String(spec.Description),
	}
	if props, ok := spec.Schema["properties"]; ok {
		tool.InputSchema = anthropic.ToolInputSchemaParam{Properties: props}
	}
	return anthropic.ToolUnionParam{OfTool: &tool}
}
