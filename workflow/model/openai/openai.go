// Package openai implements model.ChatModel for OpenAI's chat API.
package openai

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/zavalabs/agentflow/workflow/model"
)

const defaultModel = "gpt-4o"

// ChatModel wraps the official openai-go client. The SDK retries
// transient errors automatically with exponential backoff.
//
// Safe for concurrent use after creation.
//
// Example:
//
//	m := openai.NewChatModel(os.Getenv("OPENAI_API_KEY"), "gpt-4o")
//	out, err := m.Chat(ctx, messages, nil)
type ChatModel struct {
	client    *openai.Client
	modelName string
}

// NewChatModel creates a ChatModel for the OpenAI API. An empty
// modelName selects a default model.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = defaultModel
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)
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

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.modelName),
		Messages: toMessageParams(messages),
	}
	for _, spec := range tools {
		params.Tools = append(params.Tools, toToolParam(spec))
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.ChatOut{}, err
	}

	if len(completion.Choices) == 0 {
		return model.ChatOut{}, errors.New("openai: empty response")
	}

	choice := completion.Choices[0].Message
	out := model.ChatOut{
		Text:      choice.Content,
		TokensIn:  int(completion.Usage.PromptTokens),
		TokensOut: int(completion.Usage.CompletionTokens),
	}

	for _, tc := range choice.ToolCalls {
		call := model.ToolCall{Name: tc.Function.Name}
		var input map[string]interface{}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err == nil {
			call.Input = input
		}
		out.ToolCalls = append(out.ToolCalls, call)
	}

	return out, nil
}

func toMessageParams(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}
	return params
}

func toToolParam(spec model.ToolSpec) openai.ChatCompletionToolUnionParam {
	return openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
		Name:        spec.Name,
		Description: openai.String(spec.Description),
		Parameters:  shared.FunctionParameters(spec.Schema),
	})
}
