// Package google implements model.ChatModel for Google's Gemini API.
package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/zavalabs/agentflow/workflow/model"
)

const defaultModel = "gemini-1.5-pro"

// ChatModel wraps the official generative-ai-go client. System messages
// become the Gemini system instruction, conversation history is mapped
// to Gemini chat roles, and tool specs become function declarations.
//
// Call Close when the model is no longer needed.
type ChatModel struct {
	client    *genai.Client
	modelName string
}

// NewChatModel creates a ChatModel for the Gemini API. An empty
// modelName selects a default model. Returns an error if the client
// cannot be created.
func NewChatModel(ctx context.Context, apiKey, modelName string) (*ChatModel, error) {
	if modelName == "" {
		modelName = defaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}
	return &ChatModel{
		client:    client,
		modelName: modelName,
	}, nil
}

// Close releases the underlying client resources.
func (m *ChatModel) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// Chat implements model.ChatModel.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message, tools []model.ToolSpec) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	gm := m.client.GenerativeModel(m.modelName)

	if system := collectSystemText(messages); system != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(tools) > 0 {
		gm.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(tools)}}
	}

	history, last := toChatHistory(messages)
	session := gm.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return model.ChatOut{}, err
	}

	out := model.ChatOut{}
	if resp.UsageMetadata != nil {
		out.TokensIn = int(resp.UsageMetadata.PromptTokenCount)
		out.TokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, model.ToolCall{
				Name:  p.Name,
				Input: p.Args,
			})
		}
	}
	out.Text = text.String()

	return out, nil
}

func collectSystemText(messages []model.Message) string {
	var sb strings.Builder
	for _, msg := range messages {
		if msg.Role != model.RoleSystem {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(msg.Content)
	}
	return sb.String()
}

// toChatHistory converts the conversation to Gemini chat history plus
// the final user message to send. Gemini uses "model" for assistant
// turns.
func toChatHistory(messages []model.Message) ([]*genai.Content, string) {
	var conversation []model.Message
	for _, msg := range messages {
		if msg.Role != model.RoleSystem {
			conversation = append(conversation, msg)
		}
	}
	if len(conversation) == 0 {
		return nil, ""
	}

	last := conversation[len(conversation)-1]
	history := make([]*genai.Content, 0, len(conversation)-1)
	for _, msg := range conversation[:len(conversation)-1] {
		role := "user"
		if msg.Role == model.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	return history, last.Content
}

func toDeclarations(tools []model.ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, spec := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  toSchema(spec.Schema),
		})
	}
	return decls
}

// toSchema converts a JSON Schema map to the genai schema type. Handles
// the subset used by tool specs: object, string, number, integer,
// boolean, and array types with descriptions and enums.
func toSchema(schema map[string]interface{}) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{}
	if t, ok := schema["type"].(string); ok {
		out.Type = schemaType(t)
	}
	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]interface{}); ok {
				out.Properties[name] = toSchema(sub)
			}
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		out.Items = toSchema(items)
	}
	if required, ok := schema["required"].([]string); ok {
		out.Required = required
	} else if required, ok := schema["required"].([]interface{}); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	if enum, ok := schema["enum"].([]interface{}); ok {
		for _, e := range enum {
			if s, ok := e.(string); ok {
				out.Enum = append(out.Enum, s)
			}
		}
	}

	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}
