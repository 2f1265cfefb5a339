package openai

import (
	"github.com/grafo-ai/grafo/internal/jsonschema"
	"github.com/grafo-ai/grafo/internal/utils"
	"github.com/grafo-ai/grafo/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

// chatCompletionRequest is the /chat/completions request payload.
type chatCompletionRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         *float64      `json:"temperature,omitempty"`
	TopP                *float64      `json:"top_p,omitempty"`
	MaxCompletionTokens *int          `json:"max_completion_tokens,omitempty"`

	Tools []chatTool `json:"tools,omitempty"`

	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role       string         `json:"role"` // system, user, assistant, tool
	Content    string         `json:"content,omitempty"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"` // For role=tool
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`   // For role=assistant
}

type chatTool struct {
	Type     string       `json:"type"` // "function"
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
	Strict      bool               `json:"strict,omitempty"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // "function"
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"` // JSON string
	} `json:"function"`
}

type chatResponseFormat struct {
	Type       string          `json:"type"` // "text", "json_object", "json_schema"
	JSONSchema *chatJSONSchema `json:"json_schema,omitempty"`
}

type chatJSONSchema struct {
	Name   string             `json:"name"`
	Schema *jsonschema.Schema `json:"schema"`
	Strict bool               `json:"strict,omitempty"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"` // "chat.completion"
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "tool_calls", "content_filter"
}

type chatResponseMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
}

type chatUsage struct {
	PromptTokens            int                      `json:"prompt_tokens"`
	CompletionTokens        int                      `json:"completion_tokens"`
	TotalTokens             int                      `json:"total_tokens"`
	PromptTokensDetails     *promptTokensDetails     `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *completionTokensDetails `json:"completion_tokens_details,omitempty"`
}

type promptTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

type completionTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

/*
	CONVERSIONS
*/

// requestFromGeneric maps the provider-agnostic request onto the wire format.
// The system prompt becomes the leading system message.
func requestFromGeneric(request ai.ChatRequest) chatCompletionRequest {
	messages := make([]chatMessage, 0, len(request.Messages)+1)
	if request.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: string(ai.RoleSystem), Content: request.SystemPrompt})
	}
	for _, message := range request.Messages {
		messages = append(messages, chatMessage{
			Role:       string(message.Role),
			Content:    message.Content,
			Name:       message.Name,
			ToolCallID: message.ToolCallID,
			ToolCalls:  toolCallsFromGeneric(message.ToolCalls),
		})
	}

	wireRequest := chatCompletionRequest{
		Model:    request.Model,
		Messages: messages,
	}

	for _, tool := range request.Tools {
		wireRequest.Tools = append(wireRequest.Tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	if config := request.GenerationConfig; config != nil {
		if config.Temperature != 0 {
			wireRequest.Temperature = utils.Ptr(float64(config.Temperature))
		}
		if config.TopP != 0 {
			wireRequest.TopP = utils.Ptr(float64(config.TopP))
		}
		if config.MaxTokens != 0 {
			wireRequest.MaxCompletionTokens = utils.Ptr(config.MaxTokens)
		}
	}

	if format := request.ResponseFormat; format != nil {
		if format.OutputSchema != nil {
			wireRequest.ResponseFormat = &chatResponseFormat{
				Type: "json_schema",
				JSONSchema: &chatJSONSchema{
					Name:   "response",
					Schema: format.OutputSchema,
					Strict: format.Strict,
				},
			}
		} else if format.Type != "" {
			wireRequest.ResponseFormat = &chatResponseFormat{Type: format.Type}
		}
	}

	return wireRequest
}

func toolCallsFromGeneric(toolCalls []ai.ToolCall) []chatToolCall {
	if len(toolCalls) == 0 {
		return nil
	}
	wireCalls := make([]chatToolCall, 0, len(toolCalls))
	for _, call := range toolCalls {
		wireCall := chatToolCall{ID: call.ID, Type: call.Type}
		wireCall.Function.Name = call.Function.Name
		wireCall.Function.Arguments = call.Function.Arguments
		wireCalls = append(wireCalls, wireCall)
	}
	return wireCalls
}

// responseToGeneric maps the first choice of the wire response onto the
// provider-agnostic response.
func responseToGeneric(response *chatCompletionResponse) *ai.ChatResponse {
	choice := response.Choices[0]

	generic := &ai.ChatResponse{
		ID:           response.ID,
		Model:        response.Model,
		Created:      response.Created,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}

	for _, wireCall := range choice.Message.ToolCalls {
		generic.ToolCalls = append(generic.ToolCalls, ai.ToolCall{
			ID:   wireCall.ID,
			Type: wireCall.Type,
			Function: ai.ToolCallFunction{
				Name:      wireCall.Function.Name,
				Arguments: wireCall.Function.Arguments,
			},
		})
	}

	if response.Usage != nil {
		generic.Usage = &ai.Usage{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		}
		if details := response.Usage.PromptTokensDetails; details != nil {
			generic.Usage.CachedTokens = details.CachedTokens
		}
		if details := response.Usage.CompletionTokensDetails; details != nil {
			generic.Usage.ReasoningTokens = details.ReasoningTokens
		}
	}

	return generic
}
