package ai

import (
	"encoding/json"

	"github.com/grafo-ai/grafo/internal/jsonschema"
)

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`
	Messages         []Message         `json:"messages"`                    // Conversation so far, system prompt excluded
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system instructions
	Tools            []ToolDescription `json:"tools,omitempty"`             // Tool definitions offered to the model
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional structured-output constraint
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional sampling parameters
}

// ToolDescription advertises a callable tool to the model.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Message is a single message in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// Tool calling fields
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For role=assistant requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For role=tool, links the response to its call
	Name       string     `json:"name,omitempty"`         // For role=tool, the tool that produced this
}

// GenerationConfig carries the sampling parameters shared by providers.
type GenerationConfig struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`  // Cap on generated tokens
	Temperature float32 `json:"temperature,omitempty"` // Sampling temperature [0..2]
	TopP        float32 `json:"top_p,omitempty"`       // Nucleus sampling [0..1], alternative to temperature
}

// ResponseFormat constrains the shape of the model output.
type ResponseFormat struct {
	OutputSchema *jsonschema.Schema `json:"output_schema,omitempty"` // Schema for structured responses
	Strict       bool               `json:"strict,omitempty"`        // Enforce the schema strictly when supported
	Type         string             `json:"type,omitempty"`          // "text" or "json_object", used when no schema is given
}

/*
	##### PROVIDER OUTPUT #####
*/

// ChatResponse is a provider-agnostic chat completion response.
type ChatResponse struct {
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	Created      int64      `json:"created"`
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        *Usage     `json:"usage,omitempty"`
}

// StructuredChatResponse pairs a chat response with its content parsed into a
// typed value. Produced by structured clients; Data is never nil on success.
type StructuredChatResponse[T any] struct {
	ChatResponse
	Data *T
}

// Usage reports token consumption for a single exchange. ReasoningTokens and
// CachedTokens are populated only by providers that report them; they are
// already included in the completion and prompt counts respectively.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
	ReasoningTokens  int `json:"reasoning_tokens,omitempty"`
	CachedTokens     int `json:"cached_tokens,omitempty"`
}

// Add returns the field-wise sum of two usage reports. Useful for keeping a
// running total across the requests of a tool-calling loop.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
		ReasoningTokens:  u.ReasoningTokens + other.ReasoningTokens,
		CachedTokens:     u.CachedTokens + other.CachedTokens,
	}
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type"` // "function"
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction names the function and carries its arguments as the JSON
// string the model produced.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult is the standardized outcome of a tool execution, shaped so the
// model can tell success from failure without guessing.
type ToolResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`   // Machine-readable error code when success=false
	Message string `json:"message,omitempty"` // Human-readable description
	Data    any    `json:"data,omitempty"`    // Actual result when success=true
}

// NewToolResultSuccess creates a successful tool result carrying data.
func NewToolResultSuccess(data any) ToolResult {
	return ToolResult{
		Success: true,
		Data:    data,
	}
}

// NewToolResultError creates a failed tool result. errorType should be a
// machine-readable code such as "tool_not_found" or "tool_execution_failed".
func NewToolResultError(errorType, message string) ToolResult {
	return ToolResult{
		Success: false,
		Error:   errorType,
		Message: message,
	}
}

// ToJSON renders the result as a JSON string for the tool message content.
func (tr ToolResult) ToJSON() (string, error) {
	encoded, err := json.Marshal(tr)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

/*
	##### ENUMS #####
*/

// MessageRole is the role of a message author.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
	RoleTool      MessageRole = "tool"      // Tool/function output
)
