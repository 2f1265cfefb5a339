// Package ai defines the provider-agnostic chat model: requests, messages,
// tool calls, token usage, and the [Provider] interface every LLM adapter
// implements.
package ai

import (
	"context"
	"net/http"
)

// Provider is the interface every LLM adapter must satisfy. It covers the
// lifecycle of a single request: authentication, endpoint configuration,
// message dispatch, and response interpretation.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	// Returns an error if the call fails, the context is cancelled, or the
	// response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// IsStopMessage reports whether the response is a terminal completion,
	// i.e. the model has nothing more to say and no tool calls are pending.
	// Providers apply their own finish-reason semantics.
	IsStopMessage(message *ChatResponse) bool

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHTTPClient sets the HTTP client used for outbound requests.
	WithHTTPClient(httpClient *http.Client) Provider
}
