// Package openai implements [ai.Provider] for the OpenAI chat completions
// API and for every service that speaks the same wire format behind a
// different base URL.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/grafo-ai/grafo/internal/utils"
	"github.com/grafo-ai/grafo/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// Provider implements [ai.Provider] against /chat/completions.
// Each instance owns its configuration and HTTP client; two Providers never
// share mutable state, so they can point at different endpoints side by side.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a provider configured from the environment: OPENAI_API_KEY for
// authentication and OPENAI_BASE_URL to override the default endpoint.
func New() *Provider {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// NewCompatible creates a provider for an OpenAI-compatible service, reading
// the API key from the named environment variable. Self-hosted gateways and
// alternative inference providers commonly expose this wire format.
//
// Example:
//
//	provider := openai.NewCompatible("https://api.regolo.ai/v1", "REGOLO_API_KEY")
func NewCompatible(baseURL string, apiKeyEnv string) *Provider {
	return &Provider{
		apiKey:  os.Getenv(apiKeyEnv),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

var _ ai.Provider = (*Provider)(nil)

// WithAPIKey sets the API key for the provider.
func (p *Provider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for API requests.
func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient sets a custom HTTP client.
func (p *Provider) WithHTTPClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage implements [ai.Provider].
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}

	httpResponse, response, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, requestFromGeneric(request))
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, fmt.Errorf("empty response from API: %s", httpResponse.Status)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return responseToGeneric(response), nil
}

// IsStopMessage reports whether the response should end a conversation turn.
func (p *Provider) IsStopMessage(message *ai.ChatResponse) bool {
	if message == nil {
		return true
	}
	// Explicit finish reason from the API wins.
	switch message.FinishReason {
	case "stop", "length", "content_filter":
		return true
	}
	// Nothing said and nothing to call: treat as stop.
	return message.Content == "" && len(message.ToolCalls) == 0
}
