// Package openai implements [embedder.Embedder] against the OpenAI
// /embeddings endpoint and compatible services.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/grafo-ai/grafo/internal/utils"
	"github.com/grafo-ai/grafo/providers/embedder"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "text-embedding-3-small"

	embeddingsEndpoint = "/embeddings"
)

// modelDimensions maps the known embedding models to their native vector
// size. Unknown models require WithDimensions.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Embedder calls the OpenAI embeddings API. Instances are configured with
// With* methods and are safe to use from multiple goroutines once built.
type Embedder struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
}

// New creates an embedder configured from the environment (OPENAI_API_KEY,
// OPENAI_BASE_URL) using the default model.
func New() *Embedder {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Embedder{
		apiKey:     os.Getenv("OPENAI_API_KEY"),
		baseURL:    baseURL,
		model:      defaultModel,
		dimensions: modelDimensions[defaultModel],
		client:     &http.Client{},
	}
}

var _ embedder.Embedder = (*Embedder)(nil)

// WithAPIKey sets the API key.
func (e *Embedder) WithAPIKey(apiKey string) *Embedder {
	e.apiKey = apiKey
	return e
}

// WithBaseURL overrides the endpoint, for compatible services.
func (e *Embedder) WithBaseURL(baseURL string) *Embedder {
	e.baseURL = baseURL
	return e
}

// WithModel selects the embedding model. For models in the known table the
// dimensionality is updated automatically; for others call WithDimensions.
func (e *Embedder) WithModel(model string) *Embedder {
	e.model = model
	if dimensions, known := modelDimensions[model]; known {
		e.dimensions = dimensions
	}
	return e
}

// WithDimensions requests vectors of the given size. Supported natively by
// the text-embedding-3 family; also required for unknown compatible models.
func (e *Embedder) WithDimensions(dimensions int) *Embedder {
	e.dimensions = dimensions
	return e
}

// WithHTTPClient sets a custom HTTP client.
func (e *Embedder) WithHTTPClient(httpClient *http.Client) *Embedder {
	e.client = httpClient
	return e
}

// Dimensions implements [embedder.Embedder].
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed implements [embedder.Embedder]. All texts go out in a single request;
// vectors come back in input order regardless of the API's data ordering.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	request := embeddingRequest{
		Model: e.model,
		Input: texts,
	}
	// Only the text-embedding-3 family accepts explicit dimensions; sending
	// the native size is redundant but harmless, sending any size to ada is
	// an API error.
	if e.dimensions > 0 && e.dimensions != modelDimensions[e.model] {
		request.Dimensions = e.dimensions
	}

	_, response, err := utils.DoPostSync[embeddingResponse](ctx, e.client, e.baseURL+embeddingsEndpoint, e.apiKey, request)
	if err != nil {
		return nil, err
	}
	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(response.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range response.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
