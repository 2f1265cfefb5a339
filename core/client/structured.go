package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/grafo-ai/grafo/core/parse"
	"github.com/grafo-ai/grafo/internal/jsonschema"
	"github.com/grafo-ai/grafo/providers/ai"
)

// StructuredClient wraps a base Client with type-safe structured output. The
// generic parameter T defines the expected response shape for every request.
//
// The client generates the JSON schema for T once at construction, applies it
// to all requests, and parses each response's content into T. Responses that
// arrive as slightly malformed JSON are repaired before parsing.
//
// Example:
//
//	type ProductReview struct {
//	    ProductName string `json:"product_name" jsonschema:"required"`
//	    Rating      int    `json:"rating" jsonschema:"required"`
//	    Summary     string `json:"summary" jsonschema:"required"`
//	}
//
//	reviewClient, err := client.NewStructured[ProductReview](provider)
//	resp, err := reviewClient.SendMessage(ctx, "Analyze this review: ...")
//	fmt.Println(resp.Data.ProductName, resp.Data.Rating)
type StructuredClient[T any] struct {
	Client
	schema *jsonschema.Schema
}

// FromBaseClient wraps an existing Client for structured output of type T.
// The schema generated for T becomes the base client's default output schema,
// so configure the base client fully before wrapping it.
func FromBaseClient[T any](base *Client) (*StructuredClient[T], error) {
	if base == nil {
		return nil, errors.New("base client cannot be nil")
	}

	schema, err := jsonschema.For[T]()
	if err != nil {
		return nil, fmt.Errorf("failed to generate output schema: %w", err)
	}

	base.SetDefaultOutputSchema(schema)
	return &StructuredClient[T]{
		Client: *base,
		schema: schema,
	}, nil
}

// NewStructured creates a StructuredClient[T] by building a base Client with
// the given provider and options, then wrapping it for structured output.
func NewStructured[T any](llmProvider ai.Provider, opts ...func(*ClientOptions)) (*StructuredClient[T], error) {
	base, err := New(llmProvider, opts...)
	if err != nil {
		return nil, err
	}
	return FromBaseClient[T](base)
}

// SendMessage sends a user prompt and returns the response parsed into T.
// The schema for T rides on the request as the default output schema; a
// per-request [WithOutputSchema] still overrides it.
func (sc *StructuredClient[T]) SendMessage(ctx context.Context, prompt string, opts ...SendMessageOption) (*ai.StructuredChatResponse[T], error) {
	resp, err := sc.Client.SendMessage(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}
	return sc.parseResponse(resp)
}

// ContinueConversation continues from the stored history without adding a new
// user message and returns the response parsed into T.
func (sc *StructuredClient[T]) ContinueConversation(ctx context.Context, opts ...SendMessageOption) (*ai.StructuredChatResponse[T], error) {
	// Prepend the schema option so caller-supplied options can override it.
	opts = append([]SendMessageOption{WithOutputSchema(sc.schema)}, opts...)

	resp, err := sc.Client.ContinueConversation(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return sc.parseResponse(resp)
}

// Schema returns the JSON schema generated for T.
func (sc *StructuredClient[T]) Schema() *jsonschema.Schema {
	return sc.schema
}

func (sc *StructuredClient[T]) parseResponse(resp *ai.ChatResponse) (*ai.StructuredChatResponse[T], error) {
	if resp == nil {
		return nil, errors.New("response is nil")
	}

	data, err := parse.As[T](resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse structured output: %w", err)
	}

	return &ai.StructuredChatResponse[T]{
		ChatResponse: *resp,
		Data:         &data,
	}, nil
}
