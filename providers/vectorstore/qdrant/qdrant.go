// Package qdrant implements [vectorstore.Store] against the Qdrant REST API.
// Collections are created with named vector slots, points are written with
// the chunk text and metadata as payload, and searches run against a single
// named slot.
package qdrant

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/grafo-ai/grafo/document"
	"github.com/grafo-ai/grafo/internal/utils"
	"github.com/grafo-ai/grafo/providers/observability"
	"github.com/grafo-ai/grafo/providers/vectorstore"
)

const (
	defaultBaseURL = "http://localhost:6333"

	// providerName identifies this backend in span attributes.
	providerName = "qdrant"
)

// Store talks to a Qdrant instance over REST. Instances are configured with
// With* methods and are safe to use from multiple goroutines once built.
type Store struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a store configured from the environment. QDRANT_URL overrides
// the default http://localhost:6333; QDRANT_API_KEY is sent as the api-key
// header when set (Qdrant Cloud requires it, local instances usually don't).
func New() *Store {
	baseURL := os.Getenv("QDRANT_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Store{
		baseURL: baseURL,
		apiKey:  os.Getenv("QDRANT_API_KEY"),
		client:  &http.Client{},
	}
}

// Ensure Store implements vectorstore.Store at compile time.
var _ vectorstore.Store = (*Store)(nil)

// WithBaseURL sets the Qdrant endpoint URL.
func (s *Store) WithBaseURL(baseURL string) *Store {
	s.baseURL = baseURL
	return s
}

// WithAPIKey sets the api-key header value.
func (s *Store) WithAPIKey(apiKey string) *Store {
	s.apiKey = apiKey
	return s
}

// WithHTTPClient sets a custom HTTP client, e.g. with a timeout.
func (s *Store) WithHTTPClient(client *http.Client) *Store {
	s.client = client
	return s
}

// headers returns the auth headers for every request.
func (s *Store) headers() map[string]string {
	if s.apiKey == "" {
		return nil
	}
	return map[string]string{"api-key": s.apiKey}
}

// CreateCollection provisions a collection with one named vector slot per
// config. A collection that already exists is left untouched.
func (s *Store) CreateCollection(ctx context.Context, name string, configs ...vectorstore.VectorConfig) error {
	collectionURL := s.baseURL + "/collections/" + name

	// Qdrant rejects PUT on an existing collection, so probe first.
	_, _, err := utils.DoJSONSync[collectionInfoResponse](ctx, s.client, http.MethodGet, collectionURL, s.headers(), nil)
	if err == nil {
		return nil
	}

	request := createCollectionRequest{
		Vectors: make(map[string]vectorParams, len(configs)),
	}
	for _, config := range configs {
		distance := config.Distance
		if distance == "" {
			distance = vectorstore.DistanceCosine
		}
		request.Vectors[config.Name] = vectorParams{
			Size:     config.Dimensions,
			Distance: string(distance),
		}
	}

	_, _, err = utils.DoJSONSync[operationResponse](ctx, s.client, http.MethodPut, collectionURL, s.headers(), request)
	if err != nil {
		return fmt.Errorf("qdrant: create collection %q: %w", name, err)
	}
	return nil
}

// Upsert writes chunks as points, one per chunk, with every embedding mapped
// into its named vector slot and the text plus metadata stored as payload.
// The request waits for the write to be applied so an immediate search sees
// the new points.
func (s *Store) Upsert(ctx context.Context, collection string, chunks []document.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]pointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		vectors := make(map[string][]float32, len(chunk.Embeddings))
		for _, embedding := range chunk.Embeddings {
			vectors[embedding.Name] = embedding.Vector
		}
		points = append(points, pointStruct{
			ID:     chunk.ID,
			Vector: vectors,
			Payload: pointPayload{
				Text:     chunk.Text,
				Metadata: chunk.Metadata,
			},
		})
	}

	upsertURL := s.baseURL + "/collections/" + collection + "/points?wait=true"
	_, _, err := utils.DoJSONSync[operationResponse](ctx, s.client, http.MethodPut, upsertURL, s.headers(), upsertPointsRequest{Points: points})
	if err != nil {
		return fmt.Errorf("qdrant: upsert into %q: %w", collection, err)
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrVectorStoreProvider, providerName),
			observability.String(observability.AttrVectorStoreCollection, collection),
			observability.Int(observability.AttrVectorStorePoints, len(points)),
		)
	}
	return nil
}

// Search runs a similarity search against the named vector slot and maps the
// scored points back into chunks. Returned chunks carry the stored text and
// metadata but no vectors; Qdrant does not return them unless asked, and the
// callers here never need them.
func (s *Store) Search(ctx context.Context, collection string, vectorName string, vector []float32, k int) ([]vectorstore.SearchResult, error) {
	if k <= 0 {
		return []vectorstore.SearchResult{}, nil
	}

	request := searchRequest{
		Vector:      namedVector{Name: vectorName, Vector: vector},
		Limit:       k,
		WithPayload: true,
	}

	searchURL := s.baseURL + "/collections/" + collection + "/points/search"
	_, response, err := utils.DoJSONSync[searchResponse](ctx, s.client, http.MethodPost, searchURL, s.headers(), request)
	if err != nil {
		return nil, fmt.Errorf("qdrant: search %q: %w", collection, err)
	}

	results := make([]vectorstore.SearchResult, 0, len(response.Result))
	for _, point := range response.Result {
		results = append(results, vectorstore.SearchResult{
			Chunk: document.Chunk{
				ID:       point.idString(),
				Text:     point.Payload.Text,
				Metadata: point.Payload.Metadata,
			},
			Score: point.Score,
		})
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrVectorStoreProvider, providerName),
			observability.String(observability.AttrVectorStoreCollection, collection),
			observability.Int(observability.AttrVectorStorePoints, len(results)),
		)
	}
	return results, nil
}
