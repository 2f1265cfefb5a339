package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/grafo-ai/grafo/document"
	"github.com/grafo-ai/grafo/providers/observability"
	"github.com/grafo-ai/grafo/providers/vectorstore"
)

// providerName identifies this backend in span attributes.
const providerName = "memstore"

// Store is an in-process implementation of [vectorstore.Store] backed by
// plain slices and brute-force similarity search. It exists for tests,
// examples, and small corpora where running a vector database is overkill.
// All methods are safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// collection holds the vector slot configs and the stored chunks in
// insertion order. Upserts that replace an existing ID keep its position.
type collection struct {
	configs map[string]vectorstore.VectorConfig
	chunks  []document.Chunk
}

// New returns an empty store ready for immediate use.
func New() *Store {
	return &Store{
		collections: make(map[string]*collection),
	}
}

// Ensure Store implements vectorstore.Store at compile time.
var _ vectorstore.Store = (*Store)(nil)

// CreateCollection provisions a collection with the given vector slots.
// Creating a collection that already exists is a no-op, matching the
// behavior of the database-backed adapters.
func (s *Store) CreateCollection(_ context.Context, name string, configs ...vectorstore.VectorConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[name]; exists {
		return nil
	}

	byName := make(map[string]vectorstore.VectorConfig, len(configs))
	for _, config := range configs {
		if config.Distance == "" {
			config.Distance = vectorstore.DistanceCosine
		}
		byName[config.Name] = config
	}
	s.collections[name] = &collection{
		configs: byName,
		chunks:  []document.Chunk{},
	}
	return nil
}

// Upsert stores chunks in the collection, replacing any chunk with the same
// ID in place. Embeddings whose name matches a configured slot must have the
// configured dimensionality.
func (s *Store) Upsert(ctx context.Context, collectionName string, chunks []document.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, exists := s.collections[collectionName]
	if !exists {
		return fmt.Errorf("memstore: unknown collection %q", collectionName)
	}

	for _, chunk := range chunks {
		for _, embedding := range chunk.Embeddings {
			config, configured := coll.configs[embedding.Name]
			if configured && len(embedding.Vector) != config.Dimensions {
				return fmt.Errorf("memstore: embedding %q has %d dimensions, collection %q expects %d",
					embedding.Name, len(embedding.Vector), collectionName, config.Dimensions)
			}
		}
		coll.upsert(chunk)
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrVectorStoreProvider, providerName),
			observability.String(observability.AttrVectorStoreCollection, collectionName),
			observability.Int(observability.AttrVectorStorePoints, len(chunks)),
		)
	}
	return nil
}

func (c *collection) upsert(chunk document.Chunk) {
	for i, existing := range c.chunks {
		if existing.ID == chunk.ID {
			c.chunks[i] = chunk
			return
		}
	}
	c.chunks = append(c.chunks, chunk)
}

// Search scans the whole collection and returns up to k chunks whose vector
// in the named slot scores highest against the query vector. Chunks without
// an embedding in that slot are skipped.
func (s *Store) Search(ctx context.Context, collectionName string, vectorName string, vector []float32, k int) ([]vectorstore.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, exists := s.collections[collectionName]
	if !exists {
		return nil, fmt.Errorf("memstore: unknown collection %q", collectionName)
	}

	config, configured := coll.configs[vectorName]
	if !configured {
		return nil, fmt.Errorf("memstore: collection %q has no vector slot %q", collectionName, vectorName)
	}
	if len(vector) != config.Dimensions {
		return nil, fmt.Errorf("memstore: query vector has %d dimensions, slot %q expects %d",
			len(vector), vectorName, config.Dimensions)
	}

	if k <= 0 {
		return []vectorstore.SearchResult{}, nil
	}

	results := make([]vectorstore.SearchResult, 0, len(coll.chunks))
	for _, chunk := range coll.chunks {
		candidate := chunk.Vector(vectorName)
		if candidate == nil {
			continue
		}
		results = append(results, vectorstore.SearchResult{
			Chunk: chunk,
			Score: score(config.Distance, vector, candidate),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k < len(results) {
		results = results[:k]
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrVectorStoreProvider, providerName),
			observability.String(observability.AttrVectorStoreCollection, collectionName),
			observability.Int(observability.AttrVectorStorePoints, len(results)),
		)
	}
	return results, nil
}

// score computes the similarity between two equal-length vectors under the
// given distance. Euclidean distances are negated so that a descending sort
// ranks all three distances consistently.
func score(distance vectorstore.Distance, a, b []float32) float32 {
	switch distance {
	case vectorstore.DistanceDot:
		return float32(dot(a, b))
	case vectorstore.DistanceEuclid:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return float32(-math.Sqrt(sum))
	default: // cosine
		normA := math.Sqrt(dot(a, a))
		normB := math.Sqrt(dot(b, b))
		if normA == 0 || normB == 0 {
			return 0
		}
		return float32(dot(a, b) / (normA * normB))
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
