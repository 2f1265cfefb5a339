// Package vectorstore defines the Store interface for persisting and searching
// embedded document chunks. Implementations wrap a concrete backend; the
// toolkit ships an in-process store for tests and small corpora
// ([github.com/grafo-ai/grafo/providers/vectorstore/memstore]) and a Qdrant
// REST adapter ([github.com/grafo-ai/grafo/providers/vectorstore/qdrant]).
package vectorstore

import (
	"context"

	"github.com/grafo-ai/grafo/document"
)

// Distance selects the similarity function a collection is searched with.
// The values match the Qdrant REST API spelling so adapters can pass them
// through verbatim.
type Distance string

const (
	DistanceCosine Distance = "Cosine"
	DistanceEuclid Distance = "Euclid"
	DistanceDot    Distance = "Dot"
)

// VectorConfig describes one named vector slot of a collection. Name pairs
// the slot with [document.Embedding.Name], so a chunk carrying several
// embeddings (dense, sparse, per-model) lands each in its own slot.
type VectorConfig struct {
	Name       string
	Dimensions int
	Distance   Distance
}

// SearchResult is a chunk returned by a similarity search together with its
// score. Higher scores mean closer matches for cosine and dot distance;
// Euclidean scores are negated distances so the ordering stays descending.
type SearchResult struct {
	Chunk document.Chunk
	Score float32
}

// Store persists embedded chunks into named collections and retrieves the
// nearest ones by vector similarity.
type Store interface {
	// CreateCollection provisions a collection with one vector slot per
	// config. Creating a collection that already exists is a no-op.
	CreateCollection(ctx context.Context, name string, configs ...VectorConfig) error

	// Upsert writes chunks into the collection, replacing any chunk already
	// stored under the same ID.
	Upsert(ctx context.Context, collection string, chunks []document.Chunk) error

	// Search returns up to k chunks whose vector in the named slot is
	// closest to the query vector, best match first.
	Search(ctx context.Context, collection string, vectorName string, vector []float32, k int) ([]SearchResult, error)
}
