// Package embedder defines the embedding provider interface and the chain
// module that annotates document chunks with their vectors.
package embedder

import (
	"context"
	"fmt"

	"github.com/grafo-ai/grafo/document"
)

// Embedder computes dense vectors for texts. Implementations batch the whole
// input into a single provider call where the API allows it.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the dimensionality of returned vectors.
	Dimensions() int
}

// ChunkEmbedder adapts an [Embedder] into a pipeline module: it takes
// []document.Chunk, embeds every chunk's text in one batch, and returns the
// chunks with a named embedding attached.
type ChunkEmbedder struct {
	embedder Embedder
	name     string
}

// NewChunkEmbedder creates a chunk-embedding module. name labels the
// embedding on each chunk (and is what vector stores index on); when empty it
// defaults to "dense".
func NewChunkEmbedder(embedder Embedder, name string) *ChunkEmbedder {
	if name == "" {
		name = "dense"
	}
	return &ChunkEmbedder{
		embedder: embedder,
		name:     name,
	}
}

// Name returns the label given to produced embeddings.
func (c *ChunkEmbedder) Name() string {
	return c.name
}

// Dimensions reports the dimensionality of produced embeddings, so callers
// can provision matching vector store collections.
func (c *ChunkEmbedder) Dimensions() int {
	return c.embedder.Dimensions()
}

// Run implements the pipeline module contract. input must be
// []document.Chunk; the result is a new slice with embeddings attached.
func (c *ChunkEmbedder) Run(ctx context.Context, input any) (any, error) {
	chunks, ok := input.([]document.Chunk)
	if !ok {
		return nil, fmt.Errorf("chunk embedder expects []document.Chunk, got %T", input)
	}
	if len(chunks) == 0 {
		return []document.Chunk{}, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	embedded := make([]document.Chunk, len(chunks))
	for i, chunk := range chunks {
		embedded[i] = chunk.WithEmbedding(document.Embedding{
			Name:   c.name,
			Vector: vectors[i],
		})
	}
	return embedded, nil
}
