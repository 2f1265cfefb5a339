// Package document holds the shared content types that flow through ingestion
// pipelines: text chunks and the embeddings attached to them.
package document

import "github.com/google/uuid"

// Chunk is a piece of text produced by a splitter and carried through an
// ingestion pipeline. Metadata travels with the chunk into vector stores as
// payload.
type Chunk struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Embeddings []Embedding       `json:"embeddings,omitempty"`
}

// Embedding is a named dense vector computed for a chunk. The name identifies
// the model or field that produced it, so a chunk can carry several vectors
// side by side.
type Embedding struct {
	Name   string    `json:"name"`
	Vector []float32 `json:"vector"`
}

// NewChunk creates a chunk with a random UUID and the given text.
func NewChunk(text string) Chunk {
	return Chunk{
		ID:   uuid.NewString(),
		Text: text,
	}
}

// WithMetadata returns a copy of the chunk with the given metadata merged in.
// Existing keys are overwritten; the original chunk is not modified.
func (c Chunk) WithMetadata(metadata map[string]string) Chunk {
	if len(metadata) == 0 {
		return c
	}
	merged := make(map[string]string, len(c.Metadata)+len(metadata))
	for key, value := range c.Metadata {
		merged[key] = value
	}
	for key, value := range metadata {
		merged[key] = value
	}
	c.Metadata = merged
	return c
}

// WithEmbedding returns a copy of the chunk with the embedding appended.
func (c Chunk) WithEmbedding(embedding Embedding) Chunk {
	embeddings := make([]Embedding, 0, len(c.Embeddings)+1)
	embeddings = append(embeddings, c.Embeddings...)
	embeddings = append(embeddings, embedding)
	c.Embeddings = embeddings
	return c
}

// Vector returns the vector of the embedding with the given name, or nil if
// the chunk does not carry one.
func (c Chunk) Vector(name string) []float32 {
	for _, embedding := range c.Embeddings {
		if embedding.Name == name {
			return embedding.Vector
		}
	}
	return nil
}
