package embedder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/grafo-ai/grafo/document"
)

// mockEmbedder returns a fixed-size vector derived from each text's length.
type mockEmbedder struct {
	dimensions int
	calls      int
	err        error
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector := make([]float32, m.dimensions)
		for j := range vector {
			vector[j] = float32(len(text))
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dimensions }

var _ Embedder = (*mockEmbedder)(nil)

func TestChunkEmbedder_AttachesVectors(t *testing.T) {
	mock := &mockEmbedder{dimensions: 3}
	module := NewChunkEmbedder(mock, "small")

	chunks := []document.Chunk{
		document.NewChunk("alpha"),
		document.NewChunk("beta"),
	}

	result, err := module.Run(context.Background(), chunks)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	embedded, ok := result.([]document.Chunk)
	if !ok {
		t.Fatalf("Expected []document.Chunk, got %T", result)
	}
	if len(embedded) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(embedded))
	}
	if mock.calls != 1 {
		t.Errorf("Expected a single batched call, got %d", mock.calls)
	}

	vector := embedded[0].Vector("small")
	if len(vector) != 3 {
		t.Fatalf("Expected 3-dimensional vector, got %v", vector)
	}
	if vector[0] != 5 { // len("alpha")
		t.Errorf("Expected vector derived from text, got %v", vector)
	}

	// Source chunks must not gain embeddings.
	if len(chunks[0].Embeddings) != 0 {
		t.Error("Expected input chunks unmodified")
	}
}

func TestChunkEmbedder_DefaultName(t *testing.T) {
	module := NewChunkEmbedder(&mockEmbedder{dimensions: 2}, "")
	if module.Name() != "dense" {
		t.Errorf("Expected default name 'dense', got %q", module.Name())
	}
}

func TestChunkEmbedder_ReportsProviderDimensions(t *testing.T) {
	module := NewChunkEmbedder(&mockEmbedder{dimensions: 1536}, "dense")
	if module.Dimensions() != 1536 {
		t.Errorf("Expected provider dimensions 1536, got %d", module.Dimensions())
	}
}

func TestChunkEmbedder_WrongInputType(t *testing.T) {
	module := NewChunkEmbedder(&mockEmbedder{dimensions: 2}, "dense")

	_, err := module.Run(context.Background(), "not chunks")
	if err == nil {
		t.Fatal("Expected error for wrong input type")
	}
	if !strings.Contains(err.Error(), "[]document.Chunk") {
		t.Errorf("Expected type error, got %v", err)
	}
}

func TestChunkEmbedder_EmptyInput(t *testing.T) {
	mock := &mockEmbedder{dimensions: 2}
	module := NewChunkEmbedder(mock, "dense")

	result, err := module.Run(context.Background(), []document.Chunk{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if chunks := result.([]document.Chunk); len(chunks) != 0 {
		t.Errorf("Expected empty result, got %v", chunks)
	}
	if mock.calls != 0 {
		t.Errorf("Expected no provider call for empty input, got %d", mock.calls)
	}
}

func TestChunkEmbedder_ProviderError(t *testing.T) {
	module := NewChunkEmbedder(&mockEmbedder{dimensions: 2, err: errors.New("quota exceeded")}, "dense")

	_, err := module.Run(context.Background(), []document.Chunk{document.NewChunk("x")})
	if err == nil {
		t.Fatal("Expected provider error to propagate")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Expected wrapped cause, got %v", err)
	}
}
