package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestEmbedder(handler http.HandlerFunc) (*Embedder, *httptest.Server) {
	server := httptest.NewServer(handler)
	testEmbedder := New().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).
		WithHTTPClient(server.Client())
	return testEmbedder, server
}

func TestEmbed_BatchesAndOrders(t *testing.T) {
	var captured embeddingRequest
	testEmbedder, server := newTestEmbedder(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("Expected /embeddings path, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		// Return data out of order; Embed must restore input order.
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [2.0, 2.0]},
				{"object": "embedding", "index": 0, "embedding": [1.0, 1.0]}
			],
			"usage": {"prompt_tokens": 4, "total_tokens": 4}
		}`))
	})
	defer server.Close()

	vectors, err := testEmbedder.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if captured.Model != "text-embedding-3-small" {
		t.Errorf("Expected default model in request, got %q", captured.Model)
	}
	if len(captured.Input) != 2 || captured.Input[0] != "first" {
		t.Errorf("Expected batched input, got %v", captured.Input)
	}

	if len(vectors) != 2 {
		t.Fatalf("Expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 1.0 || vectors[1][0] != 2.0 {
		t.Errorf("Expected vectors in input order, got %v", vectors)
	}
}

func TestEmbed_EmptyInput(t *testing.T) {
	testEmbedder := New().WithAPIKey("test-key")

	vectors, err := testEmbedder.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("Expected empty result, got %v", vectors)
	}
}

func TestEmbed_MissingAPIKey(t *testing.T) {
	testEmbedder := &Embedder{client: &http.Client{}}

	_, err := testEmbedder.Embed(context.Background(), []string{"x"})
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "API key") {
		t.Errorf("Expected API key error, got %v", err)
	}
}

func TestEmbed_CountMismatch(t *testing.T) {
	testEmbedder, server := newTestEmbedder(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"object": "list", "data": [], "model": "text-embedding-3-small"}`))
	})
	defer server.Close()

	_, err := testEmbedder.Embed(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("Expected error for missing embeddings")
	}
	if !strings.Contains(err.Error(), "expected 2 embeddings") {
		t.Errorf("Expected count mismatch error, got %v", err)
	}
}

func TestWithModel_KnownDimensions(t *testing.T) {
	testEmbedder := New().WithModel("text-embedding-3-large")
	if testEmbedder.Dimensions() != 3072 {
		t.Errorf("Expected 3072 dimensions, got %d", testEmbedder.Dimensions())
	}
}

func TestWithDimensions_SentForReducedSize(t *testing.T) {
	var captured embeddingRequest
	testEmbedder, server := newTestEmbedder(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.1]}]
		}`))
	})
	defer server.Close()

	_, err := testEmbedder.WithDimensions(256).Embed(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if captured.Dimensions != 256 {
		t.Errorf("Expected reduced dimensions in request, got %d", captured.Dimensions)
	}
}

func TestWithDimensions_NativeSizeOmitted(t *testing.T) {
	var rawBody map[string]any
	testEmbedder, server := newTestEmbedder(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&rawBody); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.1]}]
		}`))
	})
	defer server.Close()

	_, err := testEmbedder.Embed(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, present := rawBody["dimensions"]; present {
		t.Error("Expected native dimensions to be omitted from request")
	}
}
