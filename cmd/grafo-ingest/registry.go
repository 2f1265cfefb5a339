package main

import (
	"github.com/grafo-ai/grafo/modules/splitter"
	"github.com/grafo-ai/grafo/pipeline"
	"github.com/grafo-ai/grafo/providers/embedder"
	openaiembedder "github.com/grafo-ai/grafo/providers/embedder/openai"
	"github.com/grafo-ai/grafo/providers/vectorstore"
	"github.com/grafo-ai/grafo/providers/vectorstore/memstore"
	"github.com/grafo-ai/grafo/providers/vectorstore/qdrant"
)

// defaultRegistry wires the component types a YAML pipeline may reference:
// the text splitter and the OpenAI chunk embedder as modules, memstore and
// qdrant as vector stores.
func defaultRegistry() *pipeline.Registry {
	return pipeline.NewRegistry().
		RegisterModule("text_splitter", buildTextSplitter).
		RegisterModule("openai_embedder", buildOpenAIEmbedder).
		RegisterStore("memstore", buildMemStore).
		RegisterStore("qdrant", buildQdrantStore)
}

type textSplitterParams struct {
	MaxChar         int    `mapstructure:"max_char"`
	Overlap         int    `mapstructure:"overlap"`
	Level           string `mapstructure:"level"`
	MinOverlapWords int    `mapstructure:"min_overlap_words"`
}

func buildTextSplitter(params map[string]any) (pipeline.Runner, error) {
	var config textSplitterParams
	if err := pipeline.DecodeParams(params, &config); err != nil {
		return nil, err
	}

	var opts []splitter.Option
	if config.MaxChar > 0 {
		opts = append(opts, splitter.WithMaxChar(config.MaxChar))
	}
	if config.Overlap > 0 {
		opts = append(opts, splitter.WithOverlap(config.Overlap))
	}
	if config.Level != "" {
		opts = append(opts, splitter.WithLevel(splitter.Level(config.Level)))
	}
	if config.MinOverlapWords > 0 {
		opts = append(opts, splitter.WithMinOverlapWords(config.MinOverlapWords))
	}
	return splitter.New(opts...)
}

type openAIEmbedderParams struct {
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
	BaseURL    string `mapstructure:"base_url"`
	VectorName string `mapstructure:"vector_name"`
}

func buildOpenAIEmbedder(params map[string]any) (pipeline.Runner, error) {
	var config openAIEmbedderParams
	if err := pipeline.DecodeParams(params, &config); err != nil {
		return nil, err
	}

	provider := openaiembedder.New()
	if config.Model != "" {
		provider.WithModel(config.Model)
	}
	if config.Dimensions > 0 {
		provider.WithDimensions(config.Dimensions)
	}
	if config.BaseURL != "" {
		provider.WithBaseURL(config.BaseURL)
	}
	return embedder.NewChunkEmbedder(provider, config.VectorName), nil
}

func buildMemStore(map[string]any) (vectorstore.Store, error) {
	return memstore.New(), nil
}

type qdrantParams struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

func buildQdrantStore(params map[string]any) (vectorstore.Store, error) {
	var config qdrantParams
	if err := pipeline.DecodeParams(params, &config); err != nil {
		return nil, err
	}

	store := qdrant.New()
	if config.URL != "" {
		store.WithBaseURL(config.URL)
	}
	if config.APIKey != "" {
		store.WithAPIKey(config.APIKey)
	}
	return store, nil
}
