package pipeline

import (
	"context"
	"fmt"

	"github.com/grafo-ai/grafo/document"
	"github.com/grafo-ai/grafo/providers/observability"
	"github.com/grafo-ai/grafo/providers/vectorstore"
)

// Ingestion runs a module chain over raw text and upserts the resulting
// chunks into a vector store collection. The chain is expected to end in
// []document.Chunk, typically splitter then embedder.
type Ingestion struct {
	chain      *Chain
	store      vectorstore.Store
	collection string
	observer   observability.Provider
}

// NewIngestion creates an ingestion pipeline over the given modules. store
// may be nil, in which case chunks are produced and discarded; useful for
// dry runs that only exercise the chain.
func NewIngestion(modules []Runner, store vectorstore.Store, collection string) *Ingestion {
	return &Ingestion{
		chain:      NewChain(modules...),
		store:      store,
		collection: collection,
	}
}

// WithObserver attaches an observability provider to the ingestion and its
// chain. It returns the ingestion to ease wiring during setup.
func (ingestion *Ingestion) WithObserver(observer observability.Provider) *Ingestion {
	ingestion.observer = observer
	ingestion.chain.WithObserver(observer)
	return ingestion
}

// Chain returns the underlying module chain.
func (ingestion *Ingestion) Chain() *Chain {
	return ingestion.chain
}

// Store returns the vector store the ingestion writes to, nil when none is
// configured.
func (ingestion *Ingestion) Store() vectorstore.Store {
	return ingestion.store
}

// Collection returns the vector store collection the ingestion writes to.
func (ingestion *Ingestion) Collection() string {
	return ingestion.collection
}

// Run ingests input, which must be a string or a list of strings. Every
// text is threaded through the module chain, tagged with metadata, and the
// collected chunks are upserted into the collection in one batch. An empty
// list is a no-op.
func (ingestion *Ingestion) Run(ctx context.Context, input any, metadata map[string]string) error {
	texts, err := ingestTexts(input)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return nil
	}

	ctx, span := ingestion.runStarted(ctx, len(texts))

	var chunks []document.Chunk
	for index, text := range texts {
		result, err := ingestion.chain.Run(ctx, text)
		if err != nil {
			wrapped := fmt.Errorf("ingest text %d: %w", index, err)
			ingestion.runFailed(ctx, span, wrapped)
			return wrapped
		}

		textChunks, ok := result.([]document.Chunk)
		if !ok {
			wrapped := fmt.Errorf("ingestion chain produced %T, expected []document.Chunk", result)
			ingestion.runFailed(ctx, span, wrapped)
			return wrapped
		}

		for _, chunk := range textChunks {
			chunks = append(chunks, chunk.WithMetadata(metadata))
		}
	}

	if ingestion.store != nil && len(chunks) > 0 {
		if err := ingestion.store.Upsert(ctx, ingestion.collection, chunks); err != nil {
			wrapped := fmt.Errorf("upsert %d chunks into %q: %w", len(chunks), ingestion.collection, err)
			ingestion.runFailed(ctx, span, wrapped)
			return wrapped
		}
	}

	ingestion.runCompleted(ctx, span, len(chunks))
	return nil
}

// ingestTexts normalizes the ingestion input: a single string, a []string,
// or a []any whose elements must all be strings.
func ingestTexts(input any) ([]string, error) {
	switch typed := input.(type) {
	case string:
		return []string{typed}, nil
	case []string:
		return typed, nil
	case []any:
		texts := make([]string, len(typed))
		for index, element := range typed {
			text, ok := element.(string)
			if !ok {
				return nil, fmt.Errorf("ingestion input elements must be strings, element %d is %T", index, element)
			}
			texts[index] = text
		}
		return texts, nil
	default:
		return nil, fmt.Errorf("ingestion input must be a string or a list of strings, got %T", input)
	}
}

func (ingestion *Ingestion) runStarted(ctx context.Context, textCount int) (context.Context, observability.Span) {
	if ingestion.observer == nil {
		return ctx, nil
	}

	ctx, span := ingestion.observer.StartSpan(ctx, observability.SpanIngestionRun,
		observability.String(observability.AttrPipelineCollection, ingestion.collection),
		observability.Int("ingestion.texts", textCount),
	)
	ctx = observability.ContextWithObserver(ctx, ingestion.observer)
	ctx = observability.ContextWithSpan(ctx, span)
	return ctx, span
}

func (ingestion *Ingestion) runFailed(ctx context.Context, span observability.Span, runErr error) {
	if ingestion.observer == nil {
		return
	}

	ingestion.observer.Error(ctx, "ingestion failed",
		observability.String(observability.AttrPipelineCollection, ingestion.collection),
		observability.Error(runErr),
	)
	if span != nil {
		span.RecordError(runErr)
		span.SetStatus(observability.StatusError, "ingestion failed")
		span.End()
	}
}

func (ingestion *Ingestion) runCompleted(ctx context.Context, span observability.Span, chunkCount int) {
	if ingestion.observer == nil {
		return
	}

	ingestion.observer.Info(ctx, "ingestion completed",
		observability.String(observability.AttrPipelineCollection, ingestion.collection),
		observability.Int(observability.AttrVectorStorePoints, chunkCount),
	)
	if span != nil {
		span.SetAttributes(observability.Int(observability.AttrVectorStorePoints, chunkCount))
		span.SetStatus(observability.StatusOK, "ingestion completed")
		span.End()
	}
}
