package client

import (
	"context"

	"github.com/grafo-ai/grafo/providers/ai"
)

// SendFunc sends a chat request to the LLM provider and returns the completed
// response. It is the unit threaded through the middleware chain.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware intercepts and optionally transforms provider requests and
// responses. Each Middleware receives the next SendFunc in the chain and
// returns a new SendFunc that wraps it. Middlewares are applied
// outermost-first: the first middleware in the slice is the outermost wrapper,
// the first to run on the way in and the last on the way out.
type Middleware func(next SendFunc) SendFunc

// buildSendChain links the middlewares around a base function that calls the
// provider directly. Middlewares are applied in reverse so that
// middlewares[0] ends up outermost.
func buildSendChain(provider ai.Provider, middlewares []Middleware) SendFunc {
	var chain SendFunc = func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return provider.SendMessage(ctx, request)
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](chain)
	}

	return chain
}
