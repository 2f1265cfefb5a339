package middleware

import (
	"context"
	"time"

	"github.com/grafo-ai/grafo/core/client"
	"github.com/grafo-ai/grafo/providers/ai"
)

// NewTimeoutMiddleware creates a Middleware that enforces a per-request
// deadline on every provider call. The context is wrapped with
// context.WithTimeout and canceled once the provider returns or the deadline
// expires. If the caller's context already carries a shorter deadline, the
// shorter one wins as per normal context semantics.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
