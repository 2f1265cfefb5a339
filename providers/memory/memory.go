package memory

import (
	"context"

	"github.com/grafo-ai/grafo/providers/ai"
)

// Provider stores and retrieves the message history of a chat session.
//
// Append and clear operations do not return errors: the client treats history
// bookkeeping as best-effort, and persistent implementations are expected to
// log failures instead of interrupting the conversation. Read operations do
// return errors so that backend failures are visible to callers.
type Provider interface {
	// AppendMessage stores a copy of message at the end of the history.
	// Implementations must treat a nil message as a no-op.
	AppendMessage(ctx context.Context, message *ai.Message)

	// AllMessages returns every stored message in insertion order.
	// The returned slice is always non-nil and safe to mutate.
	AllMessages(ctx context.Context) ([]ai.Message, error)

	// LastMessages returns up to the last n messages in insertion order.
	// It returns an empty, non-nil slice when n is zero or negative.
	LastMessages(ctx context.Context, n int) ([]ai.Message, error)

	// PopLastMessage removes and returns the most recent message,
	// or nil when the history is empty.
	PopLastMessage(ctx context.Context) (*ai.Message, error)

	// Count returns the number of stored messages.
	Count(ctx context.Context) (int, error)

	// ClearMessages removes every message from the history.
	ClearMessages(ctx context.Context)

	// FilterByRole returns every stored message with the given role,
	// in insertion order. The returned slice is always non-nil.
	FilterByRole(ctx context.Context, role ai.MessageRole) ([]ai.Message, error)
}
