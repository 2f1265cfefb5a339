package inmemory

import (
	"context"
	"sync"

	"github.com/grafo-ai/grafo/providers/ai"
	"github.com/grafo-ai/grafo/providers/memory"
	"github.com/grafo-ai/grafo/providers/observability"
)

// Memory is a slice-backed implementation of [memory.Provider]. It keeps the
// whole history in process memory, so it is the right store for tests,
// examples, and single-session programs that do not need persistence. All
// methods are safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	messages []ai.Message
}

// New returns an empty store ready for immediate use.
func New() *Memory {
	return &Memory{
		messages: []ai.Message{},
	}
}

var _ memory.Provider = (*Memory)(nil)

// AppendMessage stores a copy of message at the end of the history. A nil
// message is ignored. When ctx carries an observability span, the append is
// recorded as a span event together with the new history size.
func (m *Memory) AppendMessage(ctx context.Context, message *ai.Message) {
	if message == nil {
		return
	}

	m.mu.Lock()
	m.messages = append(m.messages, *message)
	total := len(m.messages)
	m.mu.Unlock()

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryAppend,
			observability.String(observability.AttrMemoryMessageRole, string(message.Role)),
			observability.Int(observability.AttrMemoryMessageLength, len(message.Content)),
		)
		span.SetAttributes(observability.Int(observability.AttrMemoryTotalMessages, total))
	}
}

// AllMessages returns the full history in insertion order. The returned
// slice is a copy, safe for the caller to mutate.
func (m *Memory) AllMessages(_ context.Context) ([]ai.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]ai.Message, len(m.messages))
	copy(history, m.messages)
	return history, nil
}

// LastMessages returns a copy of up to the last n messages in insertion
// order, the whole history when n exceeds it, and an empty slice when n is
// zero or negative.
func (m *Memory) LastMessages(_ context.Context, n int) ([]ai.Message, error) {
	if n <= 0 {
		return []ai.Message{}, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if n > len(m.messages) {
		n = len(m.messages)
	}
	tail := make([]ai.Message, n)
	copy(tail, m.messages[len(m.messages)-n:])
	return tail, nil
}

// PopLastMessage removes and returns the most recent message, or nil when
// the history is empty.
func (m *Memory) PopLastMessage(_ context.Context) (*ai.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.messages) == 0 {
		return nil, nil
	}
	last := m.messages[len(m.messages)-1]
	m.messages = m.messages[:len(m.messages)-1]
	return &last, nil
}

// Count returns the number of stored messages.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages), nil
}

// ClearMessages empties the history. The backing slice keeps its capacity
// for reuse. When ctx carries an observability span, the wipe is recorded as
// a span event.
func (m *Memory) ClearMessages(ctx context.Context) {
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryClear)
	}

	m.mu.Lock()
	m.messages = m.messages[:0]
	m.mu.Unlock()
}

// FilterByRole returns a copy of every message with the given role, in
// insertion order.
func (m *Memory) FilterByRole(_ context.Context, role ai.MessageRole) ([]ai.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matching := make([]ai.Message, 0)
	for _, message := range m.messages {
		if message.Role == role {
			matching = append(matching, message)
		}
	}
	return matching, nil
}
