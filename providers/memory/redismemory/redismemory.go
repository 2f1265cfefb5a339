package redismemory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grafo-ai/grafo/providers/ai"
	"github.com/grafo-ai/grafo/providers/memory"
	"github.com/grafo-ai/grafo/providers/observability"
)

const (
	// defaultKeyPrefix is the leading segment of every key written by this package.
	defaultKeyPrefix = "history"

	// defaultTTL is how long stored messages live without being refreshed.
	// Idle conversations expire on their own instead of accumulating forever.
	defaultTTL = time.Hour
)

// RedisMemory implements [memory.Provider] with Redis persistence.
// Each instance is scoped to a single user and session pair; all keys share
// the prefix "history:{user}:{session}". Messages are stored one per key as
// JSON, indexed by a monotonically increasing counter held at
// "history:{user}:{session}:next_index". Individual messages carry a TTL,
// so reads tolerate holes left by expired entries.
//
// Thread safety is handled by the underlying go-redis client; no
// application-level mutex is needed.
type RedisMemory struct {
	client    *redis.Client
	userID    string
	sessionID string
	keyPrefix string
	ttl       time.Duration
}

// Compile-time check: RedisMemory must implement memory.Provider.
var _ memory.Provider = (*RedisMemory)(nil)

// Option configures optional RedisMemory behavior.
type Option func(*RedisMemory)

// WithTTL overrides the default one-hour expiration applied to each stored
// message. A zero or negative duration disables expiration entirely.
func WithTTL(ttl time.Duration) Option {
	return func(m *RedisMemory) {
		if ttl <= 0 {
			ttl = 0
		}
		m.ttl = ttl
	}
}

// WithKeyPrefix overrides the default "history" key prefix. Useful when
// several applications share one Redis database.
func WithKeyPrefix(prefix string) Option {
	return func(m *RedisMemory) {
		if prefix != "" {
			m.keyPrefix = prefix
		}
	}
}

// New creates a Redis-backed memory provider for the given user and session.
// The client parameter must be a connected go-redis client (the caller owns
// its lifecycle). The userID and sessionID scope all reads and writes to a
// single conversation thread.
func New(client *redis.Client, userID, sessionID string, opts ...Option) *RedisMemory {
	redisMemory := &RedisMemory{
		client:    client,
		userID:    userID,
		sessionID: sessionID,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultTTL,
	}
	for _, opt := range opts {
		opt(redisMemory)
	}
	return redisMemory
}

// sessionPrefix returns "history:{user}:{session}".
func (m *RedisMemory) sessionPrefix() string {
	return fmt.Sprintf("%s:%s:%s", m.keyPrefix, m.userID, m.sessionID)
}

// entryKey returns the key holding the message stored at index.
func (m *RedisMemory) entryKey(index int64) string {
	return fmt.Sprintf("%s:%d", m.sessionPrefix(), index)
}

// counterKey returns the key holding the highest allocated message index.
func (m *RedisMemory) counterKey() string {
	return m.sessionPrefix() + ":next_index"
}

// lastIndex reads the index counter. A missing counter means an empty history.
func (m *RedisMemory) lastIndex(ctx context.Context) (int64, error) {
	val, err := m.client.Get(ctx, m.counterKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redismemory: read index counter: %w", err)
	}
	index, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redismemory: parse index counter: %w", err)
	}
	return index, nil
}

// AppendMessage persists a message to Redis under the next free index.
// A nil message is silently ignored to match the memory.Provider contract.
// AppendMessage has no error return per the interface; failures are logged
// so they are not swallowed silently.
func (m *RedisMemory) AppendMessage(ctx context.Context, message *ai.Message) {
	if message == nil {
		return
	}

	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent(observability.EventMemoryAppend,
			observability.String(observability.AttrMemoryMessageRole, string(message.Role)),
			observability.Int(observability.AttrMemoryMessageLength, len(message.Content)),
		)
	}

	data, err := json.Marshal(message)
	if err != nil {
		slog.Error("redismemory: failed to encode message", "session_id", m.sessionID, "error", err)
		return
	}

	index, err := m.client.Incr(ctx, m.counterKey()).Result()
	if err != nil {
		slog.Error("redismemory: failed to allocate message index", "session_id", m.sessionID, "error", err)
		return
	}

	if err := m.client.Set(ctx, m.entryKey(index), data, m.ttl).Err(); err != nil {
		slog.Error("redismemory: failed to append message", "session_id", m.sessionID, "error", err)
		return
	}

	if span != nil {
		span.SetAttributes(
			observability.Int64(observability.AttrMemoryTotalMessages, index),
		)
	}
}

// Count returns the number of live messages for this session. Entries that
// expired are not counted even though their indexes remain allocated.
func (m *RedisMemory) Count(ctx context.Context) (int, error) {
	last, err := m.lastIndex(ctx)
	if err != nil {
		return 0, err
	}
	if last == 0 {
		return 0, nil
	}
	keys := make([]string, 0, last)
	for i := int64(1); i <= last; i++ {
		keys = append(keys, m.entryKey(i))
	}
	live, err := m.client.Exists(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redismemory: count: %w", err)
	}
	return int(live), nil
}

// AllMessages returns every live message in insertion order. Expired entries
// are skipped. The returned slice is always non-nil.
func (m *RedisMemory) AllMessages(ctx context.Context) ([]ai.Message, error) {
	last, err := m.lastIndex(ctx)
	if err != nil {
		return nil, err
	}
	if last == 0 {
		return []ai.Message{}, nil
	}

	keys := make([]string, 0, last)
	for i := int64(1); i <= last; i++ {
		keys = append(keys, m.entryKey(i))
	}
	values, err := m.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redismemory: fetch messages: %w", err)
	}

	messages := make([]ai.Message, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// MGet returns nil for keys that expired.
			continue
		}
		var msg ai.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("redismemory: decode message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// LastMessages returns up to the last n live messages in insertion order.
// Returns an empty, non-nil slice when n is zero or negative.
func (m *RedisMemory) LastMessages(ctx context.Context, n int) ([]ai.Message, error) {
	if n <= 0 {
		return []ai.Message{}, nil
	}
	all, err := m.AllMessages(ctx)
	if err != nil {
		return nil, err
	}
	if n > len(all) {
		n = len(all)
	}
	return all[len(all)-n:], nil
}

// PopLastMessage removes and returns the most recent live message, or nil
// when the history is empty. The index counter is rewound past the removed
// entry so a subsequent append reuses the freed slot.
func (m *RedisMemory) PopLastMessage(ctx context.Context) (*ai.Message, error) {
	last, err := m.lastIndex(ctx)
	if err != nil {
		return nil, err
	}
	for i := last; i >= 1; i-- {
		raw, err := m.client.Get(ctx, m.entryKey(i)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redismemory: pop last message: %w", err)
		}
		var msg ai.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("redismemory: decode message: %w", err)
		}
		if err := m.client.Del(ctx, m.entryKey(i)).Err(); err != nil {
			return nil, fmt.Errorf("redismemory: pop last message: %w", err)
		}
		if err := m.client.Set(ctx, m.counterKey(), i-1, 0).Err(); err != nil {
			return nil, fmt.Errorf("redismemory: rewind index counter: %w", err)
		}
		return &msg, nil
	}
	return nil, nil
}

// ClearMessages deletes every message of this session along with the index
// counter, in a single pipeline round trip. ClearMessages has no error return
// per the interface; failures are logged so they are not swallowed silently.
func (m *RedisMemory) ClearMessages(ctx context.Context) {
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent(observability.EventMemoryClear)
	}

	last, err := m.lastIndex(ctx)
	if err != nil {
		slog.Error("redismemory: failed to clear messages", "session_id", m.sessionID, "error", err)
		return
	}

	pipe := m.client.Pipeline()
	for i := int64(1); i <= last; i++ {
		pipe.Del(ctx, m.entryKey(i))
	}
	pipe.Del(ctx, m.counterKey())
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("redismemory: failed to clear messages", "session_id", m.sessionID, "error", err)
	}
}

// FilterByRole returns every live message with the given role, in insertion
// order. The returned slice is always non-nil.
func (m *RedisMemory) FilterByRole(ctx context.Context, role ai.MessageRole) ([]ai.Message, error) {
	all, err := m.AllMessages(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]ai.Message, 0, len(all))
	for _, msg := range all {
		if msg.Role == role {
			filtered = append(filtered, msg)
		}
	}
	return filtered, nil
}
