// Package redismemory provides a Redis-backed implementation of the
// [memory.Provider] interface, so chat histories survive process restarts and
// can be shared between replicas. Each message is stored as a JSON value under
// "history:{user}:{session}:{index}" with a configurable TTL (one hour by
// default); a companion ":next_index" counter allocates indexes via INCR.
//
// The main entry point is [New], which wraps an existing go-redis client:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	history := redismemory.New(client, "user-42", "session-1")
package redismemory
