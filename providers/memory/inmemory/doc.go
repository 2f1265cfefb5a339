// Package inmemory stores chat history in process memory. It implements
// [github.com/grafo-ai/grafo/providers/memory.Provider] over a mutex-guarded
// slice and forgets everything when the process exits; use redismemory when
// conversations must survive restarts.
package inmemory
