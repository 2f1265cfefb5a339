// Package observability defines the core interfaces and semantic conventions
// used for tracing, metrics collection, and structured logging throughout the
// grafo library.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics],
// and [Logger] into a single injectable dependency. Components accept a
// Provider at construction time and treat a nil value as "observability
// disabled". An active [Provider] and [Span] can also be propagated through a
// [context.Context] with [ContextWithObserver] and [ContextWithSpan], and
// retrieved with [ObserverFromContext] and [SpanFromContext]; leaf code such
// as HTTP helpers uses the span from the context to record events without
// carrying a provider of its own.
//
// The semconv.go file holds the standard attribute-key, span-name, event-name,
// and metric-name constants every component should report with.
package observability
