// Package slogobs provides an [observability.Provider] implementation built
// on the standard library log/slog package. Spans, metrics, and log records
// are all rendered as structured log output in one of three formats
// (compact, pretty, JSON), configurable programmatically or via the
// GRAFO_LOG_FORMAT and GRAFO_LOG_LEVEL environment variables.
//
// It is the default choice for development and for deployments that aggregate
// logs rather than export traces.
package slogobs
