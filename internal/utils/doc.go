// Package utils contains small internal helpers shared across providers:
// a generic JSON-over-HTTP request helper with observability events, pointer
// and JSON-string conveniences, and string truncation for log output.
package utils
