package slogobs

import (
	"os"
	"strings"
)

// Format selects the output layout for log records.
type Format string

const (
	// FormatCompact is a single-line format with JSON attributes (default).
	// Example: 2026-08-25 10:40:35  INFO node completed -> {"pipeline.node":"splitter"}
	FormatCompact Format = "compact"

	// FormatPretty is a multi-line format with one attribute per line.
	// Example:
	//  2026-08-25 10:40:35  INFO | node completed
	//    • pipeline.node = splitter
	FormatPretty Format = "pretty"

	// FormatJSON is standard single-object-per-line JSON (for log aggregation).
	// Example: {"time":"2026-08-25T10:40:35","level":"INFO","msg":"node completed"}
	FormatJSON Format = "json"
)

// ParseFormat parses a format name, case-insensitively.
// Unknown names fall back to [FormatCompact].
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "compact":
		return FormatCompact
	case "pretty":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// FormatFromEnv reads the log format from the environment. GRAFO_LOG_FORMAT
// takes priority, then LOG_FORMAT; when neither is set it returns
// [FormatCompact].
func FormatFromEnv() Format {
	if format := os.Getenv("GRAFO_LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	return FormatCompact
}

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}
