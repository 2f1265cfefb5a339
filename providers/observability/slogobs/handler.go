package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// Handler is a slog.Handler that renders records in one of the three
// [Format] layouts. A single mutex serializes writes, so one Handler can
// safely back multiple loggers.
type Handler struct {
	format Format
	level  slog.Level
	output io.Writer
	colors bool
	attrs  []slog.Attr
	groups []string

	mu *sync.Mutex
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Format selects the output layout; defaults to FormatCompact.
	Format Format
	// Level is the minimum level to emit.
	Level slog.Level
	// Output is where records are written; defaults to os.Stdout.
	Output io.Writer
	// Colors enables ANSI color codes for the compact and pretty formats.
	Colors bool
}

// NewHandler creates a Handler with the given options. When Colors is false
// and the output is a terminal, colors are enabled automatically for the
// non-JSON formats.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Format == "" {
		opts.Format = FormatCompact
	}

	colors := opts.Colors
	if !colors && opts.Format != FormatJSON {
		if f, ok := opts.Output.(*os.File); ok {
			colors = isTerminal(f)
		}
	}

	return &Handler{
		format: opts.Format,
		level:  opts.Level,
		output: opts.Output,
		colors: colors,
		mu:     &sync.Mutex{},
	}
}

var _ slog.Handler = (*Handler)(nil)

// Enabled reports whether records at the given level are emitted.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle renders and writes a single record.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.format {
	case FormatPretty:
		return h.handlePretty(record)
	case FormatJSON:
		return h.handleJSON(record)
	default:
		return h.handleCompact(record)
	}
}

// WithAttrs returns a Handler that prepends the given attributes to every
// record. The write mutex is shared with the parent.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a Handler that prefixes attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

// handleCompact writes a single line:
// "2026-08-25 10:40:35  INFO message -> {"key":"value"}"
func (h *Handler) handleCompact(record slog.Record) error {
	buf := make([]byte, 0, 256)

	buf = append(buf, record.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	buf = h.appendLevel(buf, record.Level, 5)
	buf = append(buf, ' ')
	buf = append(buf, record.Message...)

	attrs := h.collectAttrs(record)
	if len(attrs) > 0 {
		buf = append(buf, " -> "...)
		encoded, err := json.Marshal(attrs)
		if err != nil {
			buf = append(buf, "[unencodable attrs]"...)
		} else {
			buf = append(buf, encoded...)
		}
	}

	buf = append(buf, '\n')
	_, err := h.output.Write(buf)
	return err
}

// handlePretty writes the message line followed by one bullet per attribute:
// "2026-08-25 10:40:35  INFO | message\n  • key = value"
func (h *Handler) handlePretty(record slog.Record) error {
	buf := make([]byte, 0, 256)

	buf = append(buf, record.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	buf = h.appendLevel(buf, record.Level, 5)
	buf = append(buf, " | "...)
	buf = append(buf, record.Message...)
	buf = append(buf, '\n')

	attrs := h.collectAttrs(record)
	for _, key := range sortedKeys(attrs) {
		buf = append(buf, "  • "...)
		buf = append(buf, key...)
		buf = append(buf, " = "...)
		buf = append(buf, fmt.Sprintf("%v", attrs[key])...)
		buf = append(buf, '\n')
	}

	_, err := h.output.Write(buf)
	return err
}

// handleJSON writes one JSON object per record with time, level, and msg
// fields; attributes are merged at the top level.
func (h *Handler) handleJSON(record slog.Record) error {
	data := map[string]any{
		"time":  record.Time.Format("2006-01-02T15:04:05"),
		"level": levelString(record.Level),
		"msg":   record.Message,
	}
	for key, value := range h.collectAttrs(record) {
		data[key] = value
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')
	_, err = h.output.Write(encoded)
	return err
}

func (h *Handler) appendLevel(buf []byte, level slog.Level, width int) []byte {
	name := fmt.Sprintf("%*s", width, levelString(level))
	if h.colors {
		buf = append(buf, colorForLevel(level)...)
		buf = append(buf, name...)
		buf = append(buf, colorReset...)
		return buf
	}
	return append(buf, name...)
}

// collectAttrs merges the handler's stored attributes with the record's into
// a flat map, applying any group prefixes.
func (h *Handler) collectAttrs(record slog.Record) map[string]any {
	attrs := make(map[string]any, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		h.addAttr(attrs, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.addAttr(attrs, attr)
		return true
	})
	return attrs
}

func (h *Handler) addAttr(attrs map[string]any, attr slog.Attr) {
	key := attr.Key
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}
	attrs[key] = attr.Value.Resolve().Any()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// isTerminal reports whether f is attached to a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray // TRACE
	case level < slog.LevelInfo:
		return colorBlue // DEBUG
	case level < slog.LevelWarn:
		return colorGreen // INFO
	case level < slog.LevelError:
		return colorYellow // WARN
	default:
		return colorRed // ERROR
	}
}
