package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/grafo-ai/grafo/providers/observability"
)

// Observer implements [observability.Provider] on top of the standard library
// slog package. Spans and metrics are rendered as structured log records, so
// a single Observer gives lightweight tracing, metrics, and logging without
// any external collector.
type Observer struct {
	logger  *slog.Logger
	metrics *metricsStore
}

// New creates a slog-backed observer. With no options, the format and level
// come from the environment (GRAFO_LOG_FORMAT, GRAFO_LOG_LEVEL), defaulting
// to compact output at INFO level.
//
// Example usage:
//
//	// Environment-driven defaults
//	observer := slogobs.New()
//
//	// Explicit configuration
//	observer := slogobs.New(
//	    slogobs.WithFormat(slogobs.FormatPretty),
//	    slogobs.WithLevel(slog.LevelDebug),
//	)
//
//	// Reuse an existing logger
//	observer := slogobs.New(slogobs.WithLogger(slog.Default()))
func New(opts ...Option) *Observer {
	cfg := applyOptions(opts...)

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(NewHandler(&HandlerOptions{
			Format: cfg.format,
			Level:  cfg.level,
			Output: cfg.output,
			Colors: cfg.colors,
		}))
	}

	return &Observer{
		logger:  logger,
		metrics: newMetricsStore(),
	}
}

var _ observability.Provider = (*Observer)(nil)

// --- TRACING ---

// StartSpan begins a named span and logs its start at debug level. The
// returned context is unchanged; callers that want downstream code to see the
// span attach it with [observability.ContextWithSpan].
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &logSpan{
		name:      name,
		startTime: time.Now(),
		logger:    o.logger,
		attrs:     attrs,
	}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "Span started", span.logAttrs("span.start", nil)...)
	return ctx, span
}

// logSpan renders span lifecycle events as log records.
type logSpan struct {
	name      string
	startTime time.Time
	logger    *slog.Logger

	mu    sync.Mutex
	attrs []observability.Attribute
}

// End logs the span completion with its elapsed time and accumulated
// attributes, at debug level to keep normal runs quiet.
func (s *logSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	extra := []slog.Attr{slog.Duration("duration", time.Since(s.startTime))}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "Span ended", s.logAttrs("span.end", extra)...)
}

// SetAttributes appends attributes to the span.
func (s *logSpan) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

// SetStatus records the span's final status as attributes.
func (s *logSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := "unset"
	switch code {
	case observability.StatusOK:
		status = "ok"
	case observability.StatusError:
		status = "error"
	}

	s.attrs = append(s.attrs, observability.String(observability.AttrStatus, status))
	if description != "" {
		s.attrs = append(s.attrs, observability.String(observability.AttrStatusDescription, description))
	}
}

// RecordError attaches err to the span and logs it at error level.
func (s *logSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attrs = append(s.attrs, observability.Error(err))
	s.logger.LogAttrs(context.Background(), slog.LevelError, "Span error",
		slog.String("span", s.name),
		slog.String("event", "error"),
		slog.String("error", err.Error()),
	)
}

// AddEvent logs a named point-in-time event on the span at debug level.
func (s *logSpan) AddEvent(name string, attrs ...observability.Attribute) {
	logAttrs := []slog.Attr{
		slog.String("span", s.name),
		slog.String("event", name),
	}
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "Span event", logAttrs...)
}

// logAttrs builds the record attributes for a span lifecycle event.
// Callers must hold s.mu.
func (s *logSpan) logAttrs(event string, extra []slog.Attr) []slog.Attr {
	logAttrs := make([]slog.Attr, 0, 2+len(extra)+len(s.attrs))
	logAttrs = append(logAttrs, slog.String("span", s.name), slog.String("event", event))
	logAttrs = append(logAttrs, extra...)
	for _, attr := range s.attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	return logAttrs
}

// --- METRICS ---

// Counter returns the named counter backed by the in-memory metrics store.
// Repeated calls with the same name return the same instance, so callers can
// fetch it on every use without caching. Each Add emits a debug record with
// the delta and the cumulative value.
func (o *Observer) Counter(name string) observability.Counter {
	return o.metrics.counter(name, o.logger)
}

// Histogram returns the named histogram backed by the in-memory metrics
// store. Each Record emits a debug record with the observed value.
func (o *Observer) Histogram(name string) observability.Histogram {
	return o.metrics.histogram(name, o.logger)
}

// metricsStore holds named instruments (thread-safe).
type metricsStore struct {
	mu         sync.Mutex
	counters   map[string]*logCounter
	histograms map[string]*logHistogram
}

func newMetricsStore() *metricsStore {
	return &metricsStore{
		counters:   make(map[string]*logCounter),
		histograms: make(map[string]*logHistogram),
	}
}

func (m *metricsStore) counter(name string, logger *slog.Logger) *logCounter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if counter, exists := m.counters[name]; exists {
		return counter
	}
	counter := &logCounter{name: name, logger: logger}
	m.counters[name] = counter
	return counter
}

func (m *metricsStore) histogram(name string, logger *slog.Logger) *logHistogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if histogram, exists := m.histograms[name]; exists {
		return histogram
	}
	histogram := &logHistogram{name: name, logger: logger}
	m.histograms[name] = histogram
	return histogram
}

type logCounter struct {
	name   string
	logger *slog.Logger
	mu     sync.Mutex
	value  int64
}

// Add increments the counter and logs the updated total at debug level.
// It implements [observability.Counter].
func (c *logCounter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.mu.Lock()
	c.value += value
	current := c.value
	c.mu.Unlock()

	logAttrs := []slog.Attr{
		slog.String("metric", c.name),
		slog.String("type", "counter"),
		slog.Int64("value", current),
		slog.Int64("delta", value),
	}
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "Counter", logAttrs...)
}

type logHistogram struct {
	name   string
	logger *slog.Logger
}

// Record logs a histogram observation at debug level.
// It implements [observability.Histogram].
func (h *logHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	logAttrs := []slog.Attr{
		slog.String("metric", h.name),
		slog.String("type", "histogram"),
		slog.Float64("value", value),
	}
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	h.logger.LogAttrs(ctx, slog.LevelDebug, "Histogram", logAttrs...)
}

// --- LOGGING ---

// Trace logs a message below DEBUG. It is filtered out unless the level is
// explicitly set to [LevelTrace].
func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, LevelTrace, msg, attrs...)
}

// Debug logs a message at DEBUG level with optional structured attributes.
func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs...)
}

// Info logs a message at INFO level with optional structured attributes.
func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs...)
}

// Warn logs a message at WARN level with optional structured attributes.
func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs...)
}

// Error logs a message at ERROR level with optional structured attributes.
func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs...)
}

func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs ...observability.Attribute) {
	logAttrs := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	o.logger.LogAttrs(ctx, level, msg, logAttrs...)
}
