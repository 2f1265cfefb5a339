package slogobs

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/grafo-ai/grafo/providers/observability"
)

func newTestObserver(level slog.Level) (*Observer, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	observer := New(
		WithFormat(FormatCompact),
		WithLevel(level),
		WithOutput(buffer),
		WithColors(false),
	)
	return observer, buffer
}

func TestObserver_ImplementsProvider(t *testing.T) {
	var _ observability.Provider = New(WithOutput(&bytes.Buffer{}))
}

func TestObserver_LogLevels(t *testing.T) {
	observer, buffer := newTestObserver(LevelTrace)
	ctx := context.Background()

	observer.Trace(ctx, "trace message")
	observer.Debug(ctx, "debug message")
	observer.Info(ctx, "info message")
	observer.Warn(ctx, "warn message")
	observer.Error(ctx, "error message")

	output := buffer.String()
	for _, want := range []string{"trace message", "debug message", "info message", "warn message", "error message"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got %q", want, output)
		}
	}
}

func TestObserver_SpanLifecycle(t *testing.T) {
	observer, buffer := newTestObserver(slog.LevelDebug)

	_, span := observer.StartSpan(context.Background(), "pipeline.run",
		observability.String("pipeline.node", "splitter"))
	span.AddEvent("pipeline.node.start")
	span.SetStatus(observability.StatusOK, "")
	span.End()

	output := buffer.String()
	if !strings.Contains(output, "Span started") {
		t.Errorf("Expected span start record, got %q", output)
	}
	if !strings.Contains(output, "pipeline.node.start") {
		t.Errorf("Expected span event record, got %q", output)
	}
	if !strings.Contains(output, "Span ended") {
		t.Errorf("Expected span end record, got %q", output)
	}
	if !strings.Contains(output, "duration") {
		t.Errorf("Expected duration on span end, got %q", output)
	}
}

func TestObserver_SpanRecordError(t *testing.T) {
	observer, buffer := newTestObserver(slog.LevelDebug)

	_, span := observer.StartSpan(context.Background(), "pipeline.run")
	span.RecordError(context.DeadlineExceeded)
	span.End()

	output := buffer.String()
	if !strings.Contains(output, "Span error") {
		t.Errorf("Expected span error record, got %q", output)
	}
	if !strings.Contains(output, "deadline exceeded") {
		t.Errorf("Expected error message in output, got %q", output)
	}
}

func TestObserver_CounterAccumulates(t *testing.T) {
	observer, buffer := newTestObserver(slog.LevelDebug)
	ctx := context.Background()

	counter := observer.Counter("grafo.pipeline.run.count")
	counter.Add(ctx, 1)
	counter.Add(ctx, 2)

	// Same name must return the same instance with the running total.
	observer.Counter("grafo.pipeline.run.count").Add(ctx, 3)

	output := buffer.String()
	if !strings.Contains(output, `"value":6`) {
		t.Errorf("Expected cumulative value 6 in output, got %q", output)
	}
}

func TestObserver_Histogram(t *testing.T) {
	observer, buffer := newTestObserver(slog.LevelDebug)

	observer.Histogram("grafo.pipeline.run.duration").Record(context.Background(), 12.5,
		observability.String("pipeline.node", "embedder"))

	output := buffer.String()
	if !strings.Contains(output, `"value":12.5`) {
		t.Errorf("Expected histogram value in output, got %q", output)
	}
	if !strings.Contains(output, "embedder") {
		t.Errorf("Expected attribute in output, got %q", output)
	}
}

func TestObserver_WithLoggerBypassesHandler(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buffer, &slog.HandlerOptions{Level: slog.LevelInfo}))
	observer := New(WithLogger(logger))

	observer.Info(context.Background(), "direct logger", observability.String("key", "value"))

	output := buffer.String()
	if !strings.Contains(output, "direct logger") {
		t.Errorf("Expected record through provided logger, got %q", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Expected text handler formatting, got %q", output)
	}
}
