package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/grafo-ai/grafo/core/cost"
	"github.com/grafo-ai/grafo/core/parse"
	"github.com/grafo-ai/grafo/internal/jsonschema"
	"github.com/grafo-ai/grafo/providers/ai"
	"github.com/grafo-ai/grafo/providers/observability"
)

// Tool binds a name and description to a strongly-typed Go function. JSON
// schemas for the input type I and output type O are derived via reflection,
// so the model sees the exact shape the function accepts.
// Use [New] to construct a Tool; implement [GenericTool] for provider-agnostic usage.
type Tool[I, O any] struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Output      *jsonschema.Schema
	Function    func(ctx context.Context, input I) (O, error)
	// ExecutionCost carries optional per-call cost and quality metadata.
	ExecutionCost *cost.ToolCost
}

// GenericTool is the provider-agnostic interface for all tools.
// It abstracts over the concrete generic type parameters of [Tool] so that tools
// can be stored, dispatched, and introspected without knowing their exact
// input and output types.
type GenericTool interface {
	// ToolInfo returns the metadata (name, description, parameter schema)
	// used to advertise this tool to an AI provider.
	ToolInfo() ai.ToolDescription

	// Call invokes the tool with a JSON-encoded input string and returns a
	// JSON-encoded output string. Returns an error if parsing or execution fails.
	Call(ctx context.Context, inputJSON string) (string, error)

	// Cost returns the per-call cost and quality metadata for this tool, or
	// nil when none was configured.
	Cost() *cost.ToolCost
}

// Option configures a tool created via [New].
type Option func(*options)

type options struct {
	description   string
	executionCost *cost.ToolCost
}

// WithDescription sets a human-readable description for the tool.
// Providers surface this description to the language model to help it decide
// when and how to invoke the tool.
func WithDescription(description string) Option {
	return func(o *options) {
		o.description = description
	}
}

// WithCost attaches per-call cost and quality metadata to the tool. Clients
// record it into the conversation overview on every execution and can surface
// it to the model for cost-aware tool selection.
func WithCost(toolCost cost.ToolCost) Option {
	return func(o *options) {
		o.executionCost = &toolCost
	}
}

// New constructs a [Tool] with the given name and handler function. It
// returns an error when a JSON schema cannot be derived for I or O, which
// happens for types with no JSON representation such as channels or funcs.
//
// Example:
//
//	weatherTool, err := tool.New("weather", getWeather,
//	    tool.WithDescription("Returns the current weather for a city."),
//	)
func New[I, O any](name string, function func(ctx context.Context, input I) (O, error), opts ...Option) (*Tool[I, O], error) {
	var config options
	for _, opt := range opts {
		opt(&config)
	}

	parameters, err := jsonschema.For[I]()
	if err != nil {
		return nil, err
	}
	output, err := jsonschema.For[O]()
	if err != nil {
		return nil, err
	}

	return &Tool[I, O]{
		Name:          name,
		Description:   config.description,
		Parameters:    parameters,
		Output:        output,
		Function:      function,
		ExecutionCost: config.executionCost,
	}, nil
}

// ToolInfo returns the [ai.ToolDescription] used to advertise this tool to a provider.
func (t *Tool[I, O]) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Cost returns the metadata configured with [WithCost], or nil.
func (t *Tool[I, O]) Cost() *cost.ToolCost {
	return t.ExecutionCost
}

// Call invokes the tool's underlying function with the given JSON-encoded input.
// It deserializes inputJSON into the tool's input type I, executes the function,
// and returns the result serialized as JSON. Observability span events are emitted
// at the start and end of execution when a span is present in ctx.
// Returns an error if JSON parsing, function execution, or output marshaling fails.
func (t *Tool[I, O]) Call(ctx context.Context, inputJSON string) (string, error) {
	span := observability.SpanFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventToolExecutionStart,
			observability.String(observability.AttrToolName, t.Name),
			observability.String(observability.AttrToolInput, observability.TruncateString(inputJSON, observability.DefaultMaxStringLength)),
		)
		defer span.AddEvent(observability.EventToolExecutionEnd)
	}

	start := time.Now()

	// The model-supplied input is parsed leniently: malformed JSON goes
	// through repair before the call fails.
	parsedInput, err := parse.As[I](inputJSON)
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetAttributes(
				observability.String(observability.AttrToolError, err.Error()),
			)
		}
		return "", err
	}

	output, err := t.Function(ctx, parsedInput)
	duration := time.Since(start)

	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetAttributes(
				observability.String(observability.AttrToolError, err.Error()),
				observability.Duration(observability.AttrToolDuration, duration),
			)
		}
		return "", err
	}

	outputBytes, err := json.Marshal(output)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		return "", err
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrToolOutput, observability.TruncateString(string(outputBytes), observability.DefaultMaxStringLength)),
			observability.Duration(observability.AttrToolDuration, duration),
		)
	}

	return string(outputBytes), nil
}
