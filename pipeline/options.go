package pipeline

import "github.com/grafo-ai/grafo/providers/observability"

// DefaultMaxSteps is the step budget applied when WithMaxSteps is not used.
const DefaultMaxSteps = 1000

// Option is a functional option for configuring StateGraph behavior.
// Options are applied by New.
type Option func(*graphConfig)

// NodeOption is a functional option for configuring individual node
// behavior. Node options are applied by AddNode.
type NodeOption func(*node)

// graphConfig holds the configuration of a StateGraph, populated by
// Options.
type graphConfig struct {
	// maxSteps bounds the number of node invocations in one run. Zero
	// means DefaultMaxSteps; negative means unlimited.
	maxSteps int

	// observer receives run and node spans, logs, and metrics. Nil
	// disables observability unless the run context carries a provider.
	observer observability.Provider
}

// WithMaxSteps bounds the number of node invocations a single run may make
// before failing with ErrStepLimit. The graph performs no cycle detection,
// so the budget is what stops a selector that never routes to End. Zero
// keeps DefaultMaxSteps; a negative value removes the bound entirely.
//
// Example:
//
//	graph := pipeline.New(schema, pipeline.WithMaxSteps(50))
func WithMaxSteps(maxSteps int) Option {
	return func(config *graphConfig) {
		config.maxSteps = maxSteps
	}
}

// WithObserver attaches an observability provider to the graph. Every run
// then emits a root span, one span per executed node, node counters and
// duration histograms, and failure logs naming the failing node.
//
// Example:
//
//	graph := pipeline.New(schema, pipeline.WithObserver(slogobs.New()))
func WithObserver(observer observability.Provider) Option {
	return func(config *graphConfig) {
		config.observer = observer
	}
}

// WithFixedArgs sets constant arguments merged into every invocation of the
// node's component. State-derived arguments win on name collision.
//
// Example:
//
//	graph.AddNode("summarize", summarizer,
//	    pipeline.WithFixedArgs(map[string]any{"style": "bullet"}),
//	)
func WithFixedArgs(args map[string]any) NodeOption {
	return func(nodeConfig *node) {
		nodeConfig.fixedArgs = args
	}
}

// WithInputMapping maps component parameter names to the state fields they
// are read from. Without a mapping, every state field is passed as an
// argument under its own name.
//
// Example:
//
//	graph.AddNode("summarize", summarizer,
//	    pipeline.WithInputMapping(map[string]string{"text": "draft"}),
//	)
func WithInputMapping(mapping map[string]string) NodeOption {
	return func(nodeConfig *node) {
		nodeConfig.inputMapping = mapping
	}
}

// WithOutputField routes the component's return value into the named state
// field. Without an output field the component must return a
// map[string]any, which replaces the state wholesale through the schema.
func WithOutputField(field string) NodeOption {
	return func(nodeConfig *node) {
		nodeConfig.outputField = field
	}
}
