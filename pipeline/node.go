package pipeline

import "context"

// Component is the unit of work a node wraps. It is invoked with
// keyword-style arguments assembled from the state and the node's fixed
// arguments, and returns either a single value, written to the node's
// output field, or a map of field name to value that becomes the next
// state.
type Component interface {
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// ComponentFunc is an adapter that allows using an ordinary function as a
// Component. If f is a function with the appropriate signature,
// ComponentFunc(f) is a Component that calls f.
type ComponentFunc func(ctx context.Context, args map[string]any) (any, error)

// Invoke calls the underlying function, satisfying the Component interface.
func (componentFunc ComponentFunc) Invoke(ctx context.Context, args map[string]any) (any, error) {
	return componentFunc(ctx, args)
}

// Selector chooses the next endpoint of a conditional edge from the current
// state. The returned name must match one of the edge's declared
// candidates; returning "END" routes to End when End is among them.
type Selector func(ctx context.Context, state State) (string, error)

// node binds a component to its argument and output wiring.
type node struct {
	// name is the unique identifier of this node within the graph.
	name string

	// component is the processing logic of this node.
	component Component

	// fixedArgs are constants merged into every invocation, overridden by
	// state-derived arguments on name collision.
	fixedArgs map[string]any

	// inputMapping maps component parameter names to the state fields they
	// are read from. Empty means every state field is passed under its own
	// name.
	inputMapping map[string]string

	// outputField names the state field that receives the component's
	// return value verbatim. Empty means the component must return a field
	// map that replaces the whole state.
	outputField string
}

// edge is the single outgoing connection of a source endpoint: a fixed
// target, or a run-time choice among candidates when selector is set.
type edge struct {
	// target is the fixed successor of a simple edge.
	target Endpoint

	// selector, when non-nil, chooses among candidates at run time.
	selector Selector

	// candidates are the endpoints a selector may choose from.
	candidates []Endpoint
}
