package pipeline

import (
	"context"
	"fmt"
	"time"
)

// Result carries the outcome of an asynchronous run: the final state, or
// the error that stopped it.
type Result struct {
	State State
	Err   error
}

// Run drives a state through the graph from Start to End and returns the
// final state. The graph is validated first; when initial is nil, a
// default-constructed state from the schema is used.
//
// One run owns its state exclusively and the node and edge tables are
// read-only during execution, so concurrent Run calls on the same graph are
// safe as long as every registered component is reentrant.
func (g *StateGraph) Run(ctx context.Context, initial State) (State, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	state := initial
	if state == nil {
		state = g.schema.New()
	}

	maxSteps := g.config.maxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	scope := g.newRunScope(ctx)
	ctx = scope.runStarted(ctx, g, maxSteps)
	runStart := time.Now()

	steps := 0
	currentEdge := g.edges[Start]
	for {
		if err := ctx.Err(); err != nil {
			scope.runFailed(ctx, err, steps, time.Since(runStart))
			return nil, err
		}

		target, err := resolveEdge(ctx, currentEdge, state)
		if err != nil {
			scope.runFailed(ctx, err, steps, time.Since(runStart))
			return nil, err
		}
		if currentEdge.selector != nil {
			scope.branchResolved(ctx, target)
		}

		if target.IsEnd() {
			scope.runCompleted(ctx, steps, time.Since(runStart))
			return state, nil
		}

		if maxSteps > 0 && steps >= maxSteps {
			limitErr := fmt.Errorf("%w: %d steps without reaching END", ErrStepLimit, steps)
			scope.runFailed(ctx, limitErr, steps, time.Since(runStart))
			return nil, limitErr
		}
		steps++

		graphNode := g.nodes[target.name]
		state, err = g.executeNode(ctx, scope, graphNode, state, steps)
		if err != nil {
			scope.runFailed(ctx, err, steps, time.Since(runStart))
			return nil, err
		}

		nextEdge, connected := g.edges[NodeRef(graphNode.name)]
		if !connected {
			deadEndErr := fmt.Errorf("node %q: %w", graphNode.name, ErrDeadEnd)
			scope.runFailed(ctx, deadEndErr, steps, time.Since(runStart))
			return nil, deadEndErr
		}
		currentEdge = nextEdge
	}
}

// RunAsync runs the graph in its own goroutine and delivers the single
// outcome on the returned channel, which is then closed. Ordering and
// branching semantics are identical to Run; nodes never execute
// concurrently within one run.
func (g *StateGraph) RunAsync(ctx context.Context, initial State) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		defer close(results)
		state, err := g.Run(ctx, initial)
		results <- Result{State: state, Err: err}
	}()
	return results
}

// executeNode invokes one node's component and folds its result into the
// state, returning the state for the next step.
func (g *StateGraph) executeNode(ctx context.Context, scope *runScope, graphNode *node, state State, step int) (State, error) {
	ctx, nodeSpan := scope.nodeStarted(ctx, graphNode.name, step, state)
	nodeStart := time.Now()

	args, err := buildArgs(graphNode, state)
	if err != nil {
		scope.nodeFailed(ctx, nodeSpan, graphNode.name, state.Snapshot(), err, time.Since(nodeStart))
		return nil, err
	}

	result, err := graphNode.component.Invoke(ctx, args)
	if err != nil {
		snapshot := state.Snapshot()
		scope.nodeFailed(ctx, nodeSpan, graphNode.name, snapshot, err, time.Since(nodeStart))
		return nil, &NodeError{Node: graphNode.name, Snapshot: snapshot, Err: err}
	}

	next, err := applyResult(g.schema, graphNode, state, result)
	if err != nil {
		scope.nodeFailed(ctx, nodeSpan, graphNode.name, state.Snapshot(), err, time.Since(nodeStart))
		return nil, err
	}

	scope.nodeCompleted(ctx, nodeSpan, graphNode.name, time.Since(nodeStart))
	return next, nil
}

// resolveEdge produces the next endpoint to visit: the fixed target of a
// simple edge, or the candidate a conditional selector chose.
func resolveEdge(ctx context.Context, graphEdge *edge, state State) (Endpoint, error) {
	if graphEdge.selector == nil {
		return graphEdge.target, nil
	}

	chosen, err := graphEdge.selector(ctx, state)
	if err != nil {
		return Endpoint{}, fmt.Errorf("branch selector: %w", err)
	}

	for _, candidate := range graphEdge.candidates {
		if candidate.String() == chosen {
			return candidate, nil
		}
	}
	return Endpoint{}, fmt.Errorf("selector returned %q, expected one of %v: %w",
		chosen, endpointNames(graphEdge.candidates), ErrInvalidBranch)
}

// buildArgs assembles the arguments of a node invocation: the node's fixed
// arguments first, then state fields per the input mapping, or every state
// field under its own name when no mapping is declared. State-derived
// values win on collision. The fixed arguments are copied, keeping the node
// table read-only across runs.
func buildArgs(graphNode *node, state State) (map[string]any, error) {
	args := make(map[string]any, len(graphNode.fixedArgs)+len(graphNode.inputMapping))
	for name, value := range graphNode.fixedArgs {
		args[name] = value
	}

	if len(graphNode.inputMapping) == 0 {
		for field, value := range state.Snapshot() {
			args[field] = value
		}
		return args, nil
	}

	for param, field := range graphNode.inputMapping {
		value, err := state.Get(field)
		if err != nil {
			return nil, fmt.Errorf("node %q argument %q: %w", graphNode.name, param, err)
		}
		args[param] = value
	}
	return args, nil
}

// applyResult folds a component's return value into the state: written to
// the node's output field when one is declared, otherwise the value must be
// a map that rebuilds the whole state through the schema.
func applyResult(schema Schema, graphNode *node, state State, result any) (State, error) {
	if graphNode.outputField != "" {
		if err := state.Set(graphNode.outputField, result); err != nil {
			return nil, fmt.Errorf("node %q output: %w", graphNode.name, err)
		}
		return state, nil
	}

	fields, isMap := result.(map[string]any)
	if !isMap {
		return nil, fmt.Errorf("node %q returned %T with no output field: %w",
			graphNode.name, result, ErrMissingOutput)
	}

	next, err := schema.Rebuild(fields)
	if err != nil {
		return nil, fmt.Errorf("node %q result: %w", graphNode.name, err)
	}
	return next, nil
}
