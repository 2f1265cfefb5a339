package pipeline

import (
	"errors"
	"fmt"
)

// Configuration errors, reported while a graph is assembled or validated.
// A rejected registration leaves the graph unchanged, so callers can check
// errors per call or defer them all to Run, which validates first.
var (
	// ErrDuplicateNode is returned by AddNode when the name is already taken.
	ErrDuplicateNode = errors.New("grafo: node name already registered")

	// ErrDuplicateEdge is returned by Connect and Branch when the source
	// already has an outgoing edge.
	ErrDuplicateEdge = errors.New("grafo: source already has an outgoing edge")

	// ErrUnknownNode is returned when an edge endpoint names no registered
	// node.
	ErrUnknownNode = errors.New("grafo: unknown node")

	// ErrReservedName is returned by AddNode for the sentinel names START
	// and END.
	ErrReservedName = errors.New("grafo: START and END are reserved names")

	// ErrMissingStart is returned by Run when Start has no outgoing edge.
	ErrMissingStart = errors.New("grafo: graph has no edge from START")

	// ErrUnreachableEnd is returned by Run when no edge targets End.
	ErrUnreachableEnd = errors.New("grafo: no edge reaches END")

	// ErrUnknownField is returned for state fields the schema does not
	// declare.
	ErrUnknownField = errors.New("grafo: field not declared by schema")
)

// Execution errors, reported while a run is in flight. Each one aborts the
// run; the interpreter performs no local recovery.
var (
	// ErrInvalidBranch is returned when a selector chooses a name outside
	// its declared candidates.
	ErrInvalidBranch = errors.New("grafo: selector chose a path outside its candidates")

	// ErrMissingOutput is returned when a component with no output field
	// returns something other than a field map.
	ErrMissingOutput = errors.New("grafo: component returned no usable output")

	// ErrDeadEnd is returned when a node finishes and has no outgoing edge.
	ErrDeadEnd = errors.New("grafo: dead end before reaching END")

	// ErrStepLimit is returned when a run exhausts its step budget.
	ErrStepLimit = errors.New("grafo: step budget exhausted")
)

// NodeError wraps a component failure with the node that raised it and a
// snapshot of the state at the moment of failure. Unwrap exposes the
// component's original error, so [errors.Is] and [errors.As] keep working
// against caller-defined error types.
//
// Example:
//
//	final, err := graph.Run(ctx, nil)
//	var nodeErr *pipeline.NodeError
//	if errors.As(err, &nodeErr) {
//	    log.Printf("node %s failed with state %v", nodeErr.Node, nodeErr.Snapshot)
//	}
type NodeError struct {
	// Node is the name of the node whose component failed.
	Node string

	// Snapshot is a copy of the state at the moment of failure.
	Snapshot map[string]any

	// Err is the error the component returned.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q failed: %v", e.Node, e.Err)
}

// Unwrap returns the component's original error.
func (e *NodeError) Unwrap() error {
	return e.Err
}
