package pipeline

// startName and endName are the rendered names of the sentinel endpoints.
// Both are reserved: AddNode rejects them as node names.
const (
	startName = "START"
	endName   = "END"
)

// endpointKind discriminates the sentinel endpoints from named nodes. The
// zero value is not a valid kind, so a zero Endpoint matches nothing.
type endpointKind int

const (
	endpointStart endpointKind = iota + 1
	endpointEnd
	endpointNode
)

// Endpoint identifies one end of an edge: the Start sentinel, the End
// sentinel, or a registered node by name. Sentinels are distinct values
// rather than reserved strings, so node names can never collide with them.
// Endpoints are comparable and usable as map keys.
type Endpoint struct {
	kind endpointKind
	name string
}

// Start is the entry marker of a graph. Execution begins at the edge whose
// source is Start.
var Start = Endpoint{kind: endpointStart}

// End is the exit marker of a graph. Execution terminates when an edge
// resolves to End.
var End = Endpoint{kind: endpointEnd}

// NodeRef refers to a registered node by name.
func NodeRef(name string) Endpoint {
	return Endpoint{kind: endpointNode, name: name}
}

// IsStart reports whether the endpoint is the Start sentinel.
func (e Endpoint) IsStart() bool { return e.kind == endpointStart }

// IsEnd reports whether the endpoint is the End sentinel.
func (e Endpoint) IsEnd() bool { return e.kind == endpointEnd }

// String renders the endpoint for errors and logs: START, END, or the node
// name.
func (e Endpoint) String() string {
	switch e.kind {
	case endpointStart:
		return startName
	case endpointEnd:
		return endName
	default:
		return e.name
	}
}

// endpointNames renders a candidate list for error messages.
func endpointNames(endpoints []Endpoint) []string {
	names := make([]string, len(endpoints))
	for i, endpoint := range endpoints {
		names[i] = endpoint.String()
	}
	return names
}
