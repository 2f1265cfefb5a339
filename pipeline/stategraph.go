package pipeline

import "fmt"

// StateGraph is a sequential workflow interpreter: named components joined
// by edges, threading one state record from Start to End. Nodes and edges
// are registered during construction; the graph is then validated and run
// any number of times.
//
// The node and edge tables are read-only once Run is called, so a single
// graph can serve concurrent runs as long as every registered component is
// reentrant. Each run owns its state exclusively.
type StateGraph struct {
	// schema describes the state record threaded through the graph.
	schema Schema

	// nodes maps node names to their definitions.
	nodes map[string]*node

	// edges holds the single outgoing edge of each source endpoint.
	edges map[Endpoint]*edge

	// config holds the graph's execution configuration.
	config *graphConfig
}

// New creates an empty state graph over the given schema.
func New(schema Schema, opts ...Option) *StateGraph {
	config := &graphConfig{}
	for _, opt := range opts {
		opt(config)
	}

	return &StateGraph{
		schema: schema,
		nodes:  make(map[string]*node),
		edges:  make(map[Endpoint]*edge),
		config: config,
	}
}

// AddNode registers a named component. Names must be unique and may not be
// the sentinel names START or END. A rejected registration leaves the graph
// unchanged.
func (g *StateGraph) AddNode(name string, component Component, opts ...NodeOption) error {
	if name == "" {
		return fmt.Errorf("node name must not be empty")
	}
	if component == nil {
		return fmt.Errorf("component must not be nil for node %q", name)
	}
	if name == startName || name == endName {
		return fmt.Errorf("add node %q: %w", name, ErrReservedName)
	}
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("add node %q: %w", name, ErrDuplicateNode)
	}

	graphNode := &node{
		name:      name,
		component: component,
	}
	for _, opt := range opts {
		opt(graphNode)
	}

	g.nodes[name] = graphNode
	return nil
}

// Connect registers a fixed edge from source to target. Every source,
// Start included, has at most one outgoing edge.
func (g *StateGraph) Connect(source, target Endpoint) error {
	if err := g.checkSource(source); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := g.checkTarget(target); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	g.edges[source] = &edge{target: target}
	return nil
}

// Branch registers a conditional edge: at run time the selector picks the
// next endpoint from candidates by name. The same endpoint rules as Connect
// apply to the source and to every candidate.
func (g *StateGraph) Branch(source Endpoint, selector Selector, candidates []Endpoint) error {
	if selector == nil {
		return fmt.Errorf("branch: selector must not be nil")
	}
	if len(candidates) == 0 {
		return fmt.Errorf("branch: at least one candidate is required")
	}
	if err := g.checkSource(source); err != nil {
		return fmt.Errorf("branch: %w", err)
	}
	for _, candidate := range candidates {
		if err := g.checkTarget(candidate); err != nil {
			return fmt.Errorf("branch: %w", err)
		}
	}

	g.edges[source] = &edge{
		selector:   selector,
		candidates: append([]Endpoint(nil), candidates...),
	}
	return nil
}

// checkSource validates an edge source: Start or a registered node, with no
// outgoing edge yet.
func (g *StateGraph) checkSource(source Endpoint) error {
	if source.IsEnd() {
		return fmt.Errorf("END cannot be an edge source")
	}
	if !source.IsStart() {
		if _, exists := g.nodes[source.name]; !exists {
			return fmt.Errorf("source %q: %w", source.String(), ErrUnknownNode)
		}
	}
	if _, exists := g.edges[source]; exists {
		return fmt.Errorf("source %q: %w", source.String(), ErrDuplicateEdge)
	}
	return nil
}

// checkTarget validates an edge target: End or a registered node.
func (g *StateGraph) checkTarget(target Endpoint) error {
	if target.IsStart() {
		return fmt.Errorf("START cannot be an edge target")
	}
	if !target.IsEnd() {
		if _, exists := g.nodes[target.name]; !exists {
			return fmt.Errorf("target %q: %w", target.String(), ErrUnknownNode)
		}
	}
	return nil
}

// validate confirms the graph is runnable: a schema is present, Start is
// connected, and End appears as a target somewhere. Cycles and unreachable
// nodes are not detected.
func (g *StateGraph) validate() error {
	if g.schema == nil {
		return fmt.Errorf("state graph requires a schema")
	}
	if _, connected := g.edges[Start]; !connected {
		return ErrMissingStart
	}
	if !g.endReachable() {
		return ErrUnreachableEnd
	}
	return nil
}

// endReachable reports whether End appears among the targets of any edge,
// counting every conditional candidate.
func (g *StateGraph) endReachable() bool {
	for _, graphEdge := range g.edges {
		if graphEdge.selector == nil {
			if graphEdge.target.IsEnd() {
				return true
			}
			continue
		}
		for _, candidate := range graphEdge.candidates {
			if candidate.IsEnd() {
				return true
			}
		}
	}
	return false
}
