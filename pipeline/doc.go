// Package pipeline implements a sequential state-graph interpreter for
// wiring LLM components into workflows. Named components are joined by
// edges into a graph that threads one mutable state record from Start to
// End, with conditional branching chosen at run time by selector functions.
//
// A StateGraph runs exactly one node at a time: it resolves the current
// edge to a node, builds the node's arguments from the state, invokes the
// component, folds the result back into the state, and advances along the
// node's outgoing edge until End is reached. There is no parallelism, no
// persistence, and no retry; a failure aborts the run and surfaces to the
// caller.
//
// The package also provides the linear counterparts used for document
// ingestion: [Chain] threads a value through an ordered module list, and
// [Ingestion] runs a chain over raw text and upserts the resulting chunks
// into a vector store. Both can be assembled from YAML via [LoadConfig]
// and a [Registry] of component factories.
//
// Example:
//
//	schema := pipeline.NewSchema("draft", "approved")
//
//	graph := pipeline.New(schema)
//	_ = graph.AddNode("write", writer, pipeline.WithOutputField("draft"))
//	_ = graph.AddNode("review", reviewer)
//	_ = graph.Connect(pipeline.Start, pipeline.NodeRef("write"))
//	_ = graph.Connect(pipeline.NodeRef("write"), pipeline.NodeRef("review"))
//	_ = graph.Branch(pipeline.NodeRef("review"), decide,
//	    []pipeline.Endpoint{pipeline.NodeRef("write"), pipeline.End})
//
//	final, err := graph.Run(ctx, nil)
//
// The graph above loops write -> review until the decide selector routes to
// End. Because the interpreter performs no cycle detection, every run
// carries a step budget (WithMaxSteps) that stops selectors which never
// reach End.
package pipeline
