package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/grafo-ai/grafo/providers/observability"
)

// Attribute keys local to this package, complementing the shared semantic
// conventions.
const (
	// attrPipelineNodes is the number of registered nodes in the graph.
	attrPipelineNodes = "pipeline.nodes"

	// attrPipelineMaxSteps is the effective step budget of a run.
	attrPipelineMaxSteps = "pipeline.max_steps"
)

// snapshotLogLength caps how much of a state snapshot goes into one log
// attribute.
const snapshotLogLength = 200

// runScope carries the observability handles of a single run. A fresh scope
// is created per Run call, so concurrent runs on the same graph never share
// mutable observability state. All methods are safe to call with no
// provider configured.
type runScope struct {
	observer observability.Provider
	rootSpan observability.Span
}

// newRunScope resolves the observer of a run: the graph's configured
// provider, else whatever provider the caller put in the context.
func (g *StateGraph) newRunScope(ctx context.Context) *runScope {
	observer := g.config.observer
	if observer == nil {
		observer = observability.ObserverFromContext(ctx)
	}
	return &runScope{observer: observer}
}

// runStarted opens the root span and logs the run configuration. The
// returned context carries the span and the observer for downstream
// components.
func (scope *runScope) runStarted(ctx context.Context, g *StateGraph, maxSteps int) context.Context {
	if scope.observer == nil {
		return ctx
	}

	ctx, rootSpan := scope.observer.StartSpan(ctx, observability.SpanPipelineRun,
		observability.Int(attrPipelineNodes, len(g.nodes)),
		observability.Int(attrPipelineMaxSteps, maxSteps),
	)
	scope.rootSpan = rootSpan

	ctx = observability.ContextWithObserver(ctx, scope.observer)
	ctx = observability.ContextWithSpan(ctx, rootSpan)

	scope.observer.Info(ctx, "pipeline run started",
		observability.Int(attrPipelineNodes, len(g.nodes)),
	)
	return ctx
}

// runCompleted records a successful run and closes the root span.
func (scope *runScope) runCompleted(ctx context.Context, steps int, duration time.Duration) {
	if scope.observer == nil {
		return
	}

	scope.observer.Histogram(observability.MetricPipelineRunDuration).Record(ctx, duration.Seconds())
	scope.observer.Counter(observability.MetricPipelineRunCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, "completed"),
	)

	scope.observer.Info(ctx, "pipeline run completed",
		observability.Int(observability.AttrPipelineSteps, steps),
		observability.Duration(observability.AttrDuration, duration),
	)

	if scope.rootSpan != nil {
		scope.rootSpan.SetAttributes(observability.Int(observability.AttrPipelineSteps, steps))
		scope.rootSpan.SetStatus(observability.StatusOK, "pipeline run completed")
		scope.rootSpan.End()
	}
}

// runFailed records a failed run and closes the root span.
func (scope *runScope) runFailed(ctx context.Context, runErr error, steps int, duration time.Duration) {
	if scope.observer == nil {
		return
	}

	scope.observer.Counter(observability.MetricPipelineErrorCount).Add(ctx, 1)

	scope.observer.Error(ctx, "pipeline run failed",
		observability.Error(runErr),
		observability.Int(observability.AttrPipelineSteps, steps),
		observability.Duration(observability.AttrDuration, duration),
	)

	if scope.rootSpan != nil {
		scope.rootSpan.RecordError(runErr)
		scope.rootSpan.SetStatus(observability.StatusError, "pipeline run failed")
		scope.rootSpan.End()
	}
}

// nodeStarted opens a node span and logs the state entering the node.
func (scope *runScope) nodeStarted(ctx context.Context, name string, step int, state State) (context.Context, observability.Span) {
	if scope.observer == nil {
		return ctx, nil
	}

	ctx, nodeSpan := scope.observer.StartSpan(ctx, observability.SpanPipelineNode,
		observability.String(observability.AttrPipelineNode, name),
		observability.Int(observability.AttrPipelineStep, step),
	)
	ctx = observability.ContextWithSpan(ctx, nodeSpan)

	scope.observer.Debug(ctx, "node execution started",
		observability.String(observability.AttrPipelineNode, name),
		observability.Int(observability.AttrPipelineStep, step),
		snapshotAttribute(state.Snapshot()),
	)
	return ctx, nodeSpan
}

// nodeCompleted records a successful node execution and closes its span.
func (scope *runScope) nodeCompleted(ctx context.Context, nodeSpan observability.Span, name string, duration time.Duration) {
	if scope.observer == nil {
		return
	}

	scope.observer.Histogram(observability.MetricPipelineNodeDuration).Record(ctx, duration.Seconds(),
		observability.String(observability.AttrPipelineNode, name),
	)
	scope.observer.Counter(observability.MetricPipelineNodeCount).Add(ctx, 1,
		observability.String(observability.AttrPipelineNode, name),
		observability.String(observability.AttrStatus, "completed"),
	)

	scope.observer.Info(ctx, "node execution completed",
		observability.String(observability.AttrPipelineNode, name),
		observability.Duration(observability.AttrDuration, duration),
	)

	if nodeSpan != nil {
		nodeSpan.SetStatus(observability.StatusOK, "node completed")
		nodeSpan.End()
	}
}

// nodeFailed records a failed node execution, with the state at the moment
// of failure, and closes the node span.
func (scope *runScope) nodeFailed(ctx context.Context, nodeSpan observability.Span, name string, snapshot map[string]any, nodeErr error, duration time.Duration) {
	if scope.observer == nil {
		return
	}

	scope.observer.Counter(observability.MetricPipelineNodeCount).Add(ctx, 1,
		observability.String(observability.AttrPipelineNode, name),
		observability.String(observability.AttrStatus, "failed"),
	)

	scope.observer.Error(ctx, "node execution failed",
		observability.String(observability.AttrPipelineNode, name),
		observability.Error(nodeErr),
		snapshotAttribute(snapshot),
		observability.Duration(observability.AttrDuration, duration),
	)

	if nodeSpan != nil {
		nodeSpan.RecordError(nodeErr)
		nodeSpan.SetStatus(observability.StatusError, "node failed")
		nodeSpan.End()
	}
}

// branchResolved notes the endpoint a conditional edge chose.
func (scope *runScope) branchResolved(ctx context.Context, target Endpoint) {
	if scope.observer == nil {
		return
	}

	scope.observer.Debug(ctx, "branch resolved",
		observability.String(observability.AttrPipelineTarget, target.String()),
	)
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventBranchResolved,
			observability.String(observability.AttrPipelineTarget, target.String()),
		)
	}
}

// snapshotAttribute renders a truncated state snapshot for log records.
func snapshotAttribute(snapshot map[string]any) observability.Attribute {
	return observability.String(observability.AttrPipelineState,
		observability.TruncateString(fmt.Sprintf("%v", snapshot), snapshotLogLength))
}
