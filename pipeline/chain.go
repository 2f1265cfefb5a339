package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/grafo-ai/grafo/providers/observability"
)

// Runner is the unit of a linear chain: it transforms one value into the
// next. Splitters, captioners, and embedders are Runners; a Chain is itself
// a Runner, so pipelines compose.
type Runner interface {
	Run(ctx context.Context, input any) (any, error)
}

// RunnerFunc is an adapter that allows using an ordinary function as a
// Runner.
type RunnerFunc func(ctx context.Context, input any) (any, error)

// Run calls the underlying function, satisfying the Runner interface.
func (runnerFunc RunnerFunc) Run(ctx context.Context, input any) (any, error) {
	return runnerFunc(ctx, input)
}

// ComponentOf adapts a Runner into a graph Component: the runner receives
// the argument named inputParam and its return value flows out unchanged.
// Pair it with WithOutputField so the result lands in a state field.
func ComponentOf(runner Runner, inputParam string) Component {
	return ComponentFunc(func(ctx context.Context, args map[string]any) (any, error) {
		return runner.Run(ctx, args[inputParam])
	})
}

// Chain threads a value through an ordered list of modules: the output of
// module i becomes the input of module i+1.
type Chain struct {
	modules  []Runner
	observer observability.Provider
}

var _ Runner = (*Chain)(nil)

// NewChain creates a chain over the given modules, run in order.
func NewChain(modules ...Runner) *Chain {
	return &Chain{
		modules: append([]Runner(nil), modules...),
	}
}

// WithObserver attaches an observability provider; runs then emit a span
// and per-module logs. It returns the chain to ease wiring during setup.
func (chain *Chain) WithObserver(observer observability.Provider) *Chain {
	chain.observer = observer
	return chain
}

// Modules returns the chain's modules in run order.
func (chain *Chain) Modules() []Runner {
	return append([]Runner(nil), chain.modules...)
}

// Run threads input through every module in order and returns the final
// value. A module failure stops the chain and is wrapped with the module's
// position and name.
func (chain *Chain) Run(ctx context.Context, input any) (any, error) {
	ctx, span := chain.runStarted(ctx)

	value := input
	for index, module := range chain.modules {
		moduleStart := time.Now()

		next, err := module.Run(ctx, value)
		if err != nil {
			wrapped := fmt.Errorf("module %d (%s): %w", index, moduleName(module), err)
			chain.runFailed(ctx, span, wrapped)
			return nil, wrapped
		}

		chain.moduleCompleted(ctx, index, module, time.Since(moduleStart))
		value = next
	}

	chain.runCompleted(span)
	return value, nil
}

// moduleName labels a module for errors and logs: its Name() when it has
// one, its Go type otherwise.
func moduleName(module Runner) string {
	if named, ok := module.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", module)
}

func (chain *Chain) runStarted(ctx context.Context) (context.Context, observability.Span) {
	if chain.observer == nil {
		return ctx, nil
	}

	ctx, span := chain.observer.StartSpan(ctx, observability.SpanChainRun,
		observability.Int("chain.modules", len(chain.modules)),
	)
	ctx = observability.ContextWithObserver(ctx, chain.observer)
	ctx = observability.ContextWithSpan(ctx, span)
	return ctx, span
}

func (chain *Chain) moduleCompleted(ctx context.Context, index int, module Runner, duration time.Duration) {
	if chain.observer == nil {
		return
	}

	chain.observer.Debug(ctx, "chain module completed",
		observability.String(observability.AttrPipelineModule, moduleName(module)),
		observability.Int(observability.AttrPipelineModuleIndex, index),
		observability.Duration(observability.AttrDuration, duration),
	)
}

func (chain *Chain) runFailed(ctx context.Context, span observability.Span, runErr error) {
	if chain.observer == nil {
		return
	}

	chain.observer.Error(ctx, "chain run failed", observability.Error(runErr))
	if span != nil {
		span.RecordError(runErr)
		span.SetStatus(observability.StatusError, "chain run failed")
		span.End()
	}
}

func (chain *Chain) runCompleted(span observability.Span) {
	if span != nil {
		span.SetStatus(observability.StatusOK, "chain run completed")
		span.End()
	}
}
