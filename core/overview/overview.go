package overview

import (
	"context"

	"github.com/grafo-ai/grafo/core/cost"
	"github.com/grafo-ai/grafo/providers/ai"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey int

const overviewContextKey contextKey = 0

// Overview accumulates what a conversation did and what it cost: the full
// request/response history, total token usage, per-tool call counts, and the
// cost configuration needed to turn those numbers into dollars.
//
// An Overview records a single logical run. It is not synchronized; attach
// one per conversation rather than sharing it across goroutines.
type Overview struct {
	LastResponse  *ai.ChatResponse   `json:"last_response,omitempty"`
	Requests      []*ai.ChatRequest  `json:"requests"`
	Responses     []*ai.ChatResponse `json:"responses"`
	TotalUsage    ai.Usage           `json:"total_usage"`
	ToolCallStats map[string]int     `json:"tool_calls,omitempty"`
	// ToolCosts tracks the accumulated cost per tool
	ToolCosts map[string]float64 `json:"tool_costs,omitempty"`
	// ModelCost is the pricing configuration for the model (optional)
	ModelCost *cost.ModelCost `json:"model_cost,omitempty"`
}

// New creates an empty Overview ready to record a run.
func New() *Overview {
	return &Overview{}
}

// FromContext retrieves the Overview attached to the context, or nil when the
// caller did not request tracking. Components treat a nil result as "tracking
// disabled" and skip recording.
func FromContext(ctx context.Context) *Overview {
	if ctx == nil {
		return nil
	}
	run, _ := ctx.Value(overviewContextKey).(*Overview)
	return run
}

// ToContext stores the Overview in the given context and returns the enriched
// context. Every client call made under the returned context records into
// this Overview.
func (run *Overview) ToContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, overviewContextKey, run)
}

// IncludeUsage accumulates token usage from a provider response into the
// running totals. A nil usage report is ignored.
func (run *Overview) IncludeUsage(usage *ai.Usage) {
	if usage == nil {
		return
	}
	run.TotalUsage = run.TotalUsage.Add(*usage)
}

// AddToolCalls records tool call invocations in the per-tool statistics.
func (run *Overview) AddToolCalls(calls []ai.ToolCall) {
	if len(calls) == 0 {
		return
	}
	if run.ToolCallStats == nil {
		run.ToolCallStats = make(map[string]int)
	}
	for _, call := range calls {
		run.ToolCallStats[call.Function.Name]++
	}
}

// AddRequest appends a chat request to the request history.
func (run *Overview) AddRequest(request *ai.ChatRequest) {
	run.Requests = append(run.Requests, request)
}

// AddResponse appends a chat response to the response history and updates the
// last response reference.
func (run *Overview) AddResponse(response *ai.ChatResponse) {
	run.Responses = append(run.Responses, response)
	run.LastResponse = response
}

// AddToolExecutionCost records the cost of one tool execution. Tools without
// cost metadata (nil toolCost) are ignored.
func (run *Overview) AddToolExecutionCost(toolName string, toolCost *cost.ToolCost) {
	if toolCost == nil {
		return
	}
	if run.ToolCosts == nil {
		run.ToolCosts = make(map[string]float64)
	}
	run.ToolCosts[toolName] += toolCost.Amount
}

// SetModelCost sets the pricing configuration used to value the accumulated
// token usage.
func (run *Overview) SetModelCost(modelCost *cost.ModelCost) {
	run.ModelCost = modelCost
}

// TotalCost returns the total cost of the run (tools + model).
func (run *Overview) TotalCost() float64 {
	return run.CostSummary().TotalCost
}

// CostSummary returns a detailed breakdown of all costs recorded so far.
// Model costs are zero when no [Overview.SetModelCost] pricing was provided.
func (run *Overview) CostSummary() cost.CostSummary {
	summary := cost.CostSummary{
		ToolCosts:          make(map[string]float64),
		ToolExecutionCount: make(map[string]int),
		Currency:           "USD",
	}

	totalToolCost := 0.0
	for toolName, amount := range run.ToolCosts {
		summary.ToolCosts[toolName] = amount
		totalToolCost += amount
	}
	for toolName, count := range run.ToolCallStats {
		summary.ToolExecutionCount[toolName] = count
	}
	summary.TotalToolCost = totalToolCost

	if run.ModelCost != nil {
		summary.ModelInputCost = run.ModelCost.CalculateInputCost(run.TotalUsage.PromptTokens)
		summary.ModelOutputCost = run.ModelCost.CalculateOutputCost(run.TotalUsage.CompletionTokens)
		summary.ModelCachedCost = run.ModelCost.CalculateCachedCost(run.TotalUsage.CachedTokens)
		summary.ModelReasoningCost = run.ModelCost.CalculateReasoningCost(run.TotalUsage.ReasoningTokens)
	}

	summary.TotalModelCost = summary.ModelInputCost + summary.ModelOutputCost +
		summary.ModelCachedCost + summary.ModelReasoningCost
	summary.TotalCost = summary.TotalToolCost + summary.TotalModelCost

	return summary
}
