package overview

import (
	"context"
	"math"
	"testing"

	"github.com/grafo-ai/grafo/core/cost"
	"github.com/grafo-ai/grafo/providers/ai"
)

// ========== Context round-trip ==========

func TestFromContext_AbsentReturnsNil(t *testing.T) {
	if run := FromContext(context.Background()); run != nil {
		t.Errorf("Expected nil overview for a bare context, got %+v", run)
	}
	if run := FromContext(nil); run != nil {
		t.Errorf("Expected nil overview for a nil context, got %+v", run)
	}
}

func TestToContext_RoundTrip(t *testing.T) {
	run := New()
	ctx := run.ToContext(context.Background())

	if got := FromContext(ctx); got != run {
		t.Errorf("Expected the same overview back from the context, got %+v", got)
	}
}

func TestToContext_NilContext(t *testing.T) {
	run := New()
	ctx := run.ToContext(nil)

	if got := FromContext(ctx); got != run {
		t.Error("Expected ToContext to tolerate a nil parent context")
	}
}

// ========== Recording ==========

func TestIncludeUsage_Accumulates(t *testing.T) {
	run := New()

	run.IncludeUsage(&ai.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150})
	run.IncludeUsage(&ai.Usage{PromptTokens: 30, CompletionTokens: 20, TotalTokens: 50, ReasoningTokens: 10, CachedTokens: 5})
	run.IncludeUsage(nil)

	if run.TotalUsage.PromptTokens != 130 {
		t.Errorf("Expected 130 prompt tokens, got %d", run.TotalUsage.PromptTokens)
	}
	if run.TotalUsage.CompletionTokens != 70 {
		t.Errorf("Expected 70 completion tokens, got %d", run.TotalUsage.CompletionTokens)
	}
	if run.TotalUsage.TotalTokens != 200 {
		t.Errorf("Expected 200 total tokens, got %d", run.TotalUsage.TotalTokens)
	}
	if run.TotalUsage.ReasoningTokens != 10 {
		t.Errorf("Expected 10 reasoning tokens, got %d", run.TotalUsage.ReasoningTokens)
	}
	if run.TotalUsage.CachedTokens != 5 {
		t.Errorf("Expected 5 cached tokens, got %d", run.TotalUsage.CachedTokens)
	}
}

func TestAddResponse_TracksHistoryAndLastResponse(t *testing.T) {
	run := New()

	first := &ai.ChatResponse{ID: "r1", Content: "draft"}
	second := &ai.ChatResponse{ID: "r2", Content: "final"}
	run.AddResponse(first)
	run.AddResponse(second)

	if len(run.Responses) != 2 {
		t.Fatalf("Expected 2 responses in history, got %d", len(run.Responses))
	}
	if run.LastResponse != second {
		t.Errorf("Expected last response %q, got %+v", second.ID, run.LastResponse)
	}
}

func TestAddRequest_AppendsHistory(t *testing.T) {
	run := New()

	run.AddRequest(&ai.ChatRequest{Model: "gpt-4o-mini"})
	run.AddRequest(&ai.ChatRequest{Model: "gpt-4o"})

	if len(run.Requests) != 2 {
		t.Fatalf("Expected 2 requests in history, got %d", len(run.Requests))
	}
	if run.Requests[1].Model != "gpt-4o" {
		t.Errorf("Expected second request model gpt-4o, got %s", run.Requests[1].Model)
	}
}

func TestAddToolCalls_CountsByName(t *testing.T) {
	run := New()

	run.AddToolCalls([]ai.ToolCall{
		{Function: ai.ToolCallFunction{Name: "search"}},
		{Function: ai.ToolCallFunction{Name: "calculator"}},
	})
	run.AddToolCalls([]ai.ToolCall{
		{Function: ai.ToolCallFunction{Name: "search"}},
	})
	run.AddToolCalls(nil)

	if run.ToolCallStats["search"] != 2 {
		t.Errorf("Expected 2 search calls, got %d", run.ToolCallStats["search"])
	}
	if run.ToolCallStats["calculator"] != 1 {
		t.Errorf("Expected 1 calculator call, got %d", run.ToolCallStats["calculator"])
	}
}

func TestAddToolExecutionCost_AccumulatesPerTool(t *testing.T) {
	run := New()

	run.AddToolExecutionCost("search", &cost.ToolCost{Amount: 0.005})
	run.AddToolExecutionCost("search", &cost.ToolCost{Amount: 0.003})
	run.AddToolExecutionCost("calculator", &cost.ToolCost{Amount: 0.001})
	run.AddToolExecutionCost("free-tool", nil)

	if got := run.ToolCosts["search"]; got != 0.005+0.003 {
		t.Errorf("Expected accumulated search cost 0.008, got %f", got)
	}
	if got := run.ToolCosts["calculator"]; got != 0.001 {
		t.Errorf("Expected calculator cost 0.001, got %f", got)
	}
	if _, tracked := run.ToolCosts["free-tool"]; tracked {
		t.Error("Expected tools without cost metadata to stay untracked")
	}
}

// ========== Cost summary ==========

func TestCostSummary_ModelAndToolBreakdown(t *testing.T) {
	run := New()
	run.SetModelCost(&cost.ModelCost{
		InputCostPerMillion:       2.50,
		OutputCostPerMillion:      10.00,
		CachedInputCostPerMillion: 1.25,
		ReasoningCostPerMillion:   5.00,
	})
	run.IncludeUsage(&ai.Usage{
		PromptTokens:     1_000_000,
		CompletionTokens: 500_000,
		CachedTokens:     200_000,
		ReasoningTokens:  100_000,
	})
	run.AddToolCalls([]ai.ToolCall{
		{Function: ai.ToolCallFunction{Name: "search"}},
		{Function: ai.ToolCallFunction{Name: "search"}},
	})
	run.AddToolExecutionCost("search", &cost.ToolCost{Amount: 0.01})
	run.AddToolExecutionCost("search", &cost.ToolCost{Amount: 0.01})

	summary := run.CostSummary()

	if summary.ModelInputCost != 2.50 {
		t.Errorf("Expected model input cost 2.50, got %f", summary.ModelInputCost)
	}
	if summary.ModelOutputCost != 5.00 {
		t.Errorf("Expected model output cost 5.00, got %f", summary.ModelOutputCost)
	}
	if summary.ModelCachedCost != 0.25 {
		t.Errorf("Expected model cached cost 0.25, got %f", summary.ModelCachedCost)
	}
	if summary.ModelReasoningCost != 0.50 {
		t.Errorf("Expected model reasoning cost 0.50, got %f", summary.ModelReasoningCost)
	}
	if summary.TotalModelCost != 8.25 {
		t.Errorf("Expected total model cost 8.25, got %f", summary.TotalModelCost)
	}
	if summary.TotalToolCost != 0.02 {
		t.Errorf("Expected total tool cost 0.02, got %f", summary.TotalToolCost)
	}
	if summary.ToolExecutionCount["search"] != 2 {
		t.Errorf("Expected 2 recorded search executions, got %d", summary.ToolExecutionCount["search"])
	}
	if math.Abs(summary.TotalCost-8.27) > 1e-9 {
		t.Errorf("Expected grand total 8.27, got %f", summary.TotalCost)
	}
	if summary.Currency != "USD" {
		t.Errorf("Expected USD currency, got %s", summary.Currency)
	}
}

func TestCostSummary_WithoutModelCost(t *testing.T) {
	run := New()
	run.IncludeUsage(&ai.Usage{PromptTokens: 1_000_000, TotalTokens: 1_000_000})
	run.AddToolExecutionCost("search", &cost.ToolCost{Amount: 0.01})

	summary := run.CostSummary()

	if summary.TotalModelCost != 0 {
		t.Errorf("Expected zero model cost without pricing, got %f", summary.TotalModelCost)
	}
	if summary.TotalCost != 0.01 {
		t.Errorf("Expected grand total 0.01, got %f", summary.TotalCost)
	}
}

func TestTotalCost_MatchesSummary(t *testing.T) {
	run := New()
	run.SetModelCost(&cost.ModelCost{InputCostPerMillion: 2.50})
	run.IncludeUsage(&ai.Usage{PromptTokens: 1_000_000})

	if got := run.TotalCost(); got != 2.50 {
		t.Errorf("Expected total cost 2.50, got %f", got)
	}
}
