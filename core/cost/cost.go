package cost

import (
	"fmt"
	"strings"
)

const tokensPerMillion = 1_000_000.0

// ModelCost is the pricing of a language model, in USD per million tokens.
// Cached-input and reasoning rates are optional: providers that do not
// discount cache hits or bill chain-of-thought leave them at zero.
type ModelCost struct {
	InputCostPerMillion  float64 `json:"input_cost_per_million"`
	OutputCostPerMillion float64 `json:"output_cost_per_million"`

	// CachedInputCostPerMillion prices input tokens served from the
	// provider's prompt cache.
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million,omitempty"`

	// ReasoningCostPerMillion prices reasoning tokens of models that bill
	// their thinking separately.
	ReasoningCostPerMillion float64 `json:"reasoning_cost_per_million,omitempty"`
}

// CalculateInputCost prices the given number of input tokens.
func (m ModelCost) CalculateInputCost(tokens int) float64 {
	return float64(tokens) / tokensPerMillion * m.InputCostPerMillion
}

// CalculateOutputCost prices the given number of output tokens.
func (m ModelCost) CalculateOutputCost(tokens int) float64 {
	return float64(tokens) / tokensPerMillion * m.OutputCostPerMillion
}

// CalculateCachedCost prices the given number of cached input tokens.
func (m ModelCost) CalculateCachedCost(tokens int) float64 {
	return float64(tokens) / tokensPerMillion * m.CachedInputCostPerMillion
}

// CalculateReasoningCost prices the given number of reasoning tokens.
func (m ModelCost) CalculateReasoningCost(tokens int) float64 {
	return float64(tokens) / tokensPerMillion * m.ReasoningCostPerMillion
}

// CalculateTotalCost prices a whole exchange. Cached and reasoning tokens
// contribute only when both a rate and a token count are present, so models
// without those price lines never add spurious zero-rate terms.
func (m ModelCost) CalculateTotalCost(inputTokens, outputTokens, cachedTokens, reasoningTokens int) float64 {
	total := m.CalculateInputCost(inputTokens)
	total += m.CalculateOutputCost(outputTokens)

	if m.CachedInputCostPerMillion > 0 && cachedTokens > 0 {
		total += m.CalculateCachedCost(cachedTokens)
	}
	if m.ReasoningCostPerMillion > 0 && reasoningTokens > 0 {
		total += m.CalculateReasoningCost(reasoningTokens)
	}
	return total
}

// String renders the two headline rates.
func (m ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		m.InputCostPerMillion, m.OutputCostPerMillion)
}

// ToolCost prices one execution of a tool and optionally describes how the
// tool performs, so cost-aware selection can weigh price against quality.
//
//	cost.ToolCost{
//	    Amount:      0.001,
//	    Currency:    "USD",
//	    Description: "per API call",
//	    Accuracy:    0.95,
//	    Speed:       1.2,
//	}
type ToolCost struct {
	// Amount is charged once per call.
	Amount float64 `json:"amount"`

	// Currency is a currency code or a custom unit such as "credits".
	// Empty means USD.
	Currency string `json:"currency,omitempty"`

	// Description qualifies what the amount covers, e.g. "per search query".
	Description string `json:"description,omitempty"`

	// Accuracy is a reliability score from 0 to 1.
	Accuracy float64 `json:"accuracy,omitempty"`

	// Speed is the average execution time in seconds.
	Speed float64 `json:"speed,omitempty"`

	// Quality is a composite quality score from 0 to 1.
	Quality float64 `json:"quality,omitempty"`
}

// String renders the amount with its currency and, when present, the
// description: "0.005000 USD (per search query)".
func (t ToolCost) String() string {
	currency := t.Currency
	if currency == "" {
		currency = "USD"
	}

	rendered := fmt.Sprintf("%.6f %s", t.Amount, currency)
	if t.Description != "" {
		rendered = fmt.Sprintf("%s (%s)", rendered, t.Description)
	}
	return rendered
}

// MetricsString renders the quality metrics that are set, comma separated:
// "Accuracy: 95.0%, Speed: 1.20s, Quality: 80.0%". Unset metrics are
// omitted; with none set the result is empty.
func (t ToolCost) MetricsString() string {
	var parts []string
	if t.Accuracy > 0 {
		parts = append(parts, fmt.Sprintf("Accuracy: %.1f%%", t.Accuracy*100))
	}
	if t.Speed > 0 {
		parts = append(parts, fmt.Sprintf("Speed: %.2fs", t.Speed))
	}
	if t.Quality > 0 {
		parts = append(parts, fmt.Sprintf("Quality: %.1f%%", t.Quality*100))
	}
	return strings.Join(parts, ", ")
}

// CostEffectivenessScore is quality per unit cost, with accuracy standing in
// when no quality score is set. Free tools and tools without any quality
// signal score zero, since there is no ratio to rank them by.
func (t ToolCost) CostEffectivenessScore() float64 {
	if t.Amount == 0 {
		return 0
	}

	quality := t.Quality
	if quality == 0 {
		quality = t.Accuracy
	}
	if quality == 0 {
		return 0
	}
	return quality / t.Amount
}

// CostSummary breaks down everything a conversation spent: per-tool
// accumulated charges and call counts, the model cost per token kind, and
// the grand total.
type CostSummary struct {
	ToolCosts          map[string]float64 `json:"tool_costs,omitempty"`
	ToolExecutionCount map[string]int     `json:"tool_execution_count,omitempty"`
	TotalToolCost      float64            `json:"total_tool_cost"`

	ModelInputCost     float64 `json:"model_input_cost"`
	ModelOutputCost    float64 `json:"model_output_cost"`
	ModelCachedCost    float64 `json:"model_cached_cost"`
	ModelReasoningCost float64 `json:"model_reasoning_cost"`
	TotalModelCost     float64 `json:"total_model_cost"`

	// TotalCost is tool and model spend combined.
	TotalCost float64 `json:"total_cost"`

	// Currency of all amounts above. Tool costs in other units are still
	// accumulated numerically.
	Currency string `json:"currency"`
}

// OptimizationStrategy names what the model should optimize for when several
// tools could serve a request. It is rendered into the system prompt next to
// the tool cost table.
type OptimizationStrategy string

const (
	// OptimizeForCost prefers the cheapest capable tool.
	OptimizeForCost OptimizationStrategy = "cost"

	// OptimizeForAccuracy prefers the most reliable tool.
	OptimizeForAccuracy OptimizationStrategy = "accuracy"

	// OptimizeForSpeed prefers the fastest tool.
	OptimizeForSpeed OptimizationStrategy = "speed"

	// OptimizeForQuality prefers the highest overall quality score.
	OptimizeForQuality OptimizationStrategy = "quality"

	// OptimizeBalanced weighs cost, accuracy, and speed evenly.
	OptimizeBalanced OptimizationStrategy = "balanced"

	// OptimizeCostEffective prefers the best quality-to-cost ratio.
	OptimizeCostEffective OptimizationStrategy = "cost_effective"
)

func (s OptimizationStrategy) String() string {
	return string(s)
}
