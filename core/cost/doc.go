// Package cost defines the pricing structures used to put a dollar figure on
// a conversation: per-token model rates, per-call tool costs, and the
// aggregated breakdown of both.
//
// The main types are [ModelCost] for per-token LLM pricing (including
// cached-token and reasoning-token rates), [ToolCost] for per-call tool cost
// and quality metadata, and [CostSummary] for the aggregated breakdown
// produced after an execution. [OptimizationStrategy] constants guide the
// model when it must choose among tools that differ in cost, accuracy, or
// speed.
package cost
