// Package overview tracks what a conversation did and what it cost. It
// collects token usage, tool call statistics, cost breakdowns, and the full
// request/response history produced while an [Overview] is attached to the
// context.
//
// Tracking is opt-in: attach an Overview with [Overview.ToContext] before
// calling the client, then read [Overview.CostSummary] once the exchange
// completes. Calls made without an Overview in the context record nothing.
package overview
