// Package hedgesim simulates the financial outcome of a stream of trading
// decisions against historical market prices.
//
// The simulation core tracks cash, long and short share positions with
// weighted-average cost bases, margin posted against open shorts, and
// realized gains. A Backtester orchestrates a run: it asks an injected
// DecisionSource for per-ticker instructions, applies them to a Portfolio
// through Execute, values the result against an injected PriceSource, and
// reports performance against an equal-weighted buy-and-hold benchmark.
//
// Price and decision retrieval are collaborators, not part of the core:
// implementations for EODHD and Alpaca daily bars live in this package, and
// an LLM-backed decision source lives in the agent subpackage.
package hedgesim
