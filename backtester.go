package hedgesim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/shopspring/decimal"

	"hedgesim/date"
)

// ErrNoPrice reports that no close price could be found for a ticker at a
// required date, even after falling back to earlier trading days. It is fatal
// to the run: valuation without full price coverage is undefined.
var ErrNoPrice = errors.New("no price available")

// priceFallbackDays bounds how many calendar days before a required date the
// driver scans for the latest available close.
const priceFallbackDays = 5

// A PriceSource serves daily close prices. Implementations are expected to be
// cheap per lookup (prefetched or cached); the driver calls them freely.
type PriceSource interface {
	// Close returns the closing price for the ticker on that exact day, or
	// false if the day has no bar (weekend, holiday, missing data).
	Close(ticker string, on date.Date) (float64, bool)
}

// A DecisionSource turns the state of a run into per-ticker trading
// instructions. Implementations range from a canned table in tests to an LLM
// in the agent package.
type DecisionSource interface {
	Decide(ctx context.Context, req DecisionRequest) (map[string]Decision, error)
}

// DecisionRequest is everything a decision source gets to see: the tickers
// under consideration, the simulated period, the current portfolio with its
// advisory risk limits, and the latest known close prices.
type DecisionRequest struct {
	Tickers   []string          `json:"tickers"`
	Period    date.Range        `json:"period"`
	Portfolio PortfolioSnapshot `json:"portfolio"`
	Prices    map[string]Money  `json:"prices"`
}

// Decision is one instruction for one ticker.
type Decision struct {
	Action     Action  `json:"action"`
	Quantity   int64   `json:"quantity"`
	Confidence float64 `json:"confidence,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// ExecutedDecision records what was asked and what actually happened, for the
// run report.
type ExecutedDecision struct {
	Ticker     string  `json:"ticker"`
	Action     Action  `json:"action"`
	Requested  int64   `json:"requested"`
	Executed   int64   `json:"executed"`
	Price      Money   `json:"price"`
	Confidence float64 `json:"confidence,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// Result is the performance summary of one run.
type Result struct {
	Period          date.Range         `json:"period"`
	Tickers         []string           `json:"tickers"`
	InitialCapital  Money              `json:"initial_capital"`
	FinalValue      Money              `json:"final_value"`
	TotalReturn     Percent            `json:"total_return"`
	AbsoluteReturn  Money              `json:"absolute_return"`
	BenchmarkReturn Percent            `json:"benchmark_return"`
	ExcessReturn    Percent            `json:"excess_return"`
	Decisions       []ExecutedDecision `json:"decisions"`
	StartPrices     map[string]Money   `json:"start_prices"`
	EndPrices       map[string]Money   `json:"end_prices"`
	Portfolio       PortfolioSnapshot  `json:"portfolio"`
}

// Backtester runs one simulation: a single decision point at the end of the
// period, measured against an equal-weighted buy-and-hold benchmark over the
// same period. Price and decision retrieval are injected; the driver owns the
// Portfolio for the duration of the run.
type Backtester struct {
	Prices    PriceSource
	Decisions DecisionSource

	Tickers           []string
	Period            date.Range
	InitialCapital    Money
	MarginRequirement decimal.Decimal

	// DisableShorts turns short and cover instructions into holds, for
	// long-only comparisons.
	DisableShorts bool
}

// Run executes the simulation and returns its performance summary.
//
// A ticker with no close price at the period boundaries, even after scanning
// back up to priceFallbackDays calendar days, aborts the run with an error
// wrapping ErrNoPrice.
func (b *Backtester) Run(ctx context.Context) (*Result, error) {
	if len(b.Tickers) == 0 {
		return nil, errors.New("no tickers to simulate")
	}
	if b.Prices == nil || b.Decisions == nil {
		return nil, errors.New("price and decision sources are required")
	}
	if b.Period.From.After(b.Period.To) {
		return nil, fmt.Errorf("invalid period %s", b.Period)
	}

	tickers := slices.Clone(b.Tickers)
	slices.Sort(tickers)

	portfolio, err := NewPortfolio(b.InitialCapital, b.MarginRequirement, tickers...)
	if err != nil {
		return nil, err
	}

	currency := b.InitialCapital.Currency()
	startPrices, err := closes(b.Prices, tickers, b.Period.From, currency)
	if err != nil {
		return nil, err
	}
	endPrices, err := closes(b.Prices, tickers, b.Period.To, currency)
	if err != nil {
		return nil, err
	}

	snapshot := portfolio.Snapshot()
	snapshot.RiskLimits = portfolio.RiskLimits(endPrices)

	decisions, err := b.Decisions.Decide(ctx, DecisionRequest{
		Tickers:   tickers,
		Period:    b.Period,
		Portfolio: snapshot,
		Prices:    endPrices,
	})
	if err != nil {
		return nil, fmt.Errorf("decision source: %w", err)
	}

	// Apply in ticker order so runs are reproducible whatever map order the
	// decision source returns.
	executed := make([]ExecutedDecision, 0, len(tickers))
	for _, ticker := range tickers {
		d := decisions[ticker]
		action := d.Action
		if b.DisableShorts && (action == Short || action == Cover) {
			action = Hold
		}
		price := endPrices[ticker]
		n := portfolio.Execute(ticker, action, d.Quantity, price)
		log.Printf("%s: %s %d of %d @ %s", ticker, action, n, d.Quantity, price)
		executed = append(executed, ExecutedDecision{
			Ticker:     ticker,
			Action:     action,
			Requested:  d.Quantity,
			Executed:   n,
			Price:      price,
			Confidence: d.Confidence,
			Reasoning:  d.Reasoning,
		})
	}

	finalValue, missing := portfolio.Value(endPrices)
	if len(missing) > 0 {
		return nil, fmt.Errorf("valuing %v: %w", missing, ErrNoPrice)
	}

	benchmark := benchmarkReturn(tickers, startPrices, endPrices)
	totalReturn := rate(b.InitialCapital, finalValue)

	return &Result{
		Period:          b.Period,
		Tickers:         tickers,
		InitialCapital:  b.InitialCapital,
		FinalValue:      finalValue,
		TotalReturn:     totalReturn,
		AbsoluteReturn:  finalValue.Sub(b.InitialCapital),
		BenchmarkReturn: benchmark,
		ExcessReturn:    totalReturn - benchmark,
		Decisions:       executed,
		StartPrices:     startPrices,
		EndPrices:       endPrices,
		Portfolio:       portfolio.Snapshot(),
	}, nil
}

// closes looks up the latest close for every ticker at the given day, and
// fails on the first ticker without one.
func closes(src PriceSource, tickers []string, on date.Date, currency string) (map[string]Money, error) {
	prices := make(map[string]Money, len(tickers))
	for _, ticker := range tickers {
		price, err := latestClose(src, ticker, on, currency)
		if err != nil {
			return nil, err
		}
		prices[ticker] = price
	}
	return prices, nil
}

// latestClose returns the close at 'on', or the most recent close in the few
// calendar days before it, skipping weekends.
func latestClose(src PriceSource, ticker string, on date.Date, currency string) (Money, error) {
	for i := 0; i <= priceFallbackDays; i++ {
		day := on.Add(-i)
		if day.IsWeekend() {
			continue
		}
		if v, ok := src.Close(ticker, day); ok && v > 0 {
			return M(v, currency), nil
		}
	}
	return Money{}, fmt.Errorf("%s at %s (scanned %d days back): %w", ticker, on, priceFallbackDays, ErrNoPrice)
}

// rate returns the percentage return from an initial to a final amount.
func rate(initial, final Money) Percent {
	if !initial.IsPositive() {
		return 0
	}
	return Percent((final.AsFloat()/initial.AsFloat() - 1) * 100)
}

// benchmarkReturn is the equal-weighted buy-and-hold benchmark: the mean of
// the per-ticker start to end returns.
func benchmarkReturn(tickers []string, start, end map[string]Money) Percent {
	var sum float64
	var n int
	for _, ticker := range tickers {
		s, e := start[ticker], end[ticker]
		if !s.IsPositive() {
			continue
		}
		sum += e.AsFloat()/s.AsFloat() - 1
		n++
	}
	if n == 0 {
		return 0
	}
	return Percent(sum / float64(n) * 100)
}
