package hedgesim

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"hedgesim/date"
)

// EqualWeight is the buy-and-hold reference strategy: it splits the initial
// capital equally across the tickers at the start of the period, buys whole
// shares, and values everything at the end. It uses the same price fallback
// rules as Backtester, so the two are directly comparable.
type EqualWeight struct {
	Prices PriceSource

	Tickers        []string
	Period         date.Range
	InitialCapital Money
}

// TickerReturn is the buy-and-hold outcome for one ticker.
type TickerReturn struct {
	Ticker     string  `json:"ticker"`
	Shares     int64   `json:"shares"`
	StartPrice Money   `json:"start_price"`
	EndPrice   Money   `json:"end_price"`
	Invested   Money   `json:"invested"`
	FinalValue Money   `json:"final_value"`
	Return     Percent `json:"return"`
}

// EqualWeightResult is the performance summary of a buy-and-hold run,
// including the spread statistics across tickers.
type EqualWeightResult struct {
	Period         date.Range     `json:"period"`
	InitialCapital Money          `json:"initial_capital"`
	FinalValue     Money          `json:"final_value"`
	TotalReturn    Percent        `json:"total_return"`
	Positions      []TickerReturn `json:"positions"`

	AverageReturn Percent `json:"average_return"`
	BestReturn    Percent `json:"best_return"`
	BestTicker    string  `json:"best_ticker"`
	WorstReturn   Percent `json:"worst_return"`
	WorstTicker   string  `json:"worst_ticker"`
	StdDev        Percent `json:"std_dev"`
}

// Run buys at the start of the period and values at the end. Price lookups
// come from a prefetched source, so nothing blocks.
func (b *EqualWeight) Run() (*EqualWeightResult, error) {
	if len(b.Tickers) == 0 {
		return nil, errors.New("no tickers to simulate")
	}
	if b.Prices == nil {
		return nil, errors.New("price source is required")
	}
	if b.Period.From.After(b.Period.To) {
		return nil, fmt.Errorf("invalid period %s", b.Period)
	}

	tickers := slices.Clone(b.Tickers)
	slices.Sort(tickers)

	currency := b.InitialCapital.Currency()
	budget := b.InitialCapital.Div(int64(len(tickers)))

	cash := b.InitialCapital
	final := M(0, currency)
	positions := make([]TickerReturn, 0, len(tickers))
	for _, ticker := range tickers {
		start, err := latestClose(b.Prices, ticker, b.Period.From, currency)
		if err != nil {
			return nil, err
		}
		end, err := latestClose(b.Prices, ticker, b.Period.To, currency)
		if err != nil {
			return nil, err
		}

		// Whole shares only; whatever the budget cannot buy stays in cash.
		shares := budget.Shares(start)
		invested := start.Mul(shares)
		value := end.Mul(shares)
		cash = cash.Sub(invested)
		final = final.Add(value)

		positions = append(positions, TickerReturn{
			Ticker:     ticker,
			Shares:     shares,
			StartPrice: start,
			EndPrice:   end,
			Invested:   invested,
			FinalValue: value,
			Return:     rate(start, end),
		})
	}
	final = final.Add(cash)

	res := &EqualWeightResult{
		Period:         b.Period,
		InitialCapital: b.InitialCapital,
		FinalValue:     final,
		TotalReturn:    rate(b.InitialCapital, final),
		Positions:      positions,
	}
	res.stats()
	return res, nil
}

// stats fills in the cross-ticker return statistics.
func (r *EqualWeightResult) stats() {
	if len(r.Positions) == 0 {
		return
	}

	best, worst := r.Positions[0], r.Positions[0]
	var sum float64
	for _, p := range r.Positions {
		sum += float64(p.Return)
		if p.Return > best.Return {
			best = p
		}
		if p.Return < worst.Return {
			worst = p
		}
	}
	mean := sum / float64(len(r.Positions))

	var variance float64
	for _, p := range r.Positions {
		d := float64(p.Return) - mean
		variance += d * d
	}
	variance /= float64(len(r.Positions))

	r.AverageReturn = Percent(mean)
	r.BestReturn, r.BestTicker = best.Return, best.Ticker
	r.WorstReturn, r.WorstTicker = worst.Return, worst.Ticker
	r.StdDev = Percent(math.Sqrt(variance))
}
