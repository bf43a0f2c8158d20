package hedgesim

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"hedgesim/date"
)

// Batch runs one independent simulation per ticker: each gets its own
// portfolio with the full initial capital, so tickers can be compared on
// equal footing. One ticker failing does not abort the others.
type Batch struct {
	Prices    PriceSource
	Decisions DecisionSource

	Tickers           []string
	Period            date.Range
	InitialCapital    Money
	MarginRequirement decimal.Decimal
	DisableShorts     bool
}

// Run executes all per-ticker simulations in order and returns the results
// that succeeded, together with the joined errors of those that did not.
func (b *Batch) Run(ctx context.Context) ([]*Result, error) {
	if len(b.Tickers) == 0 {
		return nil, errors.New("no tickers to simulate")
	}

	var results []*Result
	var errs []error
	for _, ticker := range b.Tickers {
		log.Printf("running %s over %s", ticker, b.Period)
		run := &Backtester{
			Prices:            b.Prices,
			Decisions:         b.Decisions,
			Tickers:           []string{ticker},
			Period:            b.Period,
			InitialCapital:    b.InitialCapital,
			MarginRequirement: b.MarginRequirement,
			DisableShorts:     b.DisableShorts,
		}
		res, err := run.Run(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ticker, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
