package hedgesim

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// Position is the per-ticker record of long and short share counts and their
// weighted-average cost bases.
//
// The cost basis fields are held at zero whenever the matching share count is
// zero: with no shares there is no basis to speak of.
type Position struct {
	LongShares     int64 `json:"long"`
	ShortShares    int64 `json:"short"`
	LongCostBasis  Money `json:"long_cost_basis"`  // weighted-average price paid per held long share
	ShortCostBasis Money `json:"short_cost_basis"` // weighted-average price received per open short share
	// ShortMarginUsed is the margin currently posted against this ticker's
	// open shorts.
	ShortMarginUsed Money `json:"short_margin_used"`
}

// IsFlat reports whether the position holds no shares, long or short.
func (p Position) IsFlat() bool { return p.LongShares == 0 && p.ShortShares == 0 }

// RealizedGains is the cumulative realized profit and loss for one ticker.
// It changes only when a long is sold or a short is covered.
type RealizedGains struct {
	Long  Money `json:"long"`
	Short Money `json:"short"`
}

// Portfolio is the single mutable state of a simulation run: cash, margin,
// and one Position per ticker. It is created once per run and mutated only
// through Execute; valuation and reporting read it.
//
// A Portfolio is exclusively owned by one run. Independent runs each get
// their own instance and need no locking.
type Portfolio struct {
	cash              Money
	marginUsed        Money
	marginRequirement decimal.Decimal // fraction of short proceeds posted as margin, in [0,1]
	positions         map[string]*Position
	gains             map[string]*RealizedGains
}

// NewPortfolio creates a portfolio with the given initial cash and short
// margin requirement, holding an empty position for each ticker.
func NewPortfolio(initialCash Money, marginRequirement decimal.Decimal, tickers ...string) (*Portfolio, error) {
	if initialCash.IsNegative() {
		return nil, fmt.Errorf("initial cash %s cannot be negative", initialCash)
	}
	if marginRequirement.IsNegative() || marginRequirement.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("margin requirement %s must be in [0,1]", marginRequirement)
	}
	p := &Portfolio{
		cash:              initialCash,
		marginUsed:        M(0, initialCash.Currency()),
		marginRequirement: marginRequirement,
		positions:         make(map[string]*Position),
		gains:             make(map[string]*RealizedGains),
	}
	for _, ticker := range tickers {
		p.position(ticker)
	}
	return p, nil
}

// position returns the mutable position for a ticker, creating an empty one
// on first use.
func (p *Portfolio) position(ticker string) *Position {
	pos, ok := p.positions[ticker]
	if !ok {
		zero := M(0, p.cash.Currency())
		pos = &Position{LongCostBasis: zero, ShortCostBasis: zero, ShortMarginUsed: zero}
		p.positions[ticker] = pos
		p.gains[ticker] = &RealizedGains{Long: zero, Short: zero}
	}
	return pos
}

// Cash returns the current cash balance. It never goes negative: operations
// that would overdraw degrade to partial fills instead.
func (p *Portfolio) Cash() Money { return p.cash }

// MarginUsed returns the total margin posted against open shorts, across all
// tickers.
func (p *Portfolio) MarginUsed() Money { return p.marginUsed }

// MarginRequirement returns the fraction of short proceeds posted as margin,
// fixed for the run.
func (p *Portfolio) MarginRequirement() decimal.Decimal { return p.marginRequirement }

// Position returns a copy of the position for a ticker. An unknown ticker
// yields an empty position.
func (p *Portfolio) Position(ticker string) Position {
	if pos, ok := p.positions[ticker]; ok {
		return *pos
	}
	zero := M(0, p.cash.Currency())
	return Position{LongCostBasis: zero, ShortCostBasis: zero, ShortMarginUsed: zero}
}

// RealizedGains returns a copy of the cumulative realized gains for a ticker.
func (p *Portfolio) RealizedGains(ticker string) RealizedGains {
	if g, ok := p.gains[ticker]; ok {
		return *g
	}
	zero := M(0, p.cash.Currency())
	return RealizedGains{Long: zero, Short: zero}
}

// Tickers iterates over all tickers known to the portfolio, in sorted order.
func (p *Portfolio) Tickers() iter.Seq[string] {
	return func(yield func(string) bool) {
		tickers := slices.Collect(maps.Keys(p.positions))
		slices.Sort(tickers)
		for _, ticker := range tickers {
			if !yield(ticker) {
				return
			}
		}
	}
}

// Snapshot returns a read-only copy of the whole portfolio state, the shape
// handed to decision sources.
func (p *Portfolio) Snapshot() PortfolioSnapshot {
	snap := PortfolioSnapshot{
		Cash:              p.cash,
		MarginUsed:        p.marginUsed,
		MarginRequirement: p.marginRequirement.InexactFloat64(),
		Positions:         make(map[string]Position, len(p.positions)),
		RealizedGains:     make(map[string]RealizedGains, len(p.gains)),
	}
	for ticker := range p.Tickers() {
		snap.Positions[ticker] = p.Position(ticker)
		snap.RealizedGains[ticker] = p.RealizedGains(ticker)
	}
	return snap
}

// PortfolioSnapshot is the read-only view of a Portfolio passed to external
// decision sources, together with the advisory risk limits computed for the
// current decision point.
type PortfolioSnapshot struct {
	Cash              Money                    `json:"cash"`
	MarginUsed        Money                    `json:"margin_used"`
	MarginRequirement float64                  `json:"margin_requirement"`
	Positions         map[string]Position      `json:"positions"`
	RealizedGains     map[string]RealizedGains `json:"realized_gains"`
	RiskLimits        map[string]RiskLimit     `json:"risk_limits,omitempty"`
}
