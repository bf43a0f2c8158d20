package hedgesim

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Action is a trading instruction applied to a portfolio.
type Action int

const (
	// Hold leaves the portfolio untouched.
	Hold Action = iota
	// Buy opens or grows a long position.
	Buy
	// Sell closes part or all of a long position.
	Sell
	// Short opens or grows a short position, posting margin.
	Short
	// Cover closes part or all of a short position, releasing margin.
	Cover
)

func (a Action) String() string {
	switch a {
	case Hold:
		return "hold"
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Short:
		return "short"
	case Cover:
		return "cover"
	default:
		return "unknown"
	}
}

// ParseAction parses a string into an Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "hold", "":
		return Hold, nil
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	case "short":
		return Short, nil
	case "cover":
		return Cover, nil
	default:
		return Hold, fmt.Errorf("unknown action: %q", s)
	}
}

func (a Action) MarshalJSON() ([]byte, error) { return []byte(`"` + a.String() + `"`), nil }

func (a *Action) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Execute applies one trading instruction to the portfolio and returns the
// number of shares actually traded.
//
// Execute never fails on a valid portfolio: insufficient cash or margin
// degrades to a smaller (possibly zero) fill, and invalid input (negative
// quantity, non-positive price, unknown action) is a no-op returning 0. A
// backtest must not crash mid-run on a single bad instruction; callers read
// the outcome from the returned quantity.
func (p *Portfolio) Execute(ticker string, action Action, quantity int64, price Money) int64 {
	if quantity <= 0 || !price.IsPositive() {
		return 0
	}

	switch action {
	case Buy:
		return p.buy(ticker, quantity, price)
	case Sell:
		return p.sell(ticker, quantity, price)
	case Short:
		return p.short(ticker, quantity, price)
	case Cover:
		return p.cover(ticker, quantity, price)
	default:
		return 0
	}
}

// buy fills as much of the requested quantity as cash allows.
func (p *Portfolio) buy(ticker string, quantity int64, price Money) int64 {
	cost := price.Mul(quantity)
	if cost.GreaterThan(p.cash) {
		// Partial fill at whatever cash can pay for. This is policy, not a
		// failure: the run continues with the smaller position.
		quantity = p.cash.Shares(price)
		if quantity <= 0 {
			return 0
		}
		cost = price.Mul(quantity)
	}

	pos := p.position(ticker)
	pos.LongCostBasis = weightedBasis(pos.LongCostBasis, pos.LongShares, price, quantity)
	pos.LongShares += quantity
	p.cash = p.cash.Sub(cost)
	return quantity
}

// sell disposes of up to the held long shares and realizes the gain against
// the weighted-average cost basis.
func (p *Portfolio) sell(ticker string, quantity int64, price Money) int64 {
	pos := p.position(ticker)
	if quantity > pos.LongShares {
		quantity = pos.LongShares
	}
	if quantity <= 0 {
		return 0
	}

	gain := price.Sub(pos.LongCostBasis).Mul(quantity)
	p.gains[ticker].Long = p.gains[ticker].Long.Add(gain)

	pos.LongShares -= quantity
	p.cash = p.cash.Add(price.Mul(quantity))
	if pos.LongShares == 0 {
		pos.LongCostBasis = M(0, p.cash.Currency())
	}
	return quantity
}

// short opens a short position, posting margin out of cash. The net cash
// effect is +proceeds -margin.
func (p *Portfolio) short(ticker string, quantity int64, price Money) int64 {
	proceeds := price.Mul(quantity)
	margin := proceeds.Scale(p.marginRequirement)
	if margin.GreaterThan(p.cash) {
		if p.marginRequirement.IsZero() {
			// With a zero requirement the posted margin is zero and always
			// affordable, so this branch means no shorting at all.
			return 0
		}
		quantity = p.cash.Shares(price.Scale(p.marginRequirement))
		if quantity <= 0 {
			return 0
		}
		proceeds = price.Mul(quantity)
		margin = proceeds.Scale(p.marginRequirement)
	}

	pos := p.position(ticker)
	pos.ShortCostBasis = weightedBasis(pos.ShortCostBasis, pos.ShortShares, price, quantity)
	pos.ShortShares += quantity
	pos.ShortMarginUsed = pos.ShortMarginUsed.Add(margin)
	p.marginUsed = p.marginUsed.Add(margin)
	p.cash = p.cash.Add(proceeds).Sub(margin)
	return quantity
}

// cover closes up to the open short shares, realizes the gain, and releases
// margin in proportion to the covered fraction.
func (p *Portfolio) cover(ticker string, quantity int64, price Money) int64 {
	pos := p.position(ticker)
	sharesBefore := pos.ShortShares
	if quantity > sharesBefore {
		quantity = sharesBefore
	}
	if quantity <= 0 {
		return 0
	}

	gain := pos.ShortCostBasis.Sub(price).Mul(quantity)
	p.gains[ticker].Short = p.gains[ticker].Short.Add(gain)

	// Release the posted margin proportionally to the covered fraction.
	portion := decimal.NewFromInt(1)
	if sharesBefore > 0 {
		portion = decimal.NewFromInt(quantity).Div(decimal.NewFromInt(sharesBefore))
	}
	released := pos.ShortMarginUsed.Scale(portion)

	cost := price.Mul(quantity)
	p.cash = p.cash.Add(released).Sub(cost)

	pos.ShortShares -= quantity
	pos.ShortMarginUsed = pos.ShortMarginUsed.Sub(released)
	p.marginUsed = p.marginUsed.Sub(released)
	if pos.ShortShares == 0 {
		zero := M(0, p.cash.Currency())
		pos.ShortCostBasis = zero
		// Exact arithmetic leaves no residual margin here; subtracting it
		// keeps the global total equal to the per-ticker sum either way.
		p.marginUsed = p.marginUsed.Sub(pos.ShortMarginUsed)
		pos.ShortMarginUsed = zero
	}
	return quantity
}

// weightedBasis returns the share-weighted average of the old cost basis and
// the price of the newly traded shares.
func weightedBasis(oldBasis Money, oldShares int64, price Money, newShares int64) Money {
	total := oldShares + newShares
	if total <= 0 {
		return M(0, price.Currency())
	}
	return oldBasis.Mul(oldShares).Add(price.Mul(newShares)).Div(total)
}
