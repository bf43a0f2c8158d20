package hedgesim

import "github.com/shopspring/decimal"

// PositionLimitRatio is the concentration cap: no single ticker should exceed
// this fraction of total portfolio value.
const PositionLimitRatio = 0.20

// RiskLimit is the advisory sizing information computed per ticker at a
// decision point and handed to the decision source alongside the portfolio
// snapshot. It is advice, not enforcement: Execute applies its own cash and
// margin constraints regardless.
type RiskLimit struct {
	// RemainingLimit is how much more money can be put into this ticker
	// before hitting the concentration cap, clipped to available cash.
	RemainingLimit Money `json:"remaining_position_limit"`
	// CurrentPrice is the close used to compute the exposure.
	CurrentPrice Money `json:"current_price"`
}

// RemainingLimit computes the advisory headroom for one ticker: the
// concentration cap minus the current net absolute exposure, clipped to cash
// and floored at zero.
func RemainingLimit(portfolioValue, cash Money, pos Position, price Money) Money {
	zero := M(0, cash.Currency())
	if !price.IsPositive() || !portfolioValue.IsPositive() {
		return zero
	}

	limit := portfolioValue.Scale(decimal.NewFromFloat(PositionLimitRatio))

	// Net exposure: a hedged long+short nets out rather than summing.
	exposure := price.Mul(pos.LongShares - pos.ShortShares)
	if exposure.IsNegative() {
		exposure = exposure.Neg()
	}

	remaining := limit.Sub(exposure)
	if remaining.GreaterThan(cash) {
		remaining = cash
	}
	if remaining.IsNegative() {
		return zero
	}
	return remaining
}

// RiskLimits computes the advisory limit for every ticker in the price
// snapshot, against the portfolio valued at those same prices.
func (p *Portfolio) RiskLimits(prices map[string]Money) map[string]RiskLimit {
	value, _ := p.Value(prices)
	limits := make(map[string]RiskLimit, len(prices))
	for ticker, price := range prices {
		limits[ticker] = RiskLimit{
			RemainingLimit: RemainingLimit(value, p.cash, p.Position(ticker), price),
			CurrentPrice:   price,
		}
	}
	return limits
}
