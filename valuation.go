package hedgesim

// Value computes the net liquidation value of the portfolio at the given
// price snapshot: cash plus the mark-to-market value of longs minus the
// mark-to-market exposure of shorts.
//
// Every ticker with a nonzero position should have a price in the snapshot.
// A missing one contributes zero and its ticker is returned in the second
// value so the caller can decide whether the valuation is usable.
func (p *Portfolio) Value(prices map[string]Money) (Money, []string) {
	total := p.cash
	var missing []string
	for ticker := range p.Tickers() {
		pos := p.positions[ticker]
		if pos.IsFlat() {
			continue
		}
		price, ok := prices[ticker]
		if !ok || !price.IsPositive() {
			missing = append(missing, ticker)
			continue
		}
		total = total.Add(price.Mul(pos.LongShares))
		total = total.Sub(price.Mul(pos.ShortShares))
	}
	return total, missing
}
