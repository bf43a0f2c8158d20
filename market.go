package hedgesim

import (
	"hedgesim/date"
)

// prefetchMargin is how many extra calendar days around the simulated period
// the fetchers download, so boundary fallbacks never miss the prefetch.
const prefetchMargin = 10

// PriceHistory is an in-memory PriceSource: one chronological series of daily
// closes per ticker, filled once by a fetcher (or by hand in tests) and then
// served without I/O.
type PriceHistory struct {
	closes map[string]*date.History[float64]
}

// NewPriceHistory returns an empty price history.
func NewPriceHistory() *PriceHistory {
	return &PriceHistory{closes: make(map[string]*date.History[float64])}
}

// Append records the close for a ticker on a day, overwriting any previous
// value for that day.
func (h *PriceHistory) Append(ticker string, on date.Date, close float64) {
	series, ok := h.closes[ticker]
	if !ok {
		series = &date.History[float64]{}
		h.closes[ticker] = series
	}
	series.Append(on, close)
}

// Close returns the close for a ticker on that exact day.
func (h *PriceHistory) Close(ticker string, on date.Date) (float64, bool) {
	series, ok := h.closes[ticker]
	if !ok {
		return 0, false
	}
	return series.Get(on)
}

// CloseAsOf returns the close on that day or the most recent one before it,
// regardless of how far back it is.
func (h *PriceHistory) CloseAsOf(ticker string, on date.Date) (float64, bool) {
	series, ok := h.closes[ticker]
	if !ok {
		return 0, false
	}
	return series.ValueAsOf(on)
}

// Len returns the number of recorded closes for a ticker.
func (h *PriceHistory) Len(ticker string) int {
	series, ok := h.closes[ticker]
	if !ok {
		return 0
	}
	return series.Len()
}

// prefetchRange widens the simulated period by the prefetch margin on both
// sides.
func prefetchRange(period date.Range) date.Range {
	return date.Range{From: period.From.Add(-prefetchMargin), To: period.To.Add(prefetchMargin)}
}

var _ PriceSource = (*PriceHistory)(nil)
