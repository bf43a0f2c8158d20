package hedgesim

import (
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"hedgesim/date"
)

// This file contains functions to access the Alpaca market data API.
// Credentials come from the standard APCA_API_KEY_ID and APCA_API_SECRET_KEY
// environment variables, read by the client itself.

// alpacaDaily returns the daily close prices for a ticker over an inclusive
// range, adjusted for splits.
func alpacaDaily(client *marketdata.Client, ticker string, r date.Range) (close date.History[float64], err error) {
	bars, err := client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.Split,
		Start:      r.From.Time(),
		End:        r.To.Time().Add(24 * time.Hour),
	})
	if err != nil {
		return close, err
	}
	for _, b := range bars {
		on := date.New(b.Timestamp.UTC().Date())
		close.Append(on, b.Close)
	}
	return close, nil
}

// FetchAlpaca downloads daily closes for all tickers over the period, widened
// by the prefetch margin, into an in-memory PriceHistory.
func FetchAlpaca(tickers []string, period date.Range) (*PriceHistory, error) {
	client := marketdata.NewClient(marketdata.ClientOpts{})
	fetch := prefetchRange(period)
	prices := NewPriceHistory()
	for _, ticker := range tickers {
		closes, err := alpacaDaily(client, ticker, fetch)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", ticker, err)
		}
		for on, v := range closes.Values() {
			prices.Append(ticker, on, v)
		}
	}
	return prices, nil
}
