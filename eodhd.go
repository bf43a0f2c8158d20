package hedgesim

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/PaesslerAG/jsonpath"

	"hedgesim/date"
)

// This file contains functions to access the EODHD API.

const eodhd_api_key = "EODHD_API_KEY"

var eodhdApiFlag = flag.String("eodhd-api-key", "", "EODHD API key to use for fetching prices from EODHD.com.\n If missing it will read for the environment variable \""+eodhd_api_key+"\". You can get one at https://eodhd.com/")

func eodhdApiKey() string {
	// If the flag is not set, we try to read it from the environment variable.
	if *eodhdApiFlag == "" {
		*eodhdApiFlag = os.Getenv(eodhd_api_key)
	}
	return *eodhdApiFlag
}

// eodhdDaily returns the daily close prices for a given ticker, adjusted for
// splits, over an inclusive range.
func eodhdDaily(apiKey, ticker string, r date.Range) (close date.History[float64], err error) {
	// https://eodhd.com/api/eod/NVD.F?api_token=xxx&fmt=json
	// [
	//
	//	{
	//		"date": "2024-02-13",
	//		"open": 675.066,
	//		"high": 684.219,
	//		"low": 648.659,
	//		"close": 668.445,
	//		"adjusted_close": 67.705,
	//		"volume": 0
	//	  },

	addr := fmt.Sprintf("https://eodhd.com/api/eod/%s?fmt=json&api_token=%s&from=%s&to=%s", ticker, apiKey, r.From, r.To)
	type Info struct {
		Date  date.Date `json:"date"`
		Close float64   `json:"adjusted_close"`
	}

	// that's the payload
	content := make([]Info, 0)
	if err := jwget(daily(), addr, &content); err != nil {
		return close, err
	}

	for _, info := range content {
		close.Append(info.Date, info.Close)
	}
	return close, nil
}

// eodhdLatest returns the live close from the real-time endpoint, for days
// where the end-of-day feed has no bar yet.
func eodhdLatest(apiKey, ticker string) (float64, error) {
	// https://eodhd.com/api/real-time/AAPL.US?api_token=xxx&fmt=json
	// { "code": "AAPL.US", "timestamp": 1700000000, "close": 189.71, ... }
	addr := fmt.Sprintf("https://eodhd.com/api/real-time/%s?fmt=json&api_token=%s", ticker, apiKey)
	var jobj any
	if err := jwget(new(http.Client), addr, &jobj); err != nil {
		return 0, fmt.Errorf("error in wget %q: %w", ticker, err)
	}
	path := "$.close"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %q %w", ticker, path, err)
	}
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("error parsing %q: %q %s %v", ticker, path, "not a float", jval)
	}
	return val, nil
}

// FetchEODHD downloads daily closes for all tickers over the period, widened
// by the prefetch margin, into an in-memory PriceHistory. When the period
// runs up to today it tops up today's value from the real-time endpoint, best
// effort.
func FetchEODHD(tickers []string, period date.Range) (*PriceHistory, error) {
	apiKey := eodhdApiKey()
	if apiKey == "" {
		return nil, fmt.Errorf("an EODHD API key is required, set -eodhd-api-key or %s", eodhd_api_key)
	}

	today := date.Today()
	fetch := prefetchRange(period)
	prices := NewPriceHistory()
	for _, ticker := range tickers {
		closes, err := eodhdDaily(apiKey, ticker, fetch)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", ticker, err)
		}
		for on, v := range closes.Values() {
			prices.Append(ticker, on, v)
		}
		if _, ok := prices.Close(ticker, today); !ok && period.Contains(today) {
			v, err := eodhdLatest(apiKey, ticker)
			if err != nil {
				log.Printf("no intraday value for %s (ignored): %v", ticker, err)
				continue
			}
			prices.Append(ticker, today, v)
		}
	}
	return prices, nil
}
