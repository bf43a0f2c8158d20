// Package renderer formats simulation results as markdown reports.
package renderer

import (
	"fmt"
	"strings"

	"hedgesim"
)

// ResultMarkdown renders a simulation run report.
func ResultMarkdown(res *hedgesim.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Backtest Report from %s to %s\n\n", res.Period.From, res.Period.To)

	fmt.Fprint(&b, "## Performance\n\n")
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Initial Capital | %s |\n", res.InitialCapital)
	fmt.Fprintf(&b, "| Final Value | %s |\n", res.FinalValue)
	fmt.Fprintf(&b, "| Total Return | %s |\n", res.TotalReturn.SignedString())
	fmt.Fprintf(&b, "| Absolute Return | %s |\n", res.AbsoluteReturn.SignedString())
	fmt.Fprintf(&b, "| Benchmark (buy and hold) | %s |\n", res.BenchmarkReturn.SignedString())
	fmt.Fprintf(&b, "| Excess Return | %s |\n", res.ExcessReturn.SignedString())

	fmt.Fprint(&b, "\n## Decisions\n\n")
	fmt.Fprintln(&b, "| Ticker | Action | Requested | Executed | Price | Confidence |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|")
	for _, d := range res.Decisions {
		confidence := "-"
		if d.Confidence > 0 {
			confidence = fmt.Sprintf("%.0f%%", d.Confidence)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s | %s |\n",
			d.Ticker, d.Action, d.Requested, d.Executed, d.Price, confidence)
	}

	fmt.Fprint(&b, "\n## Positions at End\n\n")
	fmt.Fprintln(&b, "| Ticker | Long | Short | Long Basis | Short Basis | Realized |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|")
	for ticker, pos := range res.Portfolio.Positions {
		gains := res.Portfolio.RealizedGains[ticker]
		realized := gains.Long.Add(gains.Short)
		if pos.IsFlat() && realized.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %s | %s | %s |\n",
			ticker, pos.LongShares, pos.ShortShares,
			pos.LongCostBasis, pos.ShortCostBasis, realized.SignedString())
	}
	fmt.Fprintf(&b, "\nCash: %s, Margin used: %s\n", res.Portfolio.Cash, res.Portfolio.MarginUsed)

	return b.String()
}

// EqualWeightMarkdown renders a buy-and-hold run report.
func EqualWeightMarkdown(res *hedgesim.EqualWeightResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Buy and Hold Report from %s to %s\n\n", res.Period.From, res.Period.To)

	fmt.Fprint(&b, "## Positions\n\n")
	fmt.Fprintln(&b, "| Ticker | Shares | Start | End | Invested | Final | Return |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|")
	for _, p := range res.Positions {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s |\n",
			p.Ticker, p.Shares, p.StartPrice, p.EndPrice, p.Invested, p.FinalValue, p.Return.SignedString())
	}

	fmt.Fprint(&b, "\n## Summary\n\n")
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Initial Capital | %s |\n", res.InitialCapital)
	fmt.Fprintf(&b, "| Final Value | %s |\n", res.FinalValue)
	fmt.Fprintf(&b, "| Total Return | %s |\n", res.TotalReturn.SignedString())
	fmt.Fprintf(&b, "| Average Return | %s |\n", res.AverageReturn.SignedString())
	fmt.Fprintf(&b, "| Best | %s (%s) |\n", res.BestReturn.SignedString(), res.BestTicker)
	fmt.Fprintf(&b, "| Worst | %s (%s) |\n", res.WorstReturn.SignedString(), res.WorstTicker)
	fmt.Fprintf(&b, "| Std Dev | %s |\n", res.StdDev)

	return b.String()
}

// BatchMarkdown renders the comparison table of independent per-ticker runs.
func BatchMarkdown(results []*hedgesim.Result) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Batch Report\n\n")
	fmt.Fprintln(&b, "| Ticker | Final Value | Total Return | Benchmark | Excess |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, res := range results {
		ticker := strings.Join(res.Tickers, " ")
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			ticker, res.FinalValue,
			res.TotalReturn.SignedString(),
			res.BenchmarkReturn.SignedString(),
			res.ExcessReturn.SignedString())
	}

	return b.String()
}
