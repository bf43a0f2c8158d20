// Package cmd implements the CLI application to run trading simulations.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"hedgesim"
	"hedgesim/date"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&runCmd{}, "simulations")
	c.Register(&buyholdCmd{}, "simulations")
	c.Register(&batchCmd{}, "simulations")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global vaariables.

var reportFile = flag.String("report-file", "", "Append every rendered report to this file. Empty disables saving.")

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails (e.g. no TTY).
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// saveReport appends a rendered report to the report file, if one is set.
func saveReport(md string) {
	if *reportFile == "" {
		return
	}
	f, err := os.OpenFile(*reportFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening report file %q: %v\n", *reportFile, err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "\n<!-- %s -->\n\n%s\n", time.Now().Format(time.RFC3339), md)
}

// simFlags are the flags shared by all simulation commands.
type simFlags struct {
	tickers string
	start   string
	end     string
	capital float64
	source  string
}

func (c *simFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tickers, "t", "", "Comma-separated tickers to simulate, e.g. \"AAPL,MSFT,NVDA\".")
	f.StringVar(&c.start, "s", date.Today().AddMonth(-1).String(), "Start date of the simulated period.")
	f.StringVar(&c.end, "d", date.Today().String(), "End date of the simulated period.")
	f.Float64Var(&c.capital, "capital", 100000, "Initial capital in USD.")
	f.StringVar(&c.source, "source", "eodhd", "Price source (eodhd, alpaca).")
}

// parse validates the shared flags and fetches the prices.
func (c *simFlags) parse() (tickers []string, period date.Range, capital hedgesim.Money, prices hedgesim.PriceSource, err error) {
	if c.tickers == "" {
		return nil, period, capital, nil, fmt.Errorf("at least one ticker is required, use -t")
	}
	for _, t := range strings.Split(c.tickers, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tickers = append(tickers, t)
		}
	}

	period.From, err = date.Parse(c.start)
	if err != nil {
		return nil, period, capital, nil, fmt.Errorf("invalid start date: %w", err)
	}
	period.To, err = date.Parse(c.end)
	if err != nil {
		return nil, period, capital, nil, fmt.Errorf("invalid end date: %w", err)
	}

	capital = hedgesim.USD(c.capital)

	switch c.source {
	case "eodhd":
		prices, err = hedgesim.FetchEODHD(tickers, period)
	case "alpaca":
		prices, err = hedgesim.FetchAlpaca(tickers, period)
	default:
		err = fmt.Errorf("unknown price source %q", c.source)
	}
	if err != nil {
		return nil, period, capital, nil, err
	}
	return tickers, period, capital, prices, nil
}
