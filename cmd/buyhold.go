package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"hedgesim"
	"hedgesim/renderer"
)

// buyholdCmd holds the flags for the 'buyhold' subcommand.
type buyholdCmd struct {
	simFlags
}

func (*buyholdCmd) Name() string     { return "buyhold" }
func (*buyholdCmd) Synopsis() string { return "equal-weighted buy-and-hold reference run" }
func (*buyholdCmd) Usage() string {
	return `hsim buyhold -t <tickers> [-s <date>] [-d <date>] [-capital <amount>]

  Splits the capital equally across the tickers at the start date, holds, and
  reports the per-ticker and total returns at the end date.
`
}

func (c *buyholdCmd) SetFlags(f *flag.FlagSet) { c.simFlags.SetFlags(f) }

func (c *buyholdCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tickers, period, capital, prices, err := c.parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	sim := &hedgesim.EqualWeight{
		Prices:         prices,
		Tickers:        tickers,
		Period:         period,
		InitialCapital: capital,
	}
	res, err := sim.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running simulation:", err)
		return subcommands.ExitFailure
	}

	md := renderer.EqualWeightMarkdown(res)
	printMarkdown(md)
	saveReport(md)
	return subcommands.ExitSuccess
}
