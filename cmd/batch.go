package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"hedgesim"
	"hedgesim/agent"
	"hedgesim/renderer"
)

// batchCmd holds the flags for the 'batch' subcommand.
type batchCmd struct {
	simFlags
	margin        float64
	disableShorts bool
}

func (*batchCmd) Name() string     { return "batch" }
func (*batchCmd) Synopsis() string { return "one independent simulation per ticker" }
func (*batchCmd) Usage() string {
	return `hsim batch -t <tickers> [-s <date>] [-d <date>] [-capital <amount>] [-margin <ratio>]

  Runs each ticker against its own portfolio with the full initial capital,
  so tickers can be compared on equal footing. A ticker failing does not
  abort the others.
`
}

func (c *batchCmd) SetFlags(f *flag.FlagSet) {
	c.simFlags.SetFlags(f)
	f.Float64Var(&c.margin, "margin", 0.5, "Fraction of short proceeds posted as margin, in [0,1].")
	f.BoolVar(&c.disableShorts, "disable-shorts", false, "Turn short and cover decisions into holds.")
}

func (c *batchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tickers, period, capital, prices, err := c.parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	advisor := agent.NewAdvisor()
	if err := advisor.Start(ctx, client); err != nil {
		fmt.Fprintln(os.Stderr, "Error starting advisor:", err)
		return subcommands.ExitFailure
	}

	batch := &hedgesim.Batch{
		Prices:            prices,
		Decisions:         advisor,
		Tickers:           tickers,
		Period:            period,
		InitialCapital:    capital,
		MarginRequirement: decimal.NewFromFloat(c.margin),
		DisableShorts:     c.disableShorts,
	}
	results, err := batch.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning: some runs failed:", err)
	}
	if len(results) == 0 {
		return subcommands.ExitFailure
	}

	md := renderer.BatchMarkdown(results)
	printMarkdown(md)
	saveReport(md)
	return subcommands.ExitSuccess
}
