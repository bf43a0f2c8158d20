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

// runCmd holds the flags for the 'run' subcommand.
type runCmd struct {
	simFlags
	margin        float64
	disableShorts bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "simulate LLM trading decisions over a period" }
func (*runCmd) Usage() string {
	return `hsim run -t <tickers> [-s <date>] [-d <date>] [-capital <amount>] [-margin <ratio>]

  Fetches prices for the period, asks the model for one decision per ticker,
  applies them, and reports performance against a buy-and-hold benchmark.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	c.simFlags.SetFlags(f)
	f.Float64Var(&c.margin, "margin", 0.5, "Fraction of short proceeds posted as margin, in [0,1].")
	f.BoolVar(&c.disableShorts, "disable-shorts", false, "Turn short and cover decisions into holds.")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	sim := &hedgesim.Backtester{
		Prices:            prices,
		Decisions:         advisor,
		Tickers:           tickers,
		Period:            period,
		InitialCapital:    capital,
		MarginRequirement: decimal.NewFromFloat(c.margin),
		DisableShorts:     c.disableShorts,
	}
	res, err := sim.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running simulation:", err)
		return subcommands.ExitFailure
	}

	md := renderer.ResultMarkdown(res)
	printMarkdown(md)
	saveReport(md)
	return subcommands.ExitSuccess
}
