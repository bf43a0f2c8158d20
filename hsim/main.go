package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"hedgesim/cmd"
)

func main() {
	// API keys (EODHD, Alpaca, Gemini) may come from a local .env file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("loading .env (ignored): %v", err)
	}

	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion installs shell completion for the binary. It is a no-op outside
// of a completion request.
func completion() {
	simFlags := map[string]complete.Predictor{
		"t":       predict.Something,
		"s":       predict.Something,
		"d":       predict.Something,
		"capital": predict.Something,
		"source":  predict.Set{"eodhd", "alpaca"},
	}
	tradeFlags := map[string]complete.Predictor{
		"margin":         predict.Something,
		"disable-shorts": predict.Nothing,
	}
	for k, v := range simFlags {
		tradeFlags[k] = v
	}

	hsim := &complete.Command{
		Sub: map[string]*complete.Command{
			"run":     {Flags: tradeFlags},
			"batch":   {Flags: tradeFlags},
			"buyhold": {Flags: simFlags},
		},
		Flags: map[string]complete.Predictor{
			"report-file":   predict.Files("*"),
			"eodhd-api-key": predict.Something,
		},
	}
	hsim.Complete("hsim")
}
