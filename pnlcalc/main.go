package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/quantegy/pnl/cmd"
)

func main() {
	// Handles shell completion requests (COMP_LINE) and exits, a no-op in a
	// normal invocation.
	completion().Complete("pnlcalc")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	files := predict.Files("*")
	strategies := predict.Set{"FIFO", "LIFO"}
	inputs := map[string]complete.Predictor{
		"s": strategies,
		"o": files,
		"p": files,
	}

	return &complete.Command{
		Flags: map[string]complete.Predictor{"config": files},
		Sub: map[string]*complete.Command{
			"process": {Flags: merge(inputs, map[string]complete.Predictor{
				"csv": files,
			})},
			"export": {Flags: merge(inputs, map[string]complete.Predictor{
				"out": files,
			})},
			"positions": {Flags: inputs},
			"runs":      {Flags: map[string]complete.Predictor{"db": files}},
			"serve":     {Flags: inputs},
			"assist":    {Flags: inputs},
		},
	}
}

func merge(ms ...map[string]complete.Predictor) map[string]complete.Predictor {
	out := map[string]complete.Predictor{}
	for _, m := range ms {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
