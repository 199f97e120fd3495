package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	"github.com/quantegy/pnl/agent"
	"github.com/quantegy/pnl/renderer"
)

// assistCmd holds the flags for the 'assist' subcommand.
type assistCmd struct {
	strategy  string
	orderLog  string
	positions string
}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive AI session over the run's result"
}
func (*assistCmd) Usage() string {
	return `pnlcalc assist -o <order-log> [-s FIFO|LIFO] [-p <positions>] [question...]

  Replays the order log and starts an interactive session with an AI
  analyst that can read the result. Requires Gemini credentials in the
  environment.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.strategy, "s", "", "Matching strategy, FIFO or LIFO. Overrides the config file.")
	f.StringVar(&c.orderLog, "o", "", "Order log to process (CSV). Overrides the config file.")
	f.StringVar(&c.positions, "p", "", "Initial positions file (JSON). Overrides the config file.")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	override(&cfg.Engine.Strategy, c.strategy)
	override(&cfg.Engine.OrderLog, c.orderLog)
	override(&cfg.Engine.Positions, c.positions)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	res, _, err := runEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	opts := renderer.Options{Currency: cfg.Report.Currency, TopN: cfg.Report.TopN}
	a := agent.New(os.Stdout, os.Stdin, agent.NewAnalyst(res, opts))

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
