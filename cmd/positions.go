package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/quantegy/pnl"
	"github.com/quantegy/pnl/renderer"
)

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	strategy  string
	orderLog  string
	positions string
	currency  string
	topN      int
	live      bool
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the open positions after a run" }
func (*positionsCmd) Usage() string {
	return `pnlcalc positions -o <order-log> [-s FIFO|LIFO] [-p <positions>] [-live]

  Replays the order log and displays the final per-symbol positions: open
  lots, last trade price and average open prices. With -live the open
  positions are also re-marked against the configured quote endpoint.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.strategy, "s", "", "Matching strategy, FIFO or LIFO. Overrides the config file.")
	f.StringVar(&c.orderLog, "o", "", "Order log to process (CSV). Overrides the config file.")
	f.StringVar(&c.positions, "p", "", "Initial positions file (JSON). Overrides the config file.")
	f.StringVar(&c.currency, "cur", "", "ISO currency code to format amounts with.")
	f.IntVar(&c.topN, "top", 0, "Only show the N largest net positions.")
	f.BoolVar(&c.live, "live", false, "Re-mark open positions against live quotes.")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	override(&cfg.Engine.Strategy, c.strategy)
	override(&cfg.Engine.OrderLog, c.orderLog)
	override(&cfg.Engine.Positions, c.positions)
	override(&cfg.Report.Currency, c.currency)
	if c.topN > 0 {
		cfg.Report.TopN = c.topN
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.live && cfg.Quotes.URL == "" {
		fmt.Fprintln(os.Stderr, "Error: -live given but no quote endpoint is configured")
		return subcommands.ExitUsageError
	}

	res, _, err := runEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	opts := renderer.Options{Currency: cfg.Report.Currency, TopN: cfg.Report.TopN}
	md := renderer.Positions(res, opts)

	if c.live {
		source := pnl.NewQuoteSource(cfg.Quotes.URL, cfg.Quotes.Path)
		prices, err := source.LatestAll(res.Symbols())
		if err != nil {
			// partial quotes are still worth showing
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		md += "\n" + renderer.LiveMarks(res, prices, opts)
	}

	printMarkdown(md)
	return subcommands.ExitSuccess
}
