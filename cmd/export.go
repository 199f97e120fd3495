package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// exportCmd holds the flags for the 'export' subcommand.
type exportCmd struct {
	strategy  string
	orderLog  string
	positions string
	out       string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the PnL timeseries as CSV" }
func (*exportCmd) Usage() string {
	return `pnlcalc export -o <order-log> [-s FIFO|LIFO] [-p <positions>] [-out <file>]

  Replays the order log and writes the timeseries in CSV, timestamps as
  integer nanoseconds, amounts as exact decimal strings. Writes to stdout
  unless -out is given.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.strategy, "s", "", "Matching strategy, FIFO or LIFO. Overrides the config file.")
	f.StringVar(&c.orderLog, "o", "", "Order log to process (CSV). Overrides the config file.")
	f.StringVar(&c.positions, "p", "", "Initial positions file (JSON). Overrides the config file.")
	f.StringVar(&c.out, "out", "", "Destination file. Defaults to stdout.")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	w := os.Stdout
	if c.out != "" {
		w, err = os.Create(c.out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.out, err)
			return subcommands.ExitFailure
		}
		defer w.Close()
	}

	if err := res.WriteCSV(w); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting timeseries: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
