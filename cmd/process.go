package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/quantegy/pnl"
	"github.com/quantegy/pnl/journal"
	"github.com/quantegy/pnl/renderer"
)

// processCmd holds the flags for the 'process' subcommand.
type processCmd struct {
	strategy  string
	orderLog  string
	positions string
	currency  string
	topN      int
	csvOut    string
	record    bool
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "compute the PnL timeseries from an order log" }
func (*processCmd) Usage() string {
	return `pnlcalc process -o <order-log> [-s FIFO|LIFO] [-p <positions>] [-csv <file>] [-record]

  Replays the order log through the lot-matching engine and displays the
  PnL report. Initial positions, when given, seed the books before the
  first fill.
`
}

func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.strategy, "s", "", "Matching strategy, FIFO or LIFO. Overrides the config file.")
	f.StringVar(&c.orderLog, "o", "", "Order log to process (CSV). Overrides the config file.")
	f.StringVar(&c.positions, "p", "", "Initial positions file (JSON). Overrides the config file.")
	f.StringVar(&c.currency, "cur", "", "ISO currency code to format report amounts with.")
	f.IntVar(&c.topN, "top", 0, "Only show the N symbols with the largest gross PnL.")
	f.StringVar(&c.csvOut, "csv", "", "Also export the timeseries to this CSV file.")
	f.BoolVar(&c.record, "record", false, "Record the run in the configured journal.")
}

func (c *processCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	override(&cfg.Engine.Strategy, c.strategy)
	override(&cfg.Engine.OrderLog, c.orderLog)
	override(&cfg.Engine.Positions, c.positions)
	override(&cfg.Report.Currency, c.currency)
	override(&cfg.Report.CSVOut, c.csvOut)
	if c.topN > 0 {
		cfg.Report.TopN = c.topN
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	res, fills, err := runEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	opts := renderer.Options{Currency: cfg.Report.Currency, TopN: cfg.Report.TopN}
	printMarkdown(renderer.Report(res, opts))

	if cfg.Report.CSVOut != "" {
		out, err := os.Create(cfg.Report.CSVOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", cfg.Report.CSVOut, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
		if err := res.WriteCSV(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting timeseries: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Timeseries exported to %s\n", cfg.Report.CSVOut)
	}

	if c.record {
		j, err := openJournal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
			return subcommands.ExitFailure
		}
		if j == nil {
			fmt.Fprintln(os.Stderr, "Error: -record given but no journal is configured")
			return subcommands.ExitUsageError
		}
		defer j.Close()

		strategy, _ := pnl.ParseMatchingStrategy(cfg.Engine.Strategy) // validated above
		run := journal.NewRun(strategy, cfg.Engine.OrderLog, fills)
		if err := j.RecordRun(run, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error recording run: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Run recorded as %s\n", run.RunID)
	}

	return subcommands.ExitSuccess
}
