package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/quantegy/pnl/server"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	strategy  string
	orderLog  string
	positions string
	addr      string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the run's result over HTTP" }
func (*serveCmd) Usage() string {
	return `pnlcalc serve -o <order-log> [-s FIFO|LIFO] [-p <positions>] [-addr <host:port>]

  Replays the order log and serves the result: JSON endpoints for the
  timeseries, positions and KPIs, and a websocket replaying the timeseries
  row by row.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.strategy, "s", "", "Matching strategy, FIFO or LIFO. Overrides the config file.")
	f.StringVar(&c.orderLog, "o", "", "Order log to process (CSV). Overrides the config file.")
	f.StringVar(&c.positions, "p", "", "Initial positions file (JSON). Overrides the config file.")
	f.StringVar(&c.addr, "addr", "", "Address to listen on. Overrides the config file.")
}

func (c *serveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	override(&cfg.Engine.Strategy, c.strategy)
	override(&cfg.Engine.OrderLog, c.orderLog)
	override(&cfg.Engine.Positions, c.positions)
	override(&cfg.Server.Addr, c.addr)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	res, _, err := runEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	srv := server.New()
	srv.Publish(res)
	if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
