// Package cmd implements the CLI application to compute trading PnL.
package cmd

import (
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/quantegy/pnl"
	"github.com/quantegy/pnl/config"
	"github.com/quantegy/pnl/journal"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&processCmd{}, "pnl")
	c.Register(&exportCmd{}, "pnl")
	c.Register(&positionsCmd{}, "pnl")

	c.Register(&runsCmd{}, "journal")

	c.Register(&serveCmd{}, "server")
	c.Register(&assistCmd{}, "assist")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file (YAML or JSON)")

// loadConfig reads the -config file, or starts from defaults when none is
// given. Command flags override it afterwards, so it is not validated here.
func loadConfig() (*config.Config, error) {
	if *configFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(*configFile)
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// runEngine decodes the configured order log and optional initial positions
// and runs them through the engine. It returns the result and the number of
// fills processed.
func runEngine(cfg *config.Config) (*pnl.Result, int, error) {
	strategy, err := pnl.ParseMatchingStrategy(cfg.Engine.Strategy)
	if err != nil {
		return nil, 0, err
	}

	orders, err := pnl.DecodeOrdersFile(cfg.Engine.OrderLog)
	if err != nil {
		return nil, 0, fmt.Errorf("could not decode order log %q: %w", cfg.Engine.OrderLog, err)
	}
	fills := pnl.OrdersToFills(orders)

	engine, err := pnl.New(strategy)
	if err != nil {
		return nil, 0, err
	}

	if cfg.Engine.Positions != "" {
		positions, err := pnl.DecodeInitialPositionsFile(cfg.Engine.Positions)
		if err != nil {
			return nil, 0, fmt.Errorf("could not decode positions %q: %w", cfg.Engine.Positions, err)
		}
		if err := engine.SetInitialPositions(positions); err != nil {
			return nil, 0, err
		}
	}

	res, err := engine.ProcessFills(fills)
	if err != nil {
		return nil, 0, err
	}
	return res, len(fills), nil
}

// openJournal opens the configured journal backend, nil when journaling is
// disabled.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TimeseriesFile, cfg.Journal.PositionsFile)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}
