package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/quantegy/pnl/journal"
)

// runsCmd holds the flags for the 'runs' subcommand.
type runsCmd struct {
	dbPath string
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "list the runs recorded in the journal" }
func (*runsCmd) Usage() string {
	return `pnlcalc runs [-db <file>]

  Lists the runs recorded in the SQLite journal, oldest first.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dbPath, "db", "", "Journal database file. Overrides the config file.")
}

func (c *runsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	override(&cfg.Journal.DBPath, c.dbPath)
	if cfg.Journal.DBPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no journal database configured, use -db or the config file")
		return subcommands.ExitUsageError
	}

	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal %q: %v\n", cfg.Journal.DBPath, err)
		return subcommands.ExitFailure
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "No runs recorded yet.")
		return subcommands.ExitSuccess
	}

	var b strings.Builder
	fmt.Fprint(&b, "# Recorded Runs\n\n")
	fmt.Fprintln(&b, "| Run | Strategy | Source | Started | Fills |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|")
	for _, r := range runs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d |\n",
			r.RunID, r.Strategy, r.Source, r.StartedAt.Format("2006-01-02 15:04:05"), r.Fills)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
