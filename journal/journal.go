// Package journal persists finished PnL runs so they can be compared and
// audited later. Two backends are provided: SQLite and plain CSV files.
//
// Amounts are stored as exact decimal strings, never floats: a journaled
// run replayed through the engine must reconcile to the digit.
package journal

import (
	"time"

	"github.com/quantegy/pnl"
)

// Run identifies one engine run.
type Run struct {
	RunID     string
	Strategy  string
	Source    string // the order log the fills came from
	StartedAt time.Time
	Fills     int
}

// NewRun stamps a run header with a fresh ULID. ULIDs sort by generation
// time, which keeps journal listings chronological.
func NewRun(strategy pnl.MatchingStrategy, source string, fills int) Run {
	return Run{
		RunID:     newRunID(),
		Strategy:  strategy.String(),
		Source:    source,
		StartedAt: time.Now().UTC(),
		Fills:     fills,
	}
}

// Journal records finished runs.
type Journal interface {
	RecordRun(run Run, res *pnl.Result) error
	Close() error
}
