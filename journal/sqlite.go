package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quantegy/pnl"
)

// SQLite journals runs into a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordRun stores the run header, its full timeseries and the final
// positions in one transaction: a run is journaled entirely or not at all.
func (j *SQLite) RecordRun(run Run, res *pnl.Result) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO runs (run_id, strategy, source, started_at, fills)
		VALUES (?, ?, ?, ?, ?)`,
		run.RunID, run.Strategy, run.Source, run.StartedAt, run.Fills,
	); err != nil {
		return fmt.Errorf("recording run %s: %w", run.RunID, err)
	}

	rowStmt, err := tx.Prepare(`
		INSERT INTO timeseries
		(run_id, ts, symbol,
		 realized_total, unrealized_total, gross_total,
		 realized_symbol, unrealized_symbol, gross_symbol,
		 realized_total_symbol, gross_total_symbol)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer rowStmt.Close()

	for _, row := range res.Rows() {
		if _, err := rowStmt.Exec(
			run.RunID, row.Time.UnixNano(), row.Symbol,
			row.RealizedTotal.String(), row.UnrealizedTotal.String(), row.GrossTotal.String(),
			row.RealizedSymbol.String(), row.UnrealizedSymbol.String(), row.GrossSymbol.String(),
			row.RealizedTotalSymbol.String(), row.GrossTotalSymbol.String(),
		); err != nil {
			return fmt.Errorf("recording timeseries for %s: %w", run.RunID, err)
		}
	}

	posStmt, err := tx.Prepare(`
		INSERT INTO positions
		(run_id, symbol, net_qty, long_qty, short_qty,
		 last_price, avg_long_price, avg_short_price, realized_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer posStmt.Close()

	states := res.PositionsSnapshot()
	for _, sym := range res.Symbols() {
		s := states[sym]
		if _, err := posStmt.Exec(
			run.RunID, sym,
			s.NetQty.String(), s.LongQty.String(), s.ShortQty.String(),
			nullable(s.HasLastPrice, s.LastPrice),
			nullable(s.HasLong, s.AvgLongPrice),
			nullable(s.HasShort, s.AvgShortPrice),
			s.RealizedTotal.String(),
		); err != nil {
			return fmt.Errorf("recording positions for %s: %w", run.RunID, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the journaled run headers, most recent last (ULIDs sort
// chronologically).
func (j *SQLite) ListRuns() ([]Run, error) {
	rows, err := j.db.Query(`SELECT run_id, strategy, source, started_at, fills FROM runs ORDER BY run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Strategy, &r.Source, &r.StartedAt, &r.Fills); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullable(present bool, m pnl.Money) any {
	if !present {
		return nil
	}
	return m.String()
}
