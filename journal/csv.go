package journal

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/quantegy/pnl"
)

// CSV journals runs into two flat files, one for the timeseries and one for
// the final positions. Every record carries the run id so several runs can
// share the same pair of files.
type CSV struct {
	timeseries *csv.Writer
	positions  *csv.Writer
	tf, pf     *os.File
}

func NewCSV(timeseriesPath, positionsPath string) (*CSV, error) {
	tf, err := os.Create(timeseriesPath)
	if err != nil {
		return nil, err
	}
	pf, err := os.Create(positionsPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	// neither handle may outlive a failed constructor
	fail := func(err error) (*CSV, error) {
		tf.Close()
		pf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	pw := csv.NewWriter(pf)

	if err := tw.Write([]string{
		"run_id", "ts", "symbol",
		"realized_total", "unrealized_total", "gross_total",
		"realized_symbol", "unrealized_symbol", "gross_symbol",
		"realized_total_symbol", "gross_total_symbol",
	}); err != nil {
		return fail(err)
	}
	if err := pw.Write([]string{
		"run_id", "symbol", "net_qty", "long_qty", "short_qty",
		"last_price", "avg_long_price", "avg_short_price", "realized_total",
	}); err != nil {
		return fail(err)
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return fail(err)
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return fail(err)
	}

	return &CSV{timeseries: tw, positions: pw, tf: tf, pf: pf}, nil
}

func (j *CSV) RecordRun(run Run, res *pnl.Result) error {
	for _, row := range res.Rows() {
		if err := j.timeseries.Write([]string{
			run.RunID,
			strconv.FormatInt(row.Time.UnixNano(), 10),
			row.Symbol,
			row.RealizedTotal.String(), row.UnrealizedTotal.String(), row.GrossTotal.String(),
			row.RealizedSymbol.String(), row.UnrealizedSymbol.String(), row.GrossSymbol.String(),
			row.RealizedTotalSymbol.String(), row.GrossTotalSymbol.String(),
		}); err != nil {
			return err
		}
	}

	states := res.PositionsSnapshot()
	for _, sym := range res.Symbols() {
		s := states[sym]
		if err := j.positions.Write([]string{
			run.RunID, sym,
			s.NetQty.String(), s.LongQty.String(), s.ShortQty.String(),
			emptyUnless(s.HasLastPrice, s.LastPrice),
			emptyUnless(s.HasLong, s.AvgLongPrice),
			emptyUnless(s.HasShort, s.AvgShortPrice),
			s.RealizedTotal.String(),
		}); err != nil {
			return err
		}
	}

	j.timeseries.Flush()
	if err := j.timeseries.Error(); err != nil {
		return err
	}
	j.positions.Flush()
	return j.positions.Error()
}

func (j *CSV) Close() error {
	j.timeseries.Flush()
	j.positions.Flush()
	terr := j.tf.Close()
	perr := j.pf.Close()
	if terr != nil {
		return terr
	}
	return perr
}

func emptyUnless(present bool, m pnl.Money) string {
	if !present {
		return ""
	}
	return m.String()
}
