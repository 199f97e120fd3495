// Package renderer turns PnL results into markdown reports for the
// command-line tool. It only reads the Result query surface: the engine has
// no dependency on rendering.
package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quantegy/pnl"
)

// Options holds the shared rendering knobs.
type Options struct {
	// Currency attaches a currency code to displayed amounts. Empty prints
	// plain decimals.
	Currency string
	// TopN limits tables to the N most significant rows, 0 shows all.
	TopN int
}

func (o Options) money(m pnl.Money) string { return m.In(o.Currency).SignedString() }

// Report renders the PnL report: total gross, the per-symbol breakdown and
// the trade KPIs.
func Report(res *pnl.Result, opts Options) string {
	var b strings.Builder

	fmt.Fprint(&b, "# PnL Report\n\n")
	fmt.Fprintf(&b, "Total Gross PnL: **%s**\n\n", opts.money(res.TotalGross()))

	bySym := res.GrossBySymbol()
	type symbolGross struct {
		symbol string
		gross  pnl.Money
	}
	rows := make([]symbolGross, 0, len(bySym))
	for sym, g := range bySym {
		rows = append(rows, symbolGross{sym, g})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		gi, gj := rows[i].gross.Abs(), rows[j].gross.Abs()
		if gi.Equal(gj) {
			return rows[i].symbol < rows[j].symbol
		}
		return gj.LessThan(gi)
	})
	if opts.TopN > 0 && len(rows) > opts.TopN {
		rows = rows[:opts.TopN]
	}

	fmt.Fprint(&b, "## Breakdown by Symbol\n\n")
	fmt.Fprintln(&b, "| Symbol | Gross PnL |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row.symbol, opts.money(row.gross))
	}
	fmt.Fprintln(&b)

	k := res.KPIs()
	fmt.Fprint(&b, "## Trade Metrics\n\n")
	fmt.Fprintln(&b, "| Metric | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Realized PnL | %s |\n", opts.money(k.RealizedTotal))
	fmt.Fprintf(&b, "| Unrealized PnL | %s |\n", opts.money(k.UnrealizedTotal))
	fmt.Fprintf(&b, "| Win Rate | %.2f%% |\n", k.WinRate*100)
	fmt.Fprintf(&b, "| Avg Trade rPnL | %s |\n", opts.money(k.AverageTradePnL))
	fmt.Fprintf(&b, "| Profit Factor | %.2f |\n", k.ProfitFactor)

	return b.String()
}

// Positions renders the open-positions snapshot, most significant net
// position first.
func Positions(res *pnl.Result, opts Options) string {
	states := res.PositionsSnapshot()
	type position struct {
		symbol string
		snap   pnl.SymbolSnapshot
	}
	rows := make([]position, 0, len(states))
	for sym, s := range states {
		rows = append(rows, position{sym, s})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ni, nj := rows[i].snap.NetQty.Abs(), rows[j].snap.NetQty.Abs()
		if ni.Equal(nj) {
			return rows[i].symbol < rows[j].symbol
		}
		return nj.LessThan(ni)
	})
	if opts.TopN > 0 && len(rows) > opts.TopN {
		rows = rows[:opts.TopN]
	}

	var b strings.Builder
	fmt.Fprint(&b, "# Open Positions\n\n")
	fmt.Fprintln(&b, "| Symbol | Net | Long | Short | Last Px | Avg Long | Avg Short |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|")
	for _, row := range rows {
		s := row.snap
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			row.symbol,
			s.NetQty, s.LongQty, s.ShortQty,
			optional(s.HasLastPrice, s.LastPrice, opts),
			optional(s.HasLong, s.AvgLongPrice, opts),
			optional(s.HasShort, s.AvgShortPrice, opts),
		)
	}
	return b.String()
}

func optional(present bool, m pnl.Money, opts Options) string {
	if !present {
		return "-"
	}
	return m.In(opts.Currency).String()
}
