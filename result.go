package pnl

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"
)

// Row is one line of the output timeseries: the state of the account right
// after one event (an initial-position seed or a fill) was applied.
//
// RealizedSymbol is the realized delta produced by this event alone; all
// other PnL columns are cumulative-to-date. GrossSymbol is that delta plus
// the symbol's current unrealized, GrossTotalSymbol the symbol's cumulative
// gross.
type Row struct {
	Time                time.Time `json:"ts"`
	Symbol              string    `json:"symbol"`
	RealizedTotal       Money     `json:"realized_total"`
	UnrealizedTotal     Money     `json:"unrealized_total"`
	GrossTotal          Money     `json:"gross_total"`
	RealizedSymbol      Money     `json:"realized_symbol"`
	UnrealizedSymbol    Money     `json:"unrealized_symbol"`
	GrossSymbol         Money     `json:"gross_symbol"`
	RealizedTotalSymbol Money     `json:"realized_total_symbol"`
	GrossTotalSymbol    Money     `json:"gross_total_symbol"`
}

// SymbolSnapshot is the read-only final state of one symbol's position.
type SymbolSnapshot struct {
	HasLastPrice  bool     `json:"-"`
	LastPrice     Money    `json:"last_price"`
	RealizedTotal Money    `json:"realized_total"`
	LongLots      []Lot    `json:"long_lots,omitempty"`
	ShortLots     []Lot    `json:"short_lots,omitempty"`
	LongQty       Quantity `json:"long_qty"`
	ShortQty      Quantity `json:"short_qty"`
	NetQty        Quantity `json:"net_qty"`
	HasLong       bool     `json:"-"`
	AvgLongPrice  Money    `json:"avg_long_price"`
	HasShort      bool     `json:"-"`
	AvgShortPrice Money    `json:"avg_short_price"`
}

// Unrealized is the snapshot's mark-to-market against its last price.
func (s SymbolSnapshot) Unrealized() Money {
	return s.UnrealizedAt(s.LastPrice)
}

// UnrealizedAt marks the snapshot's open lots against an arbitrary price.
func (s SymbolSnapshot) UnrealizedAt(price Money) Money {
	var up Money
	if !s.HasLastPrice {
		return up
	}
	for _, l := range s.LongLots {
		up = up.Add(price.Sub(l.Price).Mul(l.Qty))
	}
	for _, l := range s.ShortLots {
		up = up.Add(l.Price.Sub(price).Mul(l.Qty))
	}
	return up
}

// Result is the immutable outcome of one engine run: the ordered snapshot
// timeseries plus an independently owned copy of the final positions, so it
// stays valid after the engine is discarded.
type Result struct {
	rows   []Row
	states map[string]SymbolSnapshot
}

// Rows returns a copy of the ordered snapshot timeseries.
func (r *Result) Rows() []Row {
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

// Symbols returns all symbols seen during the run, sorted.
func (r *Result) Symbols() []string {
	syms := make([]string, 0, len(r.states))
	for sym := range r.states {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}

// RealizedTotal is the portfolio realized PnL at the end of the run.
func (r *Result) RealizedTotal() Money {
	var total Money
	for _, s := range r.states {
		total = total.Add(s.RealizedTotal)
	}
	return total
}

// UnrealizedTotal is the portfolio unrealized PnL at the end of the run.
func (r *Result) UnrealizedTotal() Money {
	var total Money
	for _, s := range r.states {
		total = total.Add(s.Unrealized())
	}
	return total
}

// TotalGross is the portfolio gross PnL (realized plus unrealized, no fees)
// at the end of the run.
func (r *Result) TotalGross() Money {
	return r.RealizedTotal().Add(r.UnrealizedTotal())
}

// GrossBySymbol maps every symbol to its final gross PnL.
func (r *Result) GrossBySymbol() map[string]Money {
	out := make(map[string]Money, len(r.states))
	for sym, s := range r.states {
		out[sym] = s.RealizedTotal.Add(s.Unrealized())
	}
	return out
}

// PositionsSnapshot returns a copy of the final per-symbol position states.
func (r *Result) PositionsSnapshot() map[string]SymbolSnapshot {
	out := make(map[string]SymbolSnapshot, len(r.states))
	for sym, s := range r.states {
		out[sym] = s
	}
	return out
}

// realizedDeltas collects the non-zero per-fill realized deltas, the proxy
// for trade-level PnL used by the KPI queries.
func (r *Result) realizedDeltas() []Money {
	var out []Money
	for _, row := range r.rows {
		if !row.RealizedSymbol.IsZero() {
			out = append(out, row.RealizedSymbol)
		}
	}
	return out
}

// WinRate is the fraction of positive realized deltas, 0 when no lot was
// ever closed.
func (r *Result) WinRate() float64 {
	deltas := r.realizedDeltas()
	if len(deltas) == 0 {
		return 0
	}
	wins := 0
	for _, d := range deltas {
		if d.IsPositive() {
			wins++
		}
	}
	return float64(wins) / float64(len(deltas))
}

// AverageTradePnL is the mean realized delta over all closing fills.
func (r *Result) AverageTradePnL() Money {
	deltas := r.realizedDeltas()
	if len(deltas) == 0 {
		return Money{}
	}
	var sum Money
	for _, d := range deltas {
		sum = sum.Add(d)
	}
	return sum.Div(Q(len(deltas)))
}

// ProfitFactor is the sum of winning deltas over the absolute sum of losing
// deltas. It is +Inf for a run with wins and no losses, 0 otherwise.
func (r *Result) ProfitFactor() float64 {
	var wins, losses Money
	for _, d := range r.realizedDeltas() {
		if d.IsPositive() {
			wins = wins.Add(d)
		} else {
			losses = losses.Add(d)
		}
	}
	if losses.IsZero() {
		if wins.IsPositive() {
			return math.Inf(1)
		}
		return 0
	}
	return wins.Float64() / math.Abs(losses.Float64())
}

// KPIReport aggregates the headline figures of a run.
type KPIReport struct {
	RealizedTotal   Money   `json:"realized_total"`
	UnrealizedTotal Money   `json:"unrealized_total"`
	GrossTotal      Money   `json:"gross_total"`
	WinRate         float64 `json:"win_rate"`
	AverageTradePnL Money   `json:"average_trade_pnl"`
	ProfitFactor    float64 `json:"profit_factor"`
}

// KPIs computes the headline figures of the run.
func (r *Result) KPIs() KPIReport {
	return KPIReport{
		RealizedTotal:   r.RealizedTotal(),
		UnrealizedTotal: r.UnrealizedTotal(),
		GrossTotal:      r.TotalGross(),
		WinRate:         r.WinRate(),
		AverageTradePnL: r.AverageTradePnL(),
		ProfitFactor:    r.ProfitFactor(),
	}
}

// csvHeader lists the timeseries columns in their export order.
var csvHeader = []string{
	"ts", "symbol",
	"realized_total", "unrealized_total", "gross_total",
	"realized_symbol", "unrealized_symbol", "gross_symbol",
	"realized_total_symbol", "gross_total_symbol",
}

// WriteCSV writes the timeseries in the tabular export format, timestamps
// as integer nanoseconds, amounts as exact decimal strings.
func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range r.rows {
		record := []string{
			strconv.FormatInt(row.Time.UnixNano(), 10),
			row.Symbol,
			row.RealizedTotal.String(),
			row.UnrealizedTotal.String(),
			row.GrossTotal.String(),
			row.RealizedSymbol.String(),
			row.UnrealizedSymbol.String(),
			row.GrossSymbol.String(),
			row.RealizedTotalSymbol.String(),
			row.GrossTotalSymbol.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing timeseries: %w", err)
	}
	return nil
}
