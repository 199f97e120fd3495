// Package pnl computes realized, unrealized and gross profit-and-loss for a
// multi-symbol trading account from a chronological stream of trade fills.
//
// The core is a lot-matching engine: every open position is kept as a queue
// of price-tagged lots per symbol and side, and a pluggable matching
// strategy (FIFO or LIFO) decides which lot is consumed when a fill offsets
// an existing position. A fill that crosses a position closes the opposing
// side entirely and opens a fresh lot in the fill's direction with the
// leftover quantity. Realized PnL accrues on every lot close; unrealized
// PnL is a mark-to-market of the remaining open lots against the latest
// trade price seen for the symbol.
//
// All arithmetic is exact decimal (shopspring/decimal) so that the per-row
// identity gross = realized + unrealized holds without drift over
// arbitrarily long fill sequences.
//
// The package also ships the surrounding toolkit:
//   - a normalizer turning raw order-event logs into validated fills,
//   - an initial-position loader to seed pre-existing positions,
//   - a Result container with timeseries rows, position snapshots, KPI
//     queries and CSV export.
//
// This package is the foundation of the `pnlcalc` command-line tool.
package pnl
