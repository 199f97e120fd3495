package pnl

import (
	"fmt"
	"sort"
	"time"
)

// InitialPosition is a pre-existing position seeded into the engine before
// any fill is processed. It becomes exactly one synthetic lot on the side
// given by the sign of Qty (positive long, negative short).
type InitialPosition struct {
	Symbol   string
	Qty      Quantity // signed
	AvgPrice Money    // strictly positive
	OpenedAt time.Time
}

// engineState makes the single-use contract explicit: misuse fails clearly
// instead of silently mixing two independent histories.
type engineState int

const (
	stateConfigured engineState = iota
	stateSeeded
	stateProcessed
)

// Engine is a long/short PnL calculator with a pluggable lot-matching
// strategy. One engine instance runs one ProcessFills call to completion;
// callers needing parallel or repeated runs construct independent engines.
type Engine struct {
	strategy      MatchingStrategy
	state         engineState
	books         map[string]*symbolBook
	pending       []InitialPosition
	realizedTotal Money
}

// New creates an engine using the given matching strategy for its whole run.
func New(strategy MatchingStrategy) (*Engine, error) {
	switch strategy {
	case FIFO, LIFO:
	default:
		return nil, fmt.Errorf("%w: invalid matching strategy %d", ErrConfiguration, strategy)
	}
	return &Engine{
		strategy: strategy,
		books:    make(map[string]*symbolBook),
	}, nil
}

// Strategy returns the matching strategy the engine was configured with.
func (e *Engine) Strategy() MatchingStrategy { return e.strategy }

func (e *Engine) book(symbol string) *symbolBook {
	b, ok := e.books[symbol]
	if !ok {
		b = &symbolBook{}
		e.books[symbol] = b
	}
	return b
}

// SetInitialPosition registers a pre-existing position to seed before the
// first fill. A zero quantity is a no-op. It must be called before
// ProcessFills; afterwards the call is rejected.
//
// A zero OpenedAt defaults to one minute before the earliest fill (or the
// Unix epoch when the run has no fills). An explicit OpenedAt is taken
// as-is, even when it falls after the first fill: the resulting row
// ordering is then up to the caller.
func (e *Engine) SetInitialPosition(p InitialPosition) error {
	if err := e.checkSeed(p); err != nil {
		return err
	}
	if p.Qty.IsZero() {
		return nil
	}
	e.pending = append(e.pending, p)
	e.state = stateSeeded
	return nil
}

// SetInitialPositions registers several positions at once. The whole batch
// is validated first: on error no position is registered.
func (e *Engine) SetInitialPositions(positions []InitialPosition) error {
	for _, p := range positions {
		if err := e.checkSeed(p); err != nil {
			return err
		}
	}
	for _, p := range positions {
		if p.Qty.IsZero() {
			continue
		}
		e.pending = append(e.pending, p)
		e.state = stateSeeded
	}
	return nil
}

func (e *Engine) checkSeed(p InitialPosition) error {
	if e.state == stateProcessed {
		return fmt.Errorf("%w: cannot set initial position for %q after fills have been processed", ErrConfiguration, p.Symbol)
	}
	if !p.AvgPrice.IsPositive() {
		return fmt.Errorf("%w: initial position for %q must have a positive average price, got %s", ErrValidation, p.Symbol, p.AvgPrice)
	}
	return nil
}

// ProcessFills seeds the registered initial positions, applies every fill in
// timestamp order and returns the assembled Result. Fills sharing a
// timestamp keep their input order (stable sort), so identical input always
// yields identical rows.
//
// The engine is single-use: a second call is rejected.
func (e *Engine) ProcessFills(fills []Fill) (*Result, error) {
	if e.state == stateProcessed {
		return nil, fmt.Errorf("%w: fills have already been processed on this engine", ErrConfiguration)
	}
	for i, f := range fills {
		if !f.Price.IsPositive() {
			return nil, fmt.Errorf("%w: fill %d (%s) has non-positive price %s", ErrValidation, i, f.Symbol, f.Price)
		}
		if !f.Qty.IsPositive() {
			return nil, fmt.Errorf("%w: fill %d (%s) has non-positive quantity %s", ErrValidation, i, f.Symbol, f.Qty)
		}
	}

	sorted := make([]Fill, len(fills))
	copy(sorted, fills)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	rows := make([]Row, 0, len(e.pending)+len(sorted))

	// Seed pending positions as synthetic zero-realized events. Marked at
	// their own average price, they start with zero unrealized PnL.
	if len(e.pending) > 0 {
		seedTime := time.Unix(0, 0).UTC()
		if len(sorted) > 0 {
			seedTime = sorted[0].Time.Add(-time.Minute)
		}
		for _, p := range e.pending {
			at := p.OpenedAt
			if at.IsZero() {
				at = seedTime
			}
			e.book(p.Symbol).seed(p.Qty, p.AvgPrice, at)
			rows = append(rows, e.row(at, p.Symbol, Money{}))
		}
		e.pending = nil
	}

	for _, f := range sorted {
		delta := e.book(f.Symbol).applyFill(f, e.strategy)
		e.realizedTotal = e.realizedTotal.Add(delta)
		rows = append(rows, e.row(f.Time, f.Symbol, delta))
	}

	e.state = stateProcessed

	states := make(map[string]SymbolSnapshot, len(e.books))
	for sym, b := range e.books {
		states[sym] = b.snapshot()
	}
	return &Result{rows: rows, states: states}, nil
}

// row assembles one snapshot row after an event touched the given symbol.
// Unrealized values are recomputed fresh so the gross identities hold
// exactly on every row.
func (e *Engine) row(at time.Time, symbol string, realizedDelta Money) Row {
	b := e.book(symbol)
	up := b.unrealized()
	var upTotal Money
	for _, book := range e.books {
		upTotal = upTotal.Add(book.unrealized())
	}
	return Row{
		Time:                at,
		Symbol:              symbol,
		RealizedTotal:       e.realizedTotal,
		UnrealizedTotal:     upTotal,
		GrossTotal:          e.realizedTotal.Add(upTotal),
		RealizedSymbol:      realizedDelta,
		UnrealizedSymbol:    up,
		GrossSymbol:         realizedDelta.Add(up),
		RealizedTotalSymbol: b.realized,
		GrossTotalSymbol:    b.realized.Add(up),
	}
}
