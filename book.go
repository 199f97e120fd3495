package pnl

import "time"

// Fill is one executed trade, already normalized: only `filled` order events
// become fills, and price and quantity are strictly positive.
type Fill struct {
	Time   time.Time
	Symbol string
	Side   Side
	Price  Money
	Qty    Quantity
}

// symbolBook holds the open position of a single symbol: one lot queue per
// side, the latest trade price and the realized PnL accrued so far.
//
// After every applied fill at most one side holds lots: a fill that crosses
// must first exhaust the opposing side before opening its own.
type symbolBook struct {
	long     lotQueue
	short    lotQueue
	lastSet  bool
	last     Money
	realized Money
}

// applyFill applies one fill using the given matching strategy and returns
// the realized PnL delta it produced.
//
// Every fill marks the symbol to market first, including fills applied to a
// flat book. A Buy offsets the short queue, a Sell offsets the long queue;
// whatever quantity the opposing queue cannot absorb opens a fresh lot on
// the fill's own side (the flip).
func (b *symbolBook) applyFill(f Fill, strategy MatchingStrategy) Money {
	b.last = f.Price
	b.lastSet = true

	opposing, same := &b.short, &b.long
	if f.Side == Sell {
		opposing, same = &b.long, &b.short
	}

	taken, remainder := opposing.consume(f.Qty, strategy)

	var realized Money
	for _, take := range taken {
		// Sell closing a long earns fill minus lot; Buy closing a short
		// earns lot minus fill.
		if f.Side == Sell {
			realized = realized.Add(f.Price.Sub(take.price).Mul(take.qty))
		} else {
			realized = realized.Add(take.price.Sub(f.Price).Mul(take.qty))
		}
	}

	if remainder.IsPositive() {
		same.push(Lot{OpenedAt: f.Time, Qty: remainder, Price: f.Price})
	}

	b.realized = b.realized.Add(realized)
	return realized
}

// unrealized recomputes the mark-to-market of all open lots from scratch
// against the latest trade price. It is never adjusted incrementally, to
// rule out drift.
func (b *symbolBook) unrealized() Money {
	var up Money
	if !b.lastSet {
		return up
	}
	for _, l := range b.long.lots {
		up = up.Add(b.last.Sub(l.Price).Mul(l.Qty))
	}
	for _, l := range b.short.lots {
		up = up.Add(l.Price.Sub(b.last).Mul(l.Qty))
	}
	return up
}

// seed replaces the symbol's open lots with a single synthetic lot for a
// pre-existing position, marked at its own average price.
func (b *symbolBook) seed(qty Quantity, avgPrice Money, openedAt time.Time) {
	b.long.lots = nil
	b.short.lots = nil
	switch {
	case qty.IsPositive():
		b.long.push(Lot{OpenedAt: openedAt, Qty: qty, Price: avgPrice})
	case qty.IsNegative():
		b.short.push(Lot{OpenedAt: openedAt, Qty: qty.Abs(), Price: avgPrice})
	}
	b.last = avgPrice
	b.lastSet = true
}

// snapshot builds an independent, read-only view of the book.
func (b *symbolBook) snapshot() SymbolSnapshot {
	longQty := b.long.totalQty()
	shortQty := b.short.totalQty()
	s := SymbolSnapshot{
		RealizedTotal: b.realized,
		LongLots:      b.long.view(),
		ShortLots:     b.short.view(),
		LongQty:       longQty,
		ShortQty:      shortQty,
		NetQty:        longQty.Sub(shortQty),
	}
	if b.lastSet {
		s.LastPrice = b.last
		s.HasLastPrice = true
	}
	if avg, ok := b.long.averagePrice(); ok {
		s.AvgLongPrice = avg
		s.HasLong = true
	}
	if avg, ok := b.short.averagePrice(); ok {
		s.AvgShortPrice = avg
		s.HasShort = true
	}
	return s
}
