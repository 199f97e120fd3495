package pnl

import "time"

// Lot is a price-tagged open quantity slice on one side (long or short) of a
// symbol's position. It is created when a fill opens or flips a position and
// destroyed when fully consumed.
type Lot struct {
	OpenedAt time.Time `json:"opened_at"`
	Qty      Quantity  `json:"qty"` // unsigned magnitude, strictly positive
	Price    Money     `json:"price"`
}

// lotTake records one consumed slice of a lot: the quantity taken and the
// price the lot was opened at. The book turns takes into realized PnL.
type lotTake struct {
	qty   Quantity
	price Money
}

// lotQueue is the ordered collection of open lots for one (symbol, side)
// pair. Insertion order is preserved; the matching strategy decides which
// end is consumed first.
//
// Invariant: every lot has strictly positive quantity. A lot consumed to
// zero is removed immediately, never retained as a placeholder.
type lotQueue struct {
	lots []Lot
}

// push appends a lot, preserving insertion order.
func (q *lotQueue) push(l Lot) {
	q.lots = append(q.lots, l)
}

// consume repeatedly selects the next lot per the strategy, takes
// min(need, lot.Qty) from it and removes it once empty, until need is
// exhausted or the queue is drained. It returns the list of takes and the
// unmet remainder (zero when the queue had enough).
func (q *lotQueue) consume(need Quantity, strategy MatchingStrategy) (taken []lotTake, remainder Quantity) {
	for need.IsPositive() && len(q.lots) > 0 {
		var i int
		switch strategy {
		case LIFO:
			i = len(q.lots) - 1
		default: // FIFO
			i = 0
		}
		lot := &q.lots[i]

		take := lot.Qty.Min(need)
		taken = append(taken, lotTake{qty: take, price: lot.Price})
		lot.Qty = lot.Qty.Sub(take)
		need = need.Sub(take)

		if lot.Qty.IsZero() {
			q.lots = append(q.lots[:i], q.lots[i+1:]...)
		}
	}
	return taken, need
}

func (q *lotQueue) empty() bool { return len(q.lots) == 0 }

// totalQty sums the open quantity across all lots.
func (q *lotQueue) totalQty() Quantity {
	var total Quantity
	for _, l := range q.lots {
		total = total.Add(l.Qty)
	}
	return total
}

// averagePrice returns the volume-weighted average open price, and false
// when the queue is empty.
func (q *lotQueue) averagePrice() (Money, bool) {
	total := q.totalQty()
	if total.IsZero() {
		return Money{}, false
	}
	var cost Money
	for _, l := range q.lots {
		cost = cost.Add(l.Price.Mul(l.Qty))
	}
	return cost.Div(total), true
}

// view returns an independent copy of the open lots for snapshots.
func (q *lotQueue) view() []Lot {
	if len(q.lots) == 0 {
		return nil
	}
	out := make([]Lot, len(q.lots))
	copy(out, q.lots)
	return out
}
