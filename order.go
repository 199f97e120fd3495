package pnl

import "time"

// ActionEvent is a single order state transition read from the log.
type ActionEvent struct {
	Time   time.Time
	Action Action
	// TradePrice and TradeQty are only present on filled events.
	TradePrice   Money
	TradeQty     Quantity
	HasTradeData bool
}

// Order is a logical order reconstructed from multiple log rows.
type Order struct {
	ID     string
	Symbol string
	Side   Side
	Events []ActionEvent
}

// IsFilled reports whether the order has at least one filled event.
func (o *Order) IsFilled() bool {
	for _, ev := range o.Events {
		if ev.Action == Filled {
			return true
		}
	}
	return false
}

// ClosedAt returns the time of the order's last event.
func (o *Order) ClosedAt() (time.Time, bool) {
	if len(o.Events) == 0 {
		return time.Time{}, false
	}
	last := o.Events[0].Time
	for _, ev := range o.Events[1:] {
		if ev.Time.After(last) {
			last = ev.Time
		}
	}
	return last, true
}

// LastFill returns the order's most recent filled event.
func (o *Order) LastFill() (ActionEvent, bool) {
	for i := len(o.Events) - 1; i >= 0; i-- {
		if o.Events[i].Action == Filled {
			return o.Events[i], true
		}
	}
	return ActionEvent{}, false
}

// validSequences are the accepted order lifecycles. An order whose event
// actions do not match one of them is dropped by the normalizer.
var validSequences = [][]Action{
	{Sent, Placed, Filled},
	{Sent, Placed, Cancelling, Cancelled},
	{Placed, Filled},
	{Sent, Filled},
}

// hasValidSequence reports whether the order's events follow one of the
// accepted lifecycles.
func (o *Order) hasValidSequence() bool {
	for _, seq := range validSequences {
		if len(seq) != len(o.Events) {
			continue
		}
		match := true
		for i, a := range seq {
			if o.Events[i].Action != a {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// OrdersToFills converts validated orders into fill executions. An order may
// produce several fills. The result is sorted by time, input order breaking
// ties.
func OrdersToFills(orders []*Order) []Fill {
	var fills []Fill
	for _, o := range orders {
		for _, ev := range o.Events {
			if ev.Action == Filled && ev.HasTradeData {
				fills = append(fills, Fill{
					Time:   ev.Time,
					Symbol: o.Symbol,
					Side:   o.Side,
					Price:  ev.TradePrice,
					Qty:    ev.TradeQty,
				})
			}
		}
	}
	sortFillsByTime(fills)
	return fills
}
