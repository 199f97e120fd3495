package pnl

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// This file decodes raw order-event logs into validated orders and fills.
//
// The log is a semicolon-separated CSV, one state transition per line:
//
//	currentTime;action;orderId;orderProduct;orderSide;tradePx;tradeAmt
//
// currentTime is an integer nanosecond timestamp. tradePx and tradeAmt are
// only meaningful on filled rows and may be empty otherwise. Orders whose
// event sequence does not follow an accepted lifecycle are skipped with a
// warning: the engine only ever sees clean fills.

// DecodeOrders reads an order-event log and reconstructs validated orders,
// preserving the order in which order ids first appear. filename is for
// error messages only.
func DecodeOrders(filename string, r io.Reader) ([]*Order, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 7

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("format error in %q: %w", filename, err)
	}
	col, err := orderLogColumns(filename, header)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Order)
	var orders []*Order
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("format error in %q on line %d: %w", filename, line, err)
		}

		ns, err := strconv.ParseInt(strings.TrimSpace(record[col.time]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("format error in %q on line %d: bad timestamp %q: %w", filename, line, record[col.time], err)
		}
		action, err := ParseAction(record[col.action])
		if err != nil {
			return nil, fmt.Errorf("format error in %q on line %d: %w", filename, line, err)
		}
		side, err := ParseSide(record[col.side])
		if err != nil {
			return nil, fmt.Errorf("format error in %q on line %d: %w", filename, line, err)
		}

		ev := ActionEvent{Time: time.Unix(0, ns).UTC(), Action: action}
		px, pxOK := decOrNone(record[col.price])
		amt, amtOK := decOrNone(record[col.qty])
		if pxOK && amtOK {
			ev.TradePrice = Money{value: px.value}
			ev.TradeQty = Quantity{value: amt.value}
			ev.HasTradeData = true
		}

		id := strings.TrimSpace(record[col.id])
		o, ok := byID[id]
		if !ok {
			o = &Order{
				ID:     id,
				Symbol: strings.ToUpper(strings.TrimSpace(record[col.symbol])),
				Side:   side,
			}
			byID[id] = o
			orders = append(orders, o)
		}
		o.Events = append(o.Events, ev)
	}

	valid := orders[:0]
	for _, o := range orders {
		sort.SliceStable(o.Events, func(i, j int) bool { return o.Events[i].Time.Before(o.Events[j].Time) })
		if !o.hasValidSequence() {
			log.Printf("warning: skipping order %s due to invalid action sequence: %s", o.ID, sequenceString(o.Events))
			continue
		}
		valid = append(valid, o)
	}
	return valid, nil
}

// DecodeOrdersFile opens and decodes an order-event log file.
func DecodeOrdersFile(filename string) ([]*Order, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeOrders(filename, f)
}

// orderLogIndex maps the expected column names to their positions.
type orderLogIndex struct {
	time, action, id, symbol, side, price, qty int
}

func orderLogColumns(filename string, header []string) (orderLogIndex, error) {
	idx := orderLogIndex{time: -1, action: -1, id: -1, symbol: -1, side: -1, price: -1, qty: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "currentTime":
			idx.time = i
		case "action":
			idx.action = i
		case "orderId":
			idx.id = i
		case "orderProduct":
			idx.symbol = i
		case "orderSide":
			idx.side = i
		case "tradePx":
			idx.price = i
		case "tradeAmt":
			idx.qty = i
		}
	}
	for name, i := range map[string]int{
		"currentTime": idx.time, "action": idx.action, "orderId": idx.id,
		"orderProduct": idx.symbol, "orderSide": idx.side,
		"tradePx": idx.price, "tradeAmt": idx.qty,
	} {
		if i < 0 {
			return idx, fmt.Errorf("format error in %q: missing column %q", filename, name)
		}
	}
	return idx, nil
}

// decOrNone parses an optional decimal field. Empty or NaN-like cells are
// treated as absent rather than errors: only filled rows carry trade data.
func decOrNone(s string) (Quantity, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "nan", "NaN", "None":
		return Quantity{}, false
	}
	q, err := ParseQuantity(s)
	if err != nil {
		return Quantity{}, false
	}
	return q, true
}

func sequenceString(events []ActionEvent) string {
	parts := make([]string, len(events))
	for i, ev := range events {
		parts[i] = ev.Action.String()
	}
	return strings.Join(parts, "|")
}

func sortFillsByTime(fills []Fill) {
	sort.SliceStable(fills, func(i, j int) bool { return fills[i].Time.Before(fills[j].Time) })
}
