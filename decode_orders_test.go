package pnl

import (
	"strings"
	"testing"
	"time"
)

const sampleLog = `currentTime;action;orderId;orderProduct;orderSide;tradePx;tradeAmt
1000000000;sent;o1;aa;buy;;
2000000000;placed;o1;aa;buy;;
3000000000;filled;o1;aa;buy;10.5;100
1500000000;sent;o2;bb;sell;;
2500000000;placed;o2;bb;sell;;
3500000000;cancelling;o2;bb;sell;;
4500000000;cancelled;o2;bb;sell;;
1200000000;placed;o3;aa;sell;;
2200000000;filled;o3;aa;sell;11;40
5000000000;filled;o4;cc;buy;9;10
6000000000;cancelled;o4;cc;buy;;
`

func TestDecodeOrders(t *testing.T) {
	orders, err := DecodeOrders("sample.csv", strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("DecodeOrders() error = %v", err)
	}

	// o4's filled|cancelled lifecycle is invalid and dropped
	if len(orders) != 3 {
		t.Fatalf("len(orders) = %d, want 3", len(orders))
	}

	o1 := orders[0]
	if o1.ID != "o1" || o1.Symbol != "AA" || o1.Side != Buy {
		t.Errorf("o1 = %+v", o1)
	}
	if !o1.IsFilled() {
		t.Error("o1 must be filled")
	}
	fill, ok := o1.LastFill()
	if !ok {
		t.Fatal("o1.LastFill() reported no fill")
	}
	if !fill.TradePrice.Equal(M(10.5, "")) || !fill.TradeQty.Equal(Q(100)) {
		t.Errorf("o1 fill = %s @ %s, want 100 @ 10.5", fill.TradeQty, fill.TradePrice)
	}

	o2 := orders[1]
	if o2.IsFilled() {
		t.Error("cancelled o2 must not be filled")
	}
	closed, ok := o2.ClosedAt()
	if !ok || !closed.Equal(time.Unix(0, 4500000000).UTC()) {
		t.Errorf("o2.ClosedAt() = %v, want the cancelled event time", closed)
	}
}

func TestOrdersToFills(t *testing.T) {
	orders, err := DecodeOrders("sample.csv", strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("DecodeOrders() error = %v", err)
	}
	fills := OrdersToFills(orders)

	if len(fills) != 2 {
		t.Fatalf("len(fills) = %d, want 2", len(fills))
	}
	// sorted by time: o3's fill at 2.2s comes before o1's at 3s
	if fills[0].Symbol != "AA" || fills[0].Side != Sell || !fills[0].Qty.Equal(Q(40)) {
		t.Errorf("fills[0] = %+v", fills[0])
	}
	if fills[1].Side != Buy || !fills[1].Price.Equal(M(10.5, "")) {
		t.Errorf("fills[1] = %+v", fills[1])
	}
}

func TestDecodeOrders_Errors(t *testing.T) {
	cases := []struct {
		name string
		log  string
	}{
		{"missing column", "currentTime;action;orderId;orderProduct;orderSide;tradePx\n"},
		{"bad timestamp", "currentTime;action;orderId;orderProduct;orderSide;tradePx;tradeAmt\nnope;sent;o1;aa;buy;;\n"},
		{"bad action", "currentTime;action;orderId;orderProduct;orderSide;tradePx;tradeAmt\n1;exploded;o1;aa;buy;;\n"},
		{"bad side", "currentTime;action;orderId;orderProduct;orderSide;tradePx;tradeAmt\n1;sent;o1;aa;hold;;\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeOrders(tc.name, strings.NewReader(tc.log)); err == nil {
				t.Errorf("DecodeOrders(%s) expected an error", tc.name)
			}
		})
	}
}

func TestDecodeOrders_Empty(t *testing.T) {
	orders, err := DecodeOrders("empty.csv", strings.NewReader(""))
	if err != nil {
		t.Fatalf("DecodeOrders() on empty input error = %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("len(orders) = %d, want 0", len(orders))
	}
}
