package pnl

import "testing"

func TestSymbolBook_OpenThenExtend(t *testing.T) {
	var b symbolBook

	delta := b.applyFill(Fill{Time: at(0), Symbol: "AA", Side: Buy, Price: M(150, ""), Qty: Q(100)}, FIFO)
	if !delta.IsZero() {
		t.Errorf("opening fill realized %s, want 0", delta)
	}
	delta = b.applyFill(Fill{Time: at(1), Symbol: "AA", Side: Buy, Price: M(152, ""), Qty: Q(50)}, FIFO)
	if !delta.IsZero() {
		t.Errorf("extending fill realized %s, want 0", delta)
	}

	if got := b.long.totalQty(); !got.Equal(Q(150)) {
		t.Errorf("long qty = %s, want 150", got)
	}
	if !b.short.empty() {
		t.Error("short queue must stay empty")
	}
	// marked at the extending fill: (152-150)*100 + 0*50 = 200
	if up := b.unrealized(); !up.Equal(M(200, "")) {
		t.Errorf("unrealized = %s, want 200", up)
	}
}

func TestSymbolBook_CrossingFlipsPosition(t *testing.T) {
	var b symbolBook

	b.applyFill(Fill{Time: at(0), Symbol: "AA", Side: Buy, Price: M(150, ""), Qty: Q(100)}, FIFO)
	delta := b.applyFill(Fill{Time: at(1), Symbol: "AA", Side: Sell, Price: M(155, ""), Qty: Q(150)}, FIFO)

	// (155-150)*100 = 500 realized on the close
	if !delta.Equal(M(500, "")) {
		t.Errorf("realized delta = %s, want 500", delta)
	}
	if !b.long.empty() {
		t.Error("long queue must be exhausted by the crossing fill")
	}
	if got := b.short.totalQty(); !got.Equal(Q(50)) {
		t.Errorf("short qty = %s, want the 50 leftover", got)
	}
	if !b.short.lots[0].Price.Equal(M(155, "")) {
		t.Errorf("flip lot price = %s, want the fill price 155", b.short.lots[0].Price)
	}
	// short marked at its own open price
	if up := b.unrealized(); !up.IsZero() {
		t.Errorf("unrealized = %s, want 0 right after the flip", up)
	}

	// next price update: short 50 from 155 marked at 157 loses 100
	b.applyFill(Fill{Time: at(2), Symbol: "AA", Side: Buy, Price: M(157, ""), Qty: Q(10)}, FIFO)
	if got := b.short.totalQty(); !got.Equal(Q(40)) {
		t.Errorf("short qty = %s, want 40", got)
	}
}

func TestSymbolBook_FlatExhaustion(t *testing.T) {
	var b symbolBook

	b.applyFill(Fill{Time: at(0), Symbol: "AA", Side: Buy, Price: M(150, ""), Qty: Q(100)}, FIFO)
	delta := b.applyFill(Fill{Time: at(1), Symbol: "AA", Side: Sell, Price: M(155, ""), Qty: Q(100)}, FIFO)

	if !delta.Equal(M(500, "")) {
		t.Errorf("realized = %s, want 500", delta)
	}
	if !b.long.empty() || !b.short.empty() {
		t.Error("both queues must be empty after an exact exhaustion")
	}
	if up := b.unrealized(); !up.IsZero() {
		t.Errorf("unrealized = %s, want 0 when flat", up)
	}
}

func TestSymbolBook_BuyClosingShortEarnsLotMinusFill(t *testing.T) {
	var b symbolBook

	b.applyFill(Fill{Time: at(0), Symbol: "AA", Side: Sell, Price: M(200, ""), Qty: Q(30)}, LIFO)
	delta := b.applyFill(Fill{Time: at(1), Symbol: "AA", Side: Buy, Price: M(190, ""), Qty: Q(30)}, LIFO)

	// (200-190)*30 = 300
	if !delta.Equal(M(300, "")) {
		t.Errorf("realized = %s, want 300", delta)
	}
}

func TestSymbolBook_FlatFillStillMarksToMarket(t *testing.T) {
	var b symbolBook
	b.seed(Q(10), M(100, ""), at(0))

	// a fill on the opposite side smaller than the position updates the mark
	b.applyFill(Fill{Time: at(1), Symbol: "AA", Side: Sell, Price: M(110, ""), Qty: Q(4)}, FIFO)

	if !b.last.Equal(M(110, "")) {
		t.Errorf("last price = %s, want 110", b.last)
	}
	// 6 remaining long from 100 marked at 110
	if up := b.unrealized(); !up.Equal(M(60, "")) {
		t.Errorf("unrealized = %s, want 60", up)
	}
}

func TestSymbolBook_OneSideEmptyAfterEveryFill(t *testing.T) {
	var b symbolBook
	fills := []Fill{
		{Time: at(0), Side: Buy, Price: M(10, ""), Qty: Q(5)},
		{Time: at(1), Side: Sell, Price: M(11, ""), Qty: Q(8)},
		{Time: at(2), Side: Buy, Price: M(9, ""), Qty: Q(2)},
		{Time: at(3), Side: Buy, Price: M(12, ""), Qty: Q(10)},
		{Time: at(4), Side: Sell, Price: M(12, ""), Qty: Q(9)},
	}
	for i, f := range fills {
		f.Symbol = "AA"
		b.applyFill(f, FIFO)
		if !b.long.empty() && !b.short.empty() {
			t.Fatalf("after fill %d both sides hold lots: long %s short %s", i, b.long.totalQty(), b.short.totalQty())
		}
	}
}

func TestSymbolBook_SeedShortPosition(t *testing.T) {
	var b symbolBook
	b.seed(Q(-40), M(25, ""), at(0))

	if !b.long.empty() {
		t.Error("seeding a short must leave the long queue empty")
	}
	if got := b.short.totalQty(); !got.Equal(Q(40)) {
		t.Errorf("short qty = %s, want 40 (magnitude of -40)", got)
	}
	if up := b.unrealized(); !up.IsZero() {
		t.Errorf("unrealized = %s, want 0 at seed time", up)
	}
}
