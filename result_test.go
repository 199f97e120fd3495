package pnl

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"testing"
)

// resultFixture runs a small two-symbol history:
// AA: buy 100@10, sell 100@15  -> realized +500, flat
// BB: buy 10@20, sell 10@18    -> realized -20, flat
// CC: buy 5@30                 -> open long, last price 30
func resultFixture(t *testing.T) *Result {
	t.Helper()
	e := newEngine(t, FIFO)
	res, err := e.ProcessFills([]Fill{
		{Time: at(0), Symbol: "AA", Side: Buy, Price: M(10, ""), Qty: Q(100)},
		{Time: at(1), Symbol: "BB", Side: Buy, Price: M(20, ""), Qty: Q(10)},
		{Time: at(2), Symbol: "AA", Side: Sell, Price: M(15, ""), Qty: Q(100)},
		{Time: at(3), Symbol: "BB", Side: Sell, Price: M(18, ""), Qty: Q(10)},
		{Time: at(4), Symbol: "CC", Side: Buy, Price: M(30, ""), Qty: Q(5)},
	})
	if err != nil {
		t.Fatalf("ProcessFills() error = %v", err)
	}
	return res
}

func TestResult_Aggregates(t *testing.T) {
	res := resultFixture(t)

	if got := res.RealizedTotal(); !got.Equal(M(480, "")) {
		t.Errorf("RealizedTotal() = %s, want 480", got)
	}
	if got := res.UnrealizedTotal(); !got.IsZero() {
		t.Errorf("UnrealizedTotal() = %s, want 0", got)
	}
	if got := res.TotalGross(); !got.Equal(M(480, "")) {
		t.Errorf("TotalGross() = %s, want 480", got)
	}

	bySym := res.GrossBySymbol()
	if !bySym["AA"].Equal(M(500, "")) || !bySym["BB"].Equal(M(-20, "")) || !bySym["CC"].IsZero() {
		t.Errorf("GrossBySymbol() = %v", bySym)
	}
	if got := res.Symbols(); strings.Join(got, ",") != "AA,BB,CC" {
		t.Errorf("Symbols() = %v, want sorted AA,BB,CC", got)
	}
}

func TestResult_KPIs(t *testing.T) {
	res := resultFixture(t)

	k := res.KPIs()
	if k.WinRate != 0.5 {
		t.Errorf("WinRate = %v, want 0.5 (one win, one loss)", k.WinRate)
	}
	// (500 - 20) / 2
	if !k.AverageTradePnL.Equal(M(240, "")) {
		t.Errorf("AverageTradePnL = %s, want 240", k.AverageTradePnL)
	}
	if k.ProfitFactor != 25.0 {
		t.Errorf("ProfitFactor = %v, want 500/20 = 25", k.ProfitFactor)
	}
}

func TestResult_ProfitFactorEdges(t *testing.T) {
	e := newEngine(t, FIFO)
	res, err := e.ProcessFills([]Fill{
		{Time: at(0), Symbol: "AA", Side: Buy, Price: M(10, ""), Qty: Q(1)},
		{Time: at(1), Symbol: "AA", Side: Sell, Price: M(12, ""), Qty: Q(1)},
	})
	if err != nil {
		t.Fatalf("ProcessFills() error = %v", err)
	}
	if pf := res.ProfitFactor(); !math.IsInf(pf, 1) {
		t.Errorf("ProfitFactor = %v, want +Inf for wins without losses", pf)
	}

	e = newEngine(t, FIFO)
	res, err = e.ProcessFills(nil)
	if err != nil {
		t.Fatalf("ProcessFills() error = %v", err)
	}
	if pf := res.ProfitFactor(); pf != 0 {
		t.Errorf("ProfitFactor = %v, want 0 for an empty run", pf)
	}
	if wr := res.WinRate(); wr != 0 {
		t.Errorf("WinRate = %v, want 0 for an empty run", wr)
	}
}

func TestResult_PositionsSnapshot(t *testing.T) {
	res := resultFixture(t)

	snap := res.PositionsSnapshot()["CC"]
	if !snap.NetQty.Equal(Q(5)) || !snap.LongQty.Equal(Q(5)) || !snap.ShortQty.IsZero() {
		t.Errorf("CC snapshot = %+v", snap)
	}
	if !snap.HasLastPrice || !snap.LastPrice.Equal(M(30, "")) {
		t.Errorf("CC last price = %s, want 30", snap.LastPrice)
	}
	if !snap.HasLong || !snap.AvgLongPrice.Equal(M(30, "")) {
		t.Errorf("CC avg long = %s, want 30", snap.AvgLongPrice)
	}

	// a re-mark against a fresher price: 5 long from 30 at 32 gains 10
	if up := snap.UnrealizedAt(M(32, "")); !up.Equal(M(10, "")) {
		t.Errorf("UnrealizedAt(32) = %s, want 10", up)
	}
}

func TestResult_WriteCSV(t *testing.T) {
	res := resultFixture(t)

	var buf bytes.Buffer
	if err := res.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d CSV lines, want header + 5 rows", len(lines))
	}
	if lines[0] != strings.Join(csvHeader, ",") {
		t.Errorf("header = %q", lines[0])
	}
	// third row is the AA close: realized 500 everywhere, no unrealized
	fields := strings.Split(lines[3], ",")
	if fields[1] != "AA" || fields[2] != "500" || fields[5] != "500" {
		t.Errorf("AA close row = %q", lines[3])
	}
	if fields[0] != strconv.FormatInt(at(2).UnixNano(), 10) {
		t.Errorf("timestamp field = %q", fields[0])
	}
}
