package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/quantegy/pnl"
)

func sampleResult(t *testing.T) *pnl.Result {
	t.Helper()
	e, err := pnl.New(pnl.FIFO)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)
	res, err := e.ProcessFills([]pnl.Fill{
		{Time: start, Symbol: "AA", Side: pnl.Buy, Price: pnl.M(10, ""), Qty: pnl.Q(100)},
		{Time: start.Add(time.Minute), Symbol: "AA", Side: pnl.Sell, Price: pnl.M(15, ""), Qty: pnl.Q(100)},
		{Time: start.Add(2 * time.Minute), Symbol: "BB", Side: pnl.Sell, Price: pnl.M(20, ""), Qty: pnl.Q(10)},
	})
	if err != nil {
		t.Fatalf("ProcessFills() error = %v", err)
	}
	return res
}

// parse checks the rendered report is well-formed markdown and returns the
// number of tables and table body rows found.
func parse(t *testing.T, src string) (tables, bodyRows int) {
	t.Helper()
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader([]byte(src)))
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *east.Table:
			tables++
		case *east.TableRow:
			bodyRows++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walking markdown: %v", err)
	}
	return tables, bodyRows
}

func TestReport(t *testing.T) {
	out := Report(sampleResult(t), Options{})

	if !strings.Contains(out, "Total Gross PnL: **+500**") {
		t.Errorf("report misses the total gross:\n%s", out)
	}
	// AA realized +500 must rank above the open BB short
	aa := strings.Index(out, "| AA |")
	bb := strings.Index(out, "| BB |")
	if aa < 0 || bb < 0 || aa > bb {
		t.Errorf("symbol breakdown order wrong (AA at %d, BB at %d):\n%s", aa, bb, out)
	}
	if !strings.Contains(out, "| Win Rate | 100.00% |") {
		t.Errorf("report misses the win rate:\n%s", out)
	}

	tables, rows := parse(t, out)
	if tables != 2 {
		t.Errorf("parsed %d tables, want breakdown + metrics", tables)
	}
	if rows == 0 {
		t.Error("parsed no table rows")
	}
}

func TestReportTopN(t *testing.T) {
	out := Report(sampleResult(t), Options{TopN: 1})
	if strings.Contains(out, "| BB |") {
		t.Errorf("TopN=1 must keep only the most significant symbol:\n%s", out)
	}
}

func TestReportCurrency(t *testing.T) {
	out := Report(sampleResult(t), Options{Currency: "USD"})
	if !strings.Contains(out, "$500.00") {
		t.Errorf("USD report misses formatted amount:\n%s", out)
	}
}

func TestPositions(t *testing.T) {
	out := Positions(sampleResult(t), Options{})

	if !strings.Contains(out, "# Open Positions") {
		t.Errorf("positions misses title:\n%s", out)
	}
	// BB is short 10 at 20; AA is flat and sorts after it
	bb := strings.Index(out, "| BB | -10 | 0 | 10 | 20 | - | 20 |")
	if bb < 0 {
		t.Errorf("positions misses the BB short row:\n%s", out)
	}
	aa := strings.Index(out, "| AA | 0 |")
	if aa < 0 || aa < bb {
		t.Errorf("flat AA must sort after BB:\n%s", out)
	}

	if tables, _ := parse(t, out); tables != 1 {
		t.Errorf("parsed %d tables, want 1", tables)
	}
}
