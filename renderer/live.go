package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quantegy/pnl"
)

// LiveMarks renders the open positions re-marked against live quotes. Only
// symbols with a quote appear; the unrealized column uses the quoted price
// instead of the last trade price.
func LiveMarks(res *pnl.Result, prices map[string]pnl.Money, opts Options) string {
	states := res.PositionsSnapshot()

	symbols := make([]string, 0, len(prices))
	for sym := range prices {
		if _, ok := states[sym]; ok {
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)

	var b strings.Builder
	fmt.Fprint(&b, "## Live Marks\n\n")
	fmt.Fprintln(&b, "| Symbol | Net | Quote | Unrealized | Gross |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, sym := range symbols {
		s := states[sym]
		quote := prices[sym]
		unrealized := s.UnrealizedAt(quote)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			sym, s.NetQty,
			quote.In(opts.Currency),
			opts.money(unrealized),
			opts.money(s.RealizedTotal.Add(unrealized)),
		)
	}
	return b.String()
}
