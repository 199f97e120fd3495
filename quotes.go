package pnl

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// QuoteSource fetches the latest trade price for a symbol from a JSON HTTP
// endpoint. The URL contains a {symbol} placeholder and Path is a jsonpath
// expression pointing at the price inside the response.
//
// It exists to re-mark a finished run's open positions against fresher
// prices than the last fill; the engine itself only ever marks from fills.
type QuoteSource struct {
	URL  string
	Path string

	client *http.Client
}

// NewQuoteSource builds a quote source with a daily-expiring response cache.
func NewQuoteSource(url, path string) *QuoteSource {
	return &QuoteSource{URL: url, Path: path, client: cached()}
}

// Latest returns the latest known price for symbol.
func (s *QuoteSource) Latest(symbol string) (Money, error) {
	addr := strings.ReplaceAll(s.URL, "{symbol}", symbol)

	var jobj any
	if err := jwget(s.client, addr, &jobj); err != nil {
		return Money{}, fmt.Errorf("error retrieving quote for %q: %w", symbol, err)
	}

	jval, err := jsonpath.Get(s.Path, jobj)
	if err != nil {
		return Money{}, fmt.Errorf("error parsing quote for %q: %q %w", symbol, s.Path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1
	// answer, or a single answer: keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	switch v := jval.(type) {
	case float64:
		return M(v, ""), nil
	case string:
		// sometimes quote APIs return the value as a localized string
		v = strings.ReplaceAll(v, ",", ".")
		v = strings.ReplaceAll(v, " ", "")
		m, err := ParseMoney(v, "")
		if err != nil {
			return Money{}, fmt.Errorf("cannot read quote for %q: invalid string %q: %w", symbol, v, err)
		}
		return m, nil
	default:
		return Money{}, fmt.Errorf("cannot read quote for %q: %q is not a number: %v", symbol, s.Path, jval)
	}
}

// LatestAll fetches the latest price for every given symbol. Symbols whose
// quote cannot be fetched are reported in the returned error but do not
// prevent the others from being returned.
func (s *QuoteSource) LatestAll(symbols []string) (map[string]Money, error) {
	prices := make(map[string]Money, len(symbols))
	var failed []string
	for _, sym := range symbols {
		price, err := s.Latest(sym)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s (%v)", sym, err))
			continue
		}
		prices[sym] = price
	}
	if len(failed) > 0 {
		return prices, fmt.Errorf("no quote for: %s", strings.Join(failed, ", "))
	}
	return prices, nil
}
