package pnl

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

// Initial positions are supplied as a JSON object keyed by symbol:
//
//	{
//	  "AAPL":  {"qty": 100, "avg_price": 150.50},
//	  "GOOGL": {"qty": -50, "avg_price": 2800.00, "timestamp": "2024-01-01T09:00:00Z"}
//	}
//
// qty is signed (positive long, negative short), avg_price must be strictly
// positive, timestamp is optional. Symbols are seeded in alphabetical order
// so a run is deterministic regardless of file layout.

// jposition is the object read from the file using the json parser.
type jposition struct {
	Qty       *Quantity `json:"qty"`
	AvgPrice  *Money    `json:"avg_price"`
	Timestamp string    `json:"timestamp"`
}

// DecodeInitialPositions reads initial positions from JSON. filename is for
// error messages only.
func DecodeInitialPositions(filename string, r io.Reader) ([]InitialPosition, error) {
	var raw map[string]jposition
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("format error in %q: %w", filename, err)
	}

	symbols := make([]string, 0, len(raw))
	for sym := range raw {
		if strings.TrimSpace(sym) == "" {
			return nil, fmt.Errorf("format error in %q: symbol must be a non-empty string", filename)
		}
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	positions := make([]InitialPosition, 0, len(raw))
	for _, sym := range symbols {
		jp := raw[sym]
		if jp.Qty == nil {
			return nil, fmt.Errorf("format error in %q: missing required field 'qty' for symbol %s", filename, sym)
		}
		if jp.AvgPrice == nil {
			return nil, fmt.Errorf("format error in %q: missing required field 'avg_price' for symbol %s", filename, sym)
		}
		if !jp.AvgPrice.IsPositive() {
			return nil, fmt.Errorf("%w: avg_price for %s must be positive, got %s", ErrValidation, sym, jp.AvgPrice)
		}
		if jp.Qty.IsZero() {
			log.Printf("warning: symbol %s has qty=0, position will be empty", sym)
		}

		p := InitialPosition{Symbol: sym, Qty: *jp.Qty, AvgPrice: *jp.AvgPrice}
		if jp.Timestamp != "" {
			at, err := parsePositionTime(jp.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("format error in %q: invalid timestamp for %s: %w", filename, sym, err)
			}
			p.OpenedAt = at
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// DecodeInitialPositionsFile opens and decodes an initial-positions file.
func DecodeInitialPositionsFile(filename string) ([]InitialPosition, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeInitialPositions(filename, f)
}

// parsePositionTime accepts RFC 3339, or a naive ISO timestamp which is then
// taken as UTC.
func parsePositionTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
