package pnl

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecodeInitialPositions(t *testing.T) {
	doc := `{
		"GOOGL": {"qty": -50, "avg_price": 2800.00, "timestamp": "2024-01-01T09:00:00"},
		"AAPL":  {"qty": "100", "avg_price": "150.50"}
	}`
	positions, err := DecodeInitialPositions("positions.json", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeInitialPositions() error = %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("len(positions) = %d, want 2", len(positions))
	}

	// alphabetical, for deterministic seeding
	aapl := positions[0]
	if aapl.Symbol != "AAPL" || !aapl.Qty.Equal(Q(100)) || !aapl.AvgPrice.Equal(M(150.5, "")) {
		t.Errorf("AAPL = %+v", aapl)
	}
	if !aapl.OpenedAt.IsZero() {
		t.Errorf("AAPL.OpenedAt = %v, want zero (defaulted later by the engine)", aapl.OpenedAt)
	}

	googl := positions[1]
	if !googl.Qty.Equal(Q(-50)) {
		t.Errorf("GOOGL qty = %s, want -50", googl.Qty)
	}
	if want := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC); !googl.OpenedAt.Equal(want) {
		t.Errorf("GOOGL.OpenedAt = %v, want %v", googl.OpenedAt, want)
	}
}

func TestDecodeInitialPositions_Errors(t *testing.T) {
	cases := []struct {
		name       string
		doc        string
		validation bool
	}{
		{"not an object", `[1, 2]`, false},
		{"missing qty", `{"AA": {"avg_price": 10}}`, false},
		{"missing avg_price", `{"AA": {"qty": 10}}`, false},
		{"negative avg_price", `{"AA": {"qty": 10, "avg_price": -1}}`, true},
		{"zero avg_price", `{"AA": {"qty": 10, "avg_price": 0}}`, true},
		{"bad timestamp", `{"AA": {"qty": 10, "avg_price": 1, "timestamp": "tomorrow"}}`, false},
		{"blank symbol", `{" ": {"qty": 10, "avg_price": 1}}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeInitialPositions(tc.name, strings.NewReader(tc.doc))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if tc.validation && !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestDecodeInitialPositions_RFC3339(t *testing.T) {
	doc := `{"AA": {"qty": 1, "avg_price": 1, "timestamp": "2024-06-01T12:00:00+02:00"}}`
	positions, err := DecodeInitialPositions("positions.json", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeInitialPositions() error = %v", err)
	}
	if want := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC); !positions[0].OpenedAt.Equal(want) {
		t.Errorf("OpenedAt = %v, want %v", positions[0].OpenedAt, want)
	}
}
