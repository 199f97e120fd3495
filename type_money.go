package pnl

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value: a price, or a PnL amount.
//
// The currency code is weak: the engine runs single-currency so most values
// carry the empty code and only reports attach one for formatting.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ParseMoney parses the decimal representation of a monetary value.
func ParseMoney(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d, cur: currency}, nil
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value.
// Values without a currency code print as a plain decimal.
func (m Money) String() string {
	if m.cur == "" {
		return m.value.String()
	}
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string             { return m.cur }
func (m Money) Equal(n Money) bool           { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                 { return m.value.IsZero() }
func (m Money) IsPositive() bool             { return m.value.IsPositive() }
func (m Money) IsNegative() bool             { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool        { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool     { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                   { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                   { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money         { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Div(n Quantity) Money         { return Money{value: m.value.Div(n.value), cur: m.cur} }

// In returns a copy of m carrying the given currency code, for formatting.
func (m Money) In(currency string) Money { return Money{value: m.value, cur: currency} }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// Float64 returns the nearest float64, for export layers only: the engine
// itself never rounds.
func (m Money) Float64() float64 { return m.value.InexactFloat64() }

func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}

func (m *Money) UnmarshalJSON(decimalBytes []byte) error {
	return m.value.UnmarshalJSON(decimalBytes)
}
