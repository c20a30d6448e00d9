package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnits is the number of fractional digits every monetary result is
// rounded to.
const MinorUnits = 2

var hundred = decimal.NewFromInt(100)

// Money is an exact fixed-point amount. All arithmetic stays in decimal;
// rounding happens only through Round, which is half-up (away from zero) to
// MinorUnits digits.
type Money struct {
	amount decimal.Decimal
}

func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

func MoneyFromInt(value int64) Money {
	return Money{amount: decimal.NewFromInt(value)}
}

func ParseMoney(raw string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", raw, err)
	}
	return Money{amount: d}, nil
}

// MustParseMoney panics on malformed input; intended for constants and tests.
func MustParseMoney(raw string) Money {
	m, err := ParseMoney(raw)
	if err != nil {
		panic(err)
	}
	return m
}

func ZeroMoney() Money { return Money{amount: decimal.Zero} }

func (m Money) Decimal() decimal.Decimal { return m.amount }

func (m Money) Add(other Money) Money { return Money{amount: m.amount.Add(other.amount)} }

func (m Money) Sub(other Money) Money { return Money{amount: m.amount.Sub(other.amount)} }

// Percent returns m × pct / 100 without rounding.
func (m Money) Percent(pct Money) Money {
	return Money{amount: m.amount.Mul(pct.amount).Div(hundred)}
}

func (m Money) Round() Money { return Money{amount: m.amount.Round(MinorUnits)} }

func (m Money) Cmp(other Money) int { return m.amount.Cmp(other.amount) }

func (m Money) Equal(other Money) bool { return m.amount.Equal(other.amount) }

func (m Money) IsZero() bool { return m.amount.IsZero() }

func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

func (m Money) String() string { return m.amount.StringFixed(MinorUnits) }

func (m Money) Value() (driver.Value, error) {
	return m.amount.Value()
}

func (m *Money) Scan(value interface{}) error {
	return m.amount.Scan(value)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both quoted ("120000.00") and bare (120000) numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		m.amount = decimal.Zero
		return nil
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
