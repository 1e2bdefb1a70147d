package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a signed currency amount in minor units (cents).
// Fixed two-decimal precision keeps arithmetic exact and lets the
// codec encode amounts as a plain little-endian int64.
type Money int64

// MoneyFromDecimal converts a decimal amount to Money.
// Amounts with more than two decimal places are rejected rather than
// silently rounded.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, &ErrValidation{Field: "amount", Message: fmt.Sprintf("more than two decimal places: %s", d)}
	}
	return Money(cents.IntPart()), nil
}

// ParseMoney parses a decimal string ("12.34") into Money.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &ErrValidation{Field: "amount", Message: "not a decimal number: " + s}
	}
	return MoneyFromDecimal(d)
}

// Decimal returns the amount as a decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders Money as a decimal string to avoid float drift
// on the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
