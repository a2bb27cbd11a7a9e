package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Money is a non-negative amount with cents precision, serialized as a
// string with exactly two fractional digits ("1.50").
type Money struct {
	decimal.Decimal
}

func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

func MustMoney(s string) Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// HasCents reports whether the amount has at most two fractional digits.
func (m Money) HasCents() bool {
	return m.Equal(m.Round(2))
}

func (m Money) String() string {
	return m.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}
