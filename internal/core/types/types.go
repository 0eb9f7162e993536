// Package types provides shared value types.
package types

import (
	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary value (lot cost prices). Backed by
// decimal.Decimal to avoid binary floating-point drift; maps to
// NUMERIC(14,4) in Postgres.
type Money = decimal.Decimal

// NewMoneyFromString parses a Money value. Preferred constructor.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney parses a Money value, panicking on error. For constants
// and tests only.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
