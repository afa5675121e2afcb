package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// RoundSignificant rounds d to the given number of significant digits.
func RoundSignificant(d decimal.Decimal, digits int) decimal.Decimal {
	r := d.Round(significantPlaces(d, digits))
	// Rounding up may add a digit (9.99999 -> 10.0000).
	return r.Round(significantPlaces(r, digits))
}

// FormatSignificant renders d with exactly the given number of significant digits,
// keeping trailing zeros ("1.0000").
func FormatSignificant(d decimal.Decimal, digits int) string {
	r := RoundSignificant(d, digits)
	places := significantPlaces(r, digits)
	if places < 0 {
		places = 0
	}
	return r.StringFixed(places)
}

// significantPlaces is the number of decimal places that keeps digits significant digits of d.
func significantPlaces(d decimal.Decimal, digits int) int32 {
	if d.IsZero() {
		return int32(digits - 1)
	}
	coefficient := new(big.Int).Abs(d.Coefficient())
	leading := int32(len(coefficient.String())) + d.Exponent() - 1
	return int32(digits-1) - leading
}
