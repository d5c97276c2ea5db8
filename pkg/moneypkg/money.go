// Package moneypkg converts between minor currency units and decimal strings.
//
// Balances and amounts are stored as int64 minor units everywhere in the
// domain; decimals appear only at the API edge.
package moneypkg

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrMalformedAmount indicates that the string is not a parsable money amount.
var ErrMalformedAmount = errors.New("malformed money amount")

const exponent = 2

// Format renders minor units as a decimal string, e.g. 2100050 -> "21000.50".
func Format(minorUnits int64) string {
	return decimal.New(minorUnits, -exponent).StringFixed(exponent)
}

// Parse converts a decimal string into minor units, e.g. "21000.50" -> 2100050.
//
// Amounts with more precision than minor units carry are rejected rather
// than rounded.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrMalformedAmount
	}

	shifted := d.Shift(exponent)
	if !shifted.IsInteger() {
		return 0, ErrMalformedAmount
	}

	return shifted.IntPart(), nil
}
