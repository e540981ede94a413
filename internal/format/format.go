// Package format renders metric values for display.
package format

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// NotApplicable is shown for ratios whose denominator is zero.
const NotApplicable = "N/A"

// Round rounds x to the given number of decimal places, halves to even.
func Round(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.RoundToEven(x*p) / p
}

// Integer formats n with thousands separators: 12345 -> "12,345".
func Integer(n int64) string {
	return humanize.Comma(n)
}

// Currency formats a whole-dollar amount with thousands separators:
// 12345.6 -> "$12,346".
func Currency(x float64) string {
	s := strconv.FormatFloat(x, 'f', 0, 64)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "$" + s
	}
	return "$" + humanize.Comma(n)
}

// Cents formats an amount with two decimals and no separator, or N/A.
func Cents(x *float64) string {
	if x == nil {
		return NotApplicable
	}
	return "$" + strconv.FormatFloat(*x, 'f', 2, 64)
}

// Percent formats a percentage with one decimal: 3.25 -> "3.2%".
func Percent(x float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64) + "%"
}

// Multiplier formats a ratio with one decimal: 2 -> "2.0x".
func Multiplier(x float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64) + "x"
}

// OptionalMultiplier is Multiplier with N/A for undefined values.
func OptionalMultiplier(x *float64) string {
	if x == nil {
		return NotApplicable
	}
	return Multiplier(*x)
}

// Thousands abbreviates a value in thousands: 12345 -> "12.3k".
func Thousands(x float64) string {
	return strconv.FormatFloat(x/1000, 'f', 1, 64) + "k"
}
