package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FormatPercent renders a fraction as a percentage with two decimals,
// e.g. 0.0123 -> "1.23%".
func FormatPercent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(hundred).StringFixed(2) + "%"
}

// FormatPrice renders a price with two decimals, e.g. 101.5 -> "$101.50".
func FormatPrice(price float64) string {
	return "$" + decimal.NewFromFloat(price).StringFixed(2)
}

// FormatVolume renders a relative volume with two decimals.
func FormatVolume(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
