package output

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatPercent renders a probability as a percentage with one decimal.
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// FormatProbability renders a probability with four decimals.
func FormatProbability(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(4)
}

// FormatYears renders a year count with one decimal.
func FormatYears(y float64) string {
	return decimal.NewFromFloat(y).StringFixed(1)
}

func intToString(v int) string {
	return strconv.Itoa(v)
}
