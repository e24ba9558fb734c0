package dashboard

import (
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatPrice renders a price with thousands grouping and at most three
// fraction digits, trailing zeros dropped: 9138.90 -> "9,138.9".
func FormatPrice(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	rounded, _ := decimal.NewFromFloat(v).Round(3).Float64()
	if rounded == 0 {
		return "0"
	}
	return humanize.Commaf(rounded)
}

// FormatCount renders an integer with thousands grouping.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatSigned renders v to a fixed number of decimals with an explicit
// "+" for positive values.
func FormatSigned(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	s := decimal.NewFromFloat(v).StringFixed(places)
	if v > 0 {
		return "+" + s
	}
	return s
}

// FormatSignedPercent is FormatSigned with a trailing "%".
func FormatSignedPercent(v float64, places int32) string {
	return FormatSigned(v, places) + "%"
}

// FormatRatio renders a [0,1] fraction as a one-decimal percentage: 0.5597 -> "56.0%".
func FormatRatio(frac float64) string {
	if math.IsNaN(frac) || math.IsInf(frac, 0) {
		return "NaN%"
	}
	return decimal.NewFromFloat(frac).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
