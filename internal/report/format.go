package report

import (
	"fmt"
	"math"
	"strconv"
)

// FormatPValue renders a p-value for a table cell. Values above 0.01 are
// rounded to three decimals; smaller ones are shown as an upper bound.
func FormatPValue(p float64) string {
	switch {
	case math.IsNaN(p):
		return "NA"
	case p > 0.01:
		return strconv.FormatFloat(round(p, 3), 'f', -1, 64)
	case p > 0.001:
		if p <= 0.005 {
			return "< 0.005"
		}
		return "< 0.01"
	default:
		k := 16
		if p > 0 {
			k = min(int(math.Ceil(-math.Log10(p)))-1, 16)
		}
		return fmt.Sprintf("< 10^-%d", k)
	}
}

func round(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

// formatValue rounds to the given precision and drops trailing zeros
func formatValue(v float64, precision int) string {
	switch {
	case math.IsNaN(v):
		return "NA"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(round(v, precision), 'f', -1, 64)
}

// fixed rounds to exactly precision decimals
func fixed(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
