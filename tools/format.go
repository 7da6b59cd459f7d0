package tools

import (
	"math"
	"strconv"
)

// formatNumber renders v for the model. Plain decimals read better than %g,
// which switches to exponents too early and confuses the explanation.
func formatNumber(v float64) string {
	if v == 0 {
		// Also folds -0.
		return "0"
	}
	if math.Abs(v) >= 1e21 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
