package convert

import (
	"math"
	"strconv"
	"strings"
)

func TwoDecimals(number float64) float64 {
	return RoundFloat64(number, 2)
}

func RoundFloat64(number float64, decimals int) float64 {
	return math.Round(number*math.Pow10(decimals)) / math.Pow10(decimals)
}

// CzechFloat parses a decimal-comma number ("24,725") as used by the CNB
// exchange-rate listing.
func CzechFloat(str string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(str), ",", "."), 64)
}
