package model

import (
	"math"
	"math/big"
	"strconv"
)

// FormatDecimal formats v with exactly two fractional digits.
//
// Rounding is half away from zero applied to the shortest decimal string that
// round-trips v, so 1.005 renders as "1.01" and 0.125 as "0.13" rather than
// the binary-exact results strconv would give.
func FormatDecimal(v float64) string {
	return formatFixed(v, 2)
}

func formatFixed(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', places, 64)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'g', -1, 64))
	if !ok {
		return strconv.FormatFloat(v, 'f', places, 64)
	}
	return r.FloatString(places)
}
