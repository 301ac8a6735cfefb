package report

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// maxBinaryFraction is the longest fraction a float64 can carry in decimal,
// so formatting with it yields the exact binary value.
const maxBinaryFraction = 1074

// exactDecimal spells out the exact binary value of v. 1.005 becomes
// "1.00499999999999989...", which is what fixed-point formatting rounds.
func exactDecimal(v float64) string {
	return new(big.Float).SetFloat64(v).Text('f', maxBinaryFraction)
}

// shortestDecimal is the shortest string that reads back as v. 1.005 stays
// "1.005", which is what locale-aware formatting rounds.
func shortestDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// roundHalfAway rounds the plain decimal string s to places fraction digits,
// resolving ties away from zero. A result that rounds to zero loses its sign.
func roundHalfAway(s string, places int) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	for len(frac) <= places {
		frac += "0"
	}

	digits := []byte(whole + frac[:places])
	if frac[places] >= '5' {
		i := len(digits) - 1
		for ; i >= 0; i-- {
			if digits[i] == '9' {
				digits[i] = '0'
				continue
			}
			digits[i]++
			break
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		}
	}

	out := string(digits[:len(digits)-places])
	if places > 0 {
		out += "." + string(digits[len(digits)-places:])
	}
	if neg && strings.Trim(out, "0.") != "" {
		out = "-" + out
	}
	return out
}

// roundLocale rounds v the way locale number formatting does: on its
// shortest decimal form, ties away from zero.
func roundLocale(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(roundHalfAway(shortestDecimal(v), places), 64)
	if err != nil {
		return v
	}
	return r
}

// roundFixed rounds v the way fixed-point formatting does: on its exact
// binary value, ties away from zero.
func roundFixed(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', places, 64)
	}
	return roundHalfAway(exactDecimal(v), places)
}
