package models

import (
	"math"
	"strconv"
	"strings"
)

// Number is a numeric-as-string field together with its parse.
//
// Display code reads Value, which is 0 for anything that did not parse.
// Gating code reads Valid, which separates "typed 0" from "typed nothing".
type Number struct {
	Raw   string
	Value float64
	Valid bool
}

// ParseNumber parses raw permissively. Surrounding whitespace is ignored;
// empty, unparseable and non-finite input yields Value 0 and Valid false.
func ParseNumber(raw string) Number {
	n := Number{Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return n
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return n
	}
	n.Value = v
	n.Valid = true
	return n
}

// NonNegative reports whether the field holds a number >= 0.
func (n Number) NonNegative() bool {
	return n.Valid && n.Value >= 0
}

// Positive reports whether the field holds a number > 0.
func (n Number) Positive() bool {
	return n.Valid && n.Value > 0
}

// FormatNumber renders v the way it is stored in a session record:
// shortest representation, no exponent for ordinary meter readings.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
