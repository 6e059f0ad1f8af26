package utils

import (
	"math"
	"strconv"
	"strings"
)

// ParseOptionalFloat parses a loosely formatted numeric cell.
// Empty, non-numeric, NaN and infinite values report ok=false.
// Example:
//
//	" 12.5 " → 12.5, true
//	""       → 0, false
//	"n/a"    → 0, false
func ParseOptionalFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseOptionalInt parses a numeric cell and truncates it toward zero, so "2021.0" → 2021.
func ParseOptionalInt(s string) (int, bool) {
	v, ok := ParseOptionalFloat(s)
	if !ok || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
