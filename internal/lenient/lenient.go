// Package lenient converts numeric text the way the C library's atoi and atof do:
// the longest numeric prefix is used, trailing garbage is ignored and text without
// a numeric prefix yields zero. Both functions also report whether the whole input
// was numeric so callers can warn about values that were silently truncated.
package lenient

import (
	"math"
	"strconv"
	"strings"
)

// Atoi parses the leading integer of s. The value saturates at the 32-bit range,
// matching the width of the integer parameters it feeds.
func Atoi(s string) (int, bool) {
	i := skipSpace(s, 0)
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	digitsStart := i
	var v int64
	for i < len(s) && isDigit(s[i]) {
		if v <= math.MaxInt32+1 {
			v = v*10 + int64(s[i]-'0')
		}
		i++
	}
	if i == digitsStart {
		return 0, false
	}

	if neg {
		v = -v
	}
	switch {
	case v > math.MaxInt32:
		v = math.MaxInt32
	case v < math.MinInt32:
		v = math.MinInt32
	}
	return int(v), i == len(s)
}

// Atof parses the leading floating point literal of s: an optional sign followed by
// decimal digits with an optional fraction and exponent, or inf/infinity/nan.
func Atof(s string) (float64, bool) {
	i := skipSpace(s, 0)
	prefixStart := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	if v, n, ok := special(s[i:]); ok {
		if s[prefixStart] == '-' {
			v = -v
		}
		end := i + n
		return v, end == len(s)
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}

	// An exponent only counts when at least one digit follows it.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}

	v, err := strconv.ParseFloat(s[prefixStart:i], 64)
	if err != nil {
		// Out of range literals come back as ±Inf or 0 together with the error,
		// which is what strtod returns as well.
		if numErr, ok := err.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
			return 0, false
		}
	}
	return v, i == len(s)
}

func special(s string) (float64, int, bool) {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "infinity"):
		return math.Inf(1), len("infinity"), true
	case strings.HasPrefix(lower, "inf"):
		return math.Inf(1), len("inf"), true
	case strings.HasPrefix(lower, "nan"):
		return math.NaN(), len("nan"), true
	}
	return 0, 0, false
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
