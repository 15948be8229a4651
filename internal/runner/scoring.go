package runner

import (
	"math"
	"strings"
	"unicode"
)

// NormalizeAnswer reduces an answer to uppercase letters and digits so
// "Rio Bravo", "RIO-BRAVO" and "rio bravo." all compare equal.
func NormalizeAnswer(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Stderr returns the standard error of a proportion p measured over n
// samples. Returns 0 when n is 0.
func Stderr(p float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Sqrt(p * (1 - p) / float64(n))
}
