// Package lengthfit clamps replacement text to a character-count band
// around the text it replaces.
package lengthfit

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTolerance is the ±5% band used when no tolerance is configured.
const DefaultTolerance = 0.05

// boundsEpsilon absorbs float error in products like 1.05*40.
const boundsEpsilon = 1e-9

// Enforcer applies a fixed tolerance.
type Enforcer struct {
	Tolerance float64
}

// New returns an Enforcer for tol. Negative values are treated as zero.
func New(tol float64) Enforcer {
	return Enforcer{Tolerance: math.Max(tol, 0)}
}

// Enforce is Enforce with the enforcer's tolerance.
func (e Enforcer) Enforce(original, candidate string) string {
	return Enforce(original, candidate, e.Tolerance)
}

// Bounds returns the inclusive character-count band for original.
func Bounds(original string, tol float64) (lo, hi int) {
	tol = math.Max(tol, 0)
	n := float64(utf8.RuneCountInString(original))
	lo = int(math.Floor((1-tol)*n + boundsEpsilon))
	hi = int(math.Ceil((1+tol)*n - boundsEpsilon))
	if lo < 0 {
		lo = 0
	}
	return lo, hi
}

// Within reports whether candidate already sits inside the band.
func Within(original, candidate string, tol float64) bool {
	lo, hi := Bounds(original, tol)
	n := utf8.RuneCountInString(candidate)
	return n >= lo && n <= hi
}

// Enforce returns candidate clamped to at most the upper bound of the band
// around original. Short candidates are returned as-is; text is never
// padded. Long candidates are cut at the last whitespace at or before the
// upper bound when that keeps them at or above the lower bound, otherwise
// hard-cut at the upper bound.
func Enforce(original, candidate string, tol float64) string {
	lo, hi := Bounds(original, tol)
	runes := []rune(candidate)
	if len(runes) <= hi {
		return candidate
	}

	hard := string(runes[:hi])
	for i := hi; i >= 0; i-- {
		if !unicode.IsSpace(runes[i]) {
			continue
		}
		soft := strings.TrimRightFunc(string(runes[:i]), unicode.IsSpace)
		if utf8.RuneCountInString(soft) >= lo {
			return soft
		}
		break
	}
	return hard
}
