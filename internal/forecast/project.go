package forecast

import "math"

// ProjectCounts maps a raw forecast onto count semantics: round each value
// to the nearest integer, clamp at zero, then re-derive (lower, upper) as
// (min, max) of the projected bounds. The order matters: rounding can flip
// the min/max relationship near zero, so reordering must come last.
func ProjectCounts(point, lower, upper float64) (p, lo, hi int) {
	p = roundClamp(point)
	a := roundClamp(lower)
	b := roundClamp(upper)
	if a <= b {
		return p, a, b
	}
	return p, b, a
}

func roundClamp(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	return r
}
