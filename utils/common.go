package utils

import "math"

const (
	NODETOL = 1.e-12
)

// Near reports whether a and b agree to within NODETOL, the geometric
// tolerance used by boundary predicates.
func Near(a, b float64) bool {
	return math.Abs(a-b) < NODETOL
}
