package spatialmath

import (
	"math"
)

// Float64AlmostEqual reports whether a and b are within epsilon of each
// other.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
