//go:build !fastmath

package dynamics

import "math"

// mathLog10 computes log10(x) using standard library math.
func mathLog10(x float64) float64 {
	return math.Log10(x)
}

// mathPower10 computes 10^x using standard library math.
func mathPower10(x float64) float64 {
	return math.Pow(10, x)
}

// mathSqrt computes sqrt(x) using standard library math.
func mathSqrt(x float64) float64 {
	return math.Sqrt(x)
}
