// Package fixed implements a small signed fixed-point number type whose
// arithmetic is pure integer math, so results are bit-identical on every
// platform and execution backend.
package fixed

import "math"

// Shift is the number of fractional bits.
const Shift = 10

// Scale is the fixed-point denominator (2^Shift).
const Scale = 1 << Shift

// SqrtScale is the exact square root of Scale.
const SqrtScale = 32

// SqrtIterations pins the Babylonian iteration count.
const SqrtIterations = 48

// Q is a fixed-point value with Shift fractional bits.
type Q int64

// One is the fixed-point representation of 1.0.
const One Q = Scale

// FromFloat quantizes v, rounding half away from zero. Non-finite values map
// to zero.
func FromFloat(v float64) Q {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return Q(math.Round(v * Scale))
}

// FromInt converts an integer.
func FromInt(v int) Q { return Q(int64(v) << Shift) }

// Float converts q back to floating point.
func (q Q) Float() float64 { return float64(q) / Scale }

// Mul returns a*b with rounding to nearest.
func Mul(a, b Q) Q {
	return Q(roundShift(int64(a) * int64(b)))
}

// Div returns a/b rounded toward zero. Division by zero returns zero.
func Div(a, b Q) Q {
	if b == 0 {
		return 0
	}
	return Q((int64(a) << Shift) / int64(b))
}

// Abs returns |q|.
func Abs(q Q) Q {
	if q < 0 {
		return -q
	}
	return q
}

// Clamp limits q to [lo, hi].
func Clamp(q, lo, hi Q) Q {
	if q < lo {
		return lo
	}
	if q > hi {
		return hi
	}
	return q
}

// Max returns the larger of a and b.
func Max(a, b Q) Q {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b Q) Q {
	if a < b {
		return a
	}
	return b
}

// Sqrt returns the fixed-point square root of q. It never calls the
// platform square root.
func Sqrt(q Q) Q {
	if q <= 0 {
		return 0
	}
	// sqrt(v*S) * sqrt(S) = sqrt(v) * S
	return Q(ISqrt(int64(q)) * SqrtScale)
}

// ISqrt returns floor(sqrt(v)) for v >= 0 using a fixed number of Babylonian
// iterations followed by an integer correction.
func ISqrt(v int64) int64 {
	if v <= 0 {
		return 0
	}
	if v < 4 {
		return 1
	}
	x := v / 2
	for i := 0; i < SqrtIterations; i++ {
		if x == 0 {
			break
		}
		x = (x + v/x) / 2
	}
	for x > 0 && x > v/x {
		x--
	}
	for (x+1) <= v/(x+1) {
		x++
	}
	return x
}

func roundShift(v int64) int64 {
	if v >= 0 {
		return (v + Scale/2) >> Shift
	}
	return -((-v + Scale/2) >> Shift)
}
