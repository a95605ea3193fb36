package fpmath

import (
	"errors"
	"math"
	"math/bits"
)

// Fixed-point arithmetic over int64 values scaled by 1e7, the native
// precision of the reward token. Every operation is checked: results that
// do not fit int64 fail with ErrOverflow, division by zero with
// ErrDivisionByZero. Callers are expected to branch on these sentinels
// instead of letting raw arithmetic wrap.

const Scalar int64 = 10_000_000

var (
	ErrOverflow       = errors.New("fixed-point overflow")
	ErrDivisionByZero = errors.New("division by zero")
)

// One is 1.0 in fixed-point representation.
const One = Scalar

// FromInt converts a whole number to its fixed-point representation.
func FromInt(n int64) (int64, error) {
	return mul128(n, Scalar, 1)
}

// MulFloor multiplies two fixed-point values, truncating toward zero.
func MulFloor(a, b int64) (int64, error) {
	return mul128(a, b, Scalar)
}

// DivFloor divides two fixed-point values, truncating toward zero.
func DivFloor(a, b int64) (int64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return mul128(a, Scalar, b)
}

// Add returns a + b, checked.
func Add(a, b int64) (int64, error) {
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum > 0) {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a - b, checked.
func Sub(a, b int64) (int64, error) {
	diff := a - b
	if (a >= 0 && b < 0 && diff < 0) || (a < 0 && b > 0 && diff > 0) {
		return 0, ErrOverflow
	}
	return diff, nil
}

// SqrtFloor returns the fixed-point square root of a fixed-point value,
// truncated. Fails for negative inputs and for inputs large enough that the
// rescaled radicand leaves the representable range.
func SqrtFloor(a int64) (int64, error) {
	if a < 0 {
		return 0, ErrOverflow
	}
	// sqrt(a/S) * S == sqrt(a*S), so rescale first to keep precision.
	radicand, err := mul128(a, Scalar, 1)
	if err != nil {
		return 0, err
	}
	return isqrt(uint64(radicand)), nil
}

// mul128 computes a*b/d with a 128-bit intermediate product, truncating
// toward zero. d must be positive.
func mul128(a, b, d int64) (int64, error) {
	neg := (a < 0) != (b < 0)
	ua := absU64(a)
	ub := absU64(b)
	ud := uint64(d)

	hi, lo := bits.Mul64(ua, ub)
	if hi >= ud {
		// Quotient would not fit in 64 bits.
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, ud)
	if q > math.MaxInt64 {
		return 0, ErrOverflow
	}
	if neg {
		return -int64(q), nil
	}
	return int64(q), nil
}

func absU64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

// isqrt is the integer square root by Newton iteration.
func isqrt(n uint64) int64 {
	if n == 0 {
		return 0
	}
	x := uint64(1) << ((bits.Len64(n) + 1) / 2)
	for {
		y := (x + n/x) / 2
		if y >= x {
			return int64(x)
		}
		x = y
	}
}
