package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false when
// the product would overflow int or either operand is negative.
// This guards every count * elementSize calculation in the growth paths.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CheckSpan validates that count elements of elementSize bytes fit in a
// buffer of bufLen bytes. Returns the byte span on success.
//
// Codecs call this before touching either side of a conversion:
//
//	n, err := buf.CheckSpan(len(dst), count, width)
//	if err != nil {
//	    return 0, fmt.Errorf("encode: %w", err)
//	}
func CheckSpan(bufLen, count, elementSize int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("negative count: %d", count)
	}
	if elementSize <= 0 {
		return 0, fmt.Errorf("non-positive element size: %d", elementSize)
	}
	total, ok := MulOverflowSafe(count, elementSize)
	if !ok {
		return 0, fmt.Errorf("overflow: count=%d * elemSize=%d", count, elementSize)
	}
	if total > bufLen {
		return 0, fmt.Errorf("bounds: need=%d > len=%d", total, bufLen)
	}
	return total, nil
}

// RoundUp rounds n up to the next multiple of unit. ok is false on overflow
// or when unit is not positive.
func RoundUp(n, unit int) (int, bool) {
	if unit <= 0 || n < 0 {
		return 0, false
	}
	rem := n % unit
	if rem == 0 {
		return n, true
	}
	return AddOverflowSafe(n, unit-rem)
}
