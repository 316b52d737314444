// Package grow implements the geometric resize used by every growable buffer
// in galkit: record arrays, pool free lists, pool block directories, and the
// property-store table.
//
// A resize computes the new capacity first and then performs exactly one
// reallocation. On failure the caller's slice is returned untouched, so no
// buffer is ever left half-grown.
package grow

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/joshuapare/galkit/internal/buf"
	"github.com/joshuapare/galkit/pkg/types"
)

// maxAllocBytes caps a single backing allocation. It mirrors the runtime's
// own ceiling on 64-bit platforms so that impossible requests are reported as
// ErrOutOfMemory instead of reaching makeslice. Requests below it that the
// machine cannot satisfy still abort the process; callers sizing buffers
// from untrusted input must bound the size themselves.
const maxAllocBytes = 1 << 47

// Policy controls geometric growth.
type Policy struct {
	// Factor multiplies the capacity on each step. Zero selects
	// types.DefaultGrowthFactor; values below types.MinGrowthFactor are rejected.
	Factor float64

	// Floor seeds growth from an empty buffer. Zero selects types.DefaultGrowthFloor.
	Floor int

	// Limit is the largest capacity (in elements) the buffer may reach.
	// Zero means no limit beyond the allocation ceiling.
	Limit int
}

// Default returns the standard policy.
func Default() Policy {
	return Policy{Factor: types.DefaultGrowthFactor, Floor: types.DefaultGrowthFloor}
}

func (p Policy) normalize() (Policy, error) {
	if p.Factor == 0 {
		p.Factor = types.DefaultGrowthFactor
	}
	if math.IsNaN(p.Factor) || p.Factor < types.MinGrowthFactor {
		return p, fmt.Errorf("grow: factor %v below %v: %w", p.Factor, types.MinGrowthFactor, types.ErrInvalidArgument)
	}
	if p.Floor == 0 {
		p.Floor = types.DefaultGrowthFloor
	}
	if p.Floor < 0 || p.Limit < 0 {
		return p, fmt.Errorf("grow: negative floor or limit: %w", types.ErrInvalidArgument)
	}
	return p, nil
}

// NextCapacity returns the smallest capacity reachable from cur by repeated
// multiplication with the policy factor that satisfies need. An empty buffer
// starts at the floor. When cur already satisfies need, cur is returned.
func NextCapacity(cur, need int, p Policy) (int, error) {
	p, err := p.normalize()
	if err != nil {
		return 0, err
	}
	if cur < 0 || need < 0 {
		return 0, fmt.Errorf("grow: negative capacity cur=%d need=%d: %w", cur, need, types.ErrInvalidArgument)
	}
	if need <= cur {
		return cur, nil
	}

	capacity := cur
	if capacity == 0 {
		capacity = p.Floor
	}
	for capacity < need {
		next := float64(capacity) * p.Factor
		if next >= float64(math.MaxInt) {
			return 0, fmt.Errorf("grow: capacity overflow growing %d to %d: %w", cur, need, types.ErrOutOfMemory)
		}
		n := int(math.Ceil(next))
		if n <= capacity {
			n = capacity + 1
		}
		capacity = n
	}
	if p.Limit > 0 && capacity > p.Limit {
		// A step may overshoot a limit that need itself respects.
		if need > p.Limit {
			return 0, fmt.Errorf("grow: need %d exceeds limit %d: %w", need, p.Limit, types.ErrOutOfMemory)
		}
		capacity = p.Limit
	}
	return capacity, nil
}

// Slice returns s with capacity of at least need, preserving len(s) and every
// element at its index. If cap(s) already satisfies need, s is returned as-is.
// On error the original slice is returned unchanged.
func Slice[T any](s []T, need int, p Policy) ([]T, error) {
	if need <= cap(s) {
		return s, nil
	}
	newCap, err := NextCapacity(cap(s), need, p)
	if err != nil {
		return s, err
	}
	grown, err := Make[T](len(s), newCap)
	if err != nil {
		return s, err
	}
	copy(grown, s)
	return grown, nil
}

// Make allocates a slice of length n and capacity c. Sizes that overflow or
// exceed the allocation ceiling, and makeslice range panics, are reported as
// ErrOutOfMemory. A runtime out-of-memory abort cannot be recovered and is not
// converted.
func Make[T any](n, c int) (out []T, err error) {
	if n < 0 || c < n {
		return nil, fmt.Errorf("grow: bad make len=%d cap=%d: %w", n, c, types.ErrInvalidArgument)
	}
	var zero T
	bytes, ok := buf.MulOverflowSafe(c, int(unsafe.Sizeof(zero)))
	if !ok || uint64(bytes) > maxAllocBytes {
		return nil, fmt.Errorf("grow: %d elements of %d bytes: %w", c, unsafe.Sizeof(zero), types.ErrOutOfMemory)
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("grow: allocation of %d elements refused (%v): %w", c, r, types.ErrOutOfMemory)
		}
	}()
	return make([]T, n, c), nil
}
