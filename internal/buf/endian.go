// Package buf contains overflow-safe arithmetic and endian-safe value
// helpers shared by the property codecs and the property store.
package buf

import (
	"encoding/binary"
	"math"
)

// All in-memory property values are little-endian so that the serialized
// form of a scalar is a byte copy of its slot.

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// PutU32LE writes v to b. It is a no-op when b is too short.
func PutU32LE(b []byte, v uint32) {
	if len(b) < 4 {
		return
	}
	binary.LittleEndian.PutUint32(b, v)
}

// PutU64LE writes v to b. It is a no-op when b is too short.
func PutU64LE(b []byte, v uint64) {
	if len(b) < 8 {
		return
	}
	binary.LittleEndian.PutUint64(b, v)
}

// F32LE reads a little-endian float32.
func F32LE(b []byte) float32 { return math.Float32frombits(U32LE(b)) }

// F64LE reads a little-endian float64.
func F64LE(b []byte) float64 { return math.Float64frombits(U64LE(b)) }

// PutF32LE writes a little-endian float32.
func PutF32LE(b []byte, v float32) { PutU32LE(b, math.Float32bits(v)) }

// PutF64LE writes a little-endian float64.
func PutF64LE(b []byte, v float64) { PutU64LE(b, math.Float64bits(v)) }
