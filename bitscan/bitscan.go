// Package bitscan provides the two platform bit-scan primitives that both
// memblock's first-fit scanner and bigint's shift/bit-scan operations build
// on (spec.md §4.8): FirstSetBit and LastSetBit. Both are undefined for a
// zero input; callers must guard.
//
// The teacher (a freestanding kernel) exposes CPU feature toggles
// (cpu.EnableInterrupts, cpu.Halt, ...) as extern asm stubs rather than a
// bit-scan library, so there is no in-pack bit-scan dependency to adopt.
// No third-party bit-manipulation library appears anywhere in the
// retrieved pack either; math/bits is the standard, intrinsic-backed
// (TZCNT/BSR on amd64, CLZ/CTZ on arm64) choice the Go toolchain lowers
// these operations to, and is documented in DESIGN.md as a justified
// stdlib use.
package bitscan

import "math/bits"

// Unsigned is satisfied by every width math/bits has a specialized
// TrailingZeros/Len variant for.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// FirstSetBit returns the 0-based index of the least-significant set bit
// of x. It is undefined for x == 0 — callers must check IsZero-equivalent
// conditions first.
func FirstSetBit[T Unsigned](x T) int {
	switch v := any(x).(type) {
	case uint8:
		return bits.TrailingZeros8(v)
	case uint16:
		return bits.TrailingZeros16(v)
	case uint32:
		return bits.TrailingZeros32(v)
	case uint64:
		return bits.TrailingZeros64(v)
	case uint:
		return bits.TrailingZeros(v)
	default:
		return trailingZerosGeneric(x)
	}
}

// LastSetBit returns the 0-based index of the most-significant set bit of
// x. It is undefined for x == 0.
func LastSetBit[T Unsigned](x T) int {
	switch v := any(x).(type) {
	case uint8:
		return bits.Len8(v) - 1
	case uint16:
		return bits.Len16(v) - 1
	case uint32:
		return bits.Len32(v) - 1
	case uint64:
		return bits.Len64(v) - 1
	case uint:
		return bits.Len(v) - 1
	default:
		return lenGeneric(x) - 1
	}
}

// trailingZerosGeneric handles named types with one of the underlying
// kinds above that don't match the type switch directly (type switches on
// `any` compare dynamic types exactly, so a defined type such as
// `type myUint32 uint32` falls through to here).
func trailingZerosGeneric[T Unsigned](x T) int {
	n := 0
	for x&1 == 0 {
		x >>= 1
		n++
	}
	return n
}

func lenGeneric[T Unsigned](x T) int {
	n := 0
	for x != 0 {
		x >>= 1
		n++
	}
	return n
}

// OnesCount returns the number of set bits in x; used by CPUSet.Count.
func OnesCount[T Unsigned](x T) int {
	switch v := any(x).(type) {
	case uint8:
		return bits.OnesCount8(v)
	case uint16:
		return bits.OnesCount16(v)
	case uint32:
		return bits.OnesCount32(v)
	case uint64:
		return bits.OnesCount64(v)
	case uint:
		return bits.OnesCount(v)
	default:
		n := 0
		for x != 0 {
			x &= x - 1
			n++
		}
		return n
	}
}
