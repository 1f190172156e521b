// Package bigint implements BigInt<L, B> (spec.md §4.6): a fixed-width,
// limb-based unsigned integer whose limb type L and total bit width are
// both chosen at construction. Storage is little-endian by limb
// (limbs[0] is least significant); a top field records the index of the
// highest non-zero limb, with the invariant limbs[i] == 0 for i > top
// restored by every mutator before it returns.
//
// Grounded on original_source/Include/Qentem/BigInt.hpp for exact
// operation semantics (overflow/saturation rules, the top-tracking
// discipline, the decimal String/SetString helpers) and on the teacher's
// kernel/mem/pmm/frame.go for the limb-array/"index of highest valid
// entry" structuring idiom this package generalizes from physical frame
// numbers to arbitrary-width integers.
//
// Go has no const-integer generic parameters (no equivalent of C++'s
// non-type template parameter B), so the total bit width is a runtime
// field fixed at construction by New rather than part of the type
// itself; see DESIGN.md for this Open Question resolution.
package bigint

import (
	"unsafe"

	"github.com/qentengo/qentengo/bitscan"
	"github.com/qentengo/qentengo/qerr"
)

// Limb is satisfied by every unsigned integer width the double-width
// adapter (doublewidth.go) has a case for.
type Limb interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// BigInt is a fixed-width unsigned integer over limb type L.
type BigInt[L Limb] struct {
	limbs []L
	top   int

	bitWidth  int
	limbWidth int
	topMask   L // mask applied to limbs[len(limbs)-1] after every mutation
}

// New constructs a zero-valued BigInt with storage for ceil(bitWidth/w)
// limbs of type L, w being L's native bit width (spec.md §4.6).
func New[L Limb](bitWidth int) *BigInt[L] {
	var zero L
	w := limbBits(zero)
	k := (bitWidth + w - 1) / w

	b := &BigInt[L]{
		limbs:     make([]L, k),
		bitWidth:  bitWidth,
		limbWidth: w,
	}
	b.topMask = topLimbMask[L](bitWidth, w, k)
	return b
}

// limbBits returns the bit width of L via its zero value's size.
func limbBits[L Limb](zero L) int {
	return int(unsafe.Sizeof(zero)) * 8
}

// topLimbMask computes the mask of valid bits within the highest-index
// limb, so that bits beyond bitWidth are always zero even when bitWidth
// isn't a whole multiple of w.
func topLimbMask[L Limb](bitWidth, w, k int) L {
	usedBitsInTopLimb := bitWidth - (k-1)*w
	if usedBitsInTopLimb >= w {
		return ^L(0)
	}
	return L(1)<<uint(usedBitsInTopLimb) - 1
}

// SetUint64 assigns x, per spec.md §4.6's "assignment from a built-in
// integer" rule: x is distributed across the low limbs and every higher
// limb that previously held a non-zero value is zeroed.
func (b *BigInt[L]) SetUint64(x uint64) {
	for i := range b.limbs {
		b.limbs[i] = 0
	}
	mask := uint64(1)<<uint(b.limbWidth) - 1
	if b.limbWidth == 64 {
		mask = ^uint64(0)
	}
	top := 0
	for i := 0; i < len(b.limbs) && x != 0; i++ {
		b.limbs[i] = L(x & mask)
		if b.limbs[i] != 0 {
			top = i
		}
		x >>= uint(b.limbWidth)
	}
	b.limbs[len(b.limbs)-1] &= b.topMask
	b.top = top
	b.normalizeTop()
}

// IsZero reports whether the value is zero.
func (b *BigInt[L]) IsZero() bool {
	return b.top == 0 && b.limbs[0] == 0
}

// IsBig reports whether more than one limb is in use.
func (b *BigInt[L]) IsBig() bool {
	return b.top > 0
}

// Index returns the current value of Top — the index of the highest
// non-zero limb.
func (b *BigInt[L]) Index() int { return b.top }

// Number returns the least-significant limb as a built-in value.
func (b *BigInt[L]) Number() L { return b.limbs[0] }

// Storage returns the backing limb slice, least-significant limb first.
// Callers must not retain it past the next mutating call.
func (b *BigInt[L]) Storage() []L { return b.limbs }

// Equal reports whether the value equals the single-limb built-in x.
func (b *BigInt[L]) Equal(x L) bool {
	return b.top == 0 && b.limbs[0] == x
}

// Greater reports whether the value exceeds the single-limb built-in x.
func (b *BigInt[L]) Greater(x L) bool {
	return b.top > 0 || b.limbs[0] > x
}

// Less reports whether the value is less than the single-limb built-in x.
func (b *BigInt[L]) Less(x L) bool {
	return !b.Equal(x) && !b.Greater(x)
}

// FindFirstBit returns the 0-based index of the least-significant set bit
// across the whole limb array. It errors on a zero value (spec.md §4.8's
// precondition, enforced explicitly here rather than left undefined).
func (b *BigInt[L]) FindFirstBit() (int, error) {
	if b.IsZero() {
		return 0, qerr.Wrap("bigint.FindFirstBit", qerr.ErrZeroValue)
	}
	for i, limb := range b.limbs {
		if limb != 0 {
			return i*b.limbWidth + bitscan.FirstSetBit(limb), nil
		}
	}
	panic("bigint: non-zero value with no set bit")
}

// FindLastBit returns the 0-based index of the most-significant set bit,
// computed from top per spec.md §4.6.
func (b *BigInt[L]) FindLastBit() (int, error) {
	if b.IsZero() {
		return 0, qerr.Wrap("bigint.FindLastBit", qerr.ErrZeroValue)
	}
	return b.top*b.limbWidth + bitscan.LastSetBit(b.limbs[b.top]), nil
}

// normalizeTop restores the top invariant by scanning down from the
// current top for the first non-zero limb.
func (b *BigInt[L]) normalizeTop() {
	for b.top > 0 && b.limbs[b.top] == 0 {
		b.top--
	}
}

// maxLimbIndex is the highest valid limb index this BigInt's storage
// provides.
func (b *BigInt[L]) maxLimbIndex() int { return len(b.limbs) - 1 }

// clampTop applies topMask to the highest-index limb, enforcing bitWidth
// when it isn't a whole multiple of the limb width.
func (b *BigInt[L]) clampTop() {
	b.limbs[len(b.limbs)-1] &= b.topMask
	b.normalizeTop()
}
