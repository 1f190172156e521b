package bigint

import (
	"errors"
	"strings"
)

// Clone returns an independent copy of b.
func (b *BigInt[L]) Clone() *BigInt[L] {
	out := &BigInt[L]{
		limbs:     make([]L, len(b.limbs)),
		top:       b.top,
		bitWidth:  b.bitWidth,
		limbWidth: b.limbWidth,
		topMask:   b.topMask,
	}
	copy(out.limbs, b.limbs)
	return out
}

// String renders the decimal expansion of b. original_source's BigInt
// divides by 1e19 chunks at a time, which only fits a 64-bit limb; this
// generalizes to every limb width supported by Limb by dividing by 10 one
// digit at a time instead (spec.md's BigInt.ToString() is a supplemented
// feature — see SPEC_FULL.md §5 and DESIGN.md for this simplification).
func (b *BigInt[L]) String() string {
	if b.IsZero() {
		return "0"
	}

	work := b.Clone()
	var digits []byte
	for !work.IsZero() {
		r := work.Divide(L(10))
		digits = append(digits, byte('0')+byte(r))
	}

	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// ErrMalformedDecimal is returned by SetString when s is not a non-empty
// run of ASCII decimal digits.
var ErrMalformedDecimal = errors.New("bigint: malformed decimal string")

// SetString parses the decimal string s and assigns it to b, via repeated
// multiply-by-ten-and-add (spec.md's supplemented BigInt.FromString()).
// Overflow past the configured width wraps silently, matching every other
// BigInt mutator's overflow semantics.
func (b *BigInt[L]) SetString(s string) error {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r < '0' || r > '9' }) {
		return ErrMalformedDecimal
	}

	b.SetUint64(0)
	for i := 0; i < len(s); i++ {
		b.Multiply(L(10))
		b.Add(L(s[i] - '0'))
	}
	return nil
}
