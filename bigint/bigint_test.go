package bigint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetUint64AndEquality(t *testing.T) {
	b := New[uint64](128)
	b.SetUint64(42)
	require.True(t, b.Equal(42))
	require.False(t, b.IsZero())
	require.False(t, b.IsBig())
}

func TestAddOverflowWrapsToZero(t *testing.T) {
	b := New[uint8](16) // 2 limbs of 8 bits
	b.SetUint64(0xFFFF)
	b.Add(1)
	require.True(t, b.IsZero(), "overflow past the top limb must wrap to zero")
}

func TestSubUnderflowSaturatesWithinWidth(t *testing.T) {
	b := New[uint8](16)
	b.SetUint64(0)
	b.Sub(1)
	require.Equal(t, uint8(0xFF), b.limbs[0])
	require.Equal(t, uint8(0xFF), b.limbs[1])
}

// TestMultiplyDivideRoundTrip is spec.md §8 invariant 5: Multiply(m);
// Divide(m) returns the original value when the intermediate product
// fits within the configured width.
func TestMultiplyDivideRoundTrip(t *testing.T) {
	b := New[uint32](256)
	b.SetUint64(123456789)
	b.Multiply(987654321)
	remainder := b.Divide(987654321)
	require.Zero(t, remainder)
	require.True(t, b.Equal(123456789))
}

// TestShiftRoundTrip is spec.md §8 invariant 6.
func TestShiftRoundTrip(t *testing.T) {
	b := New[uint32](256)
	b.SetUint64(0xABCDEF)
	b.ShiftLeft(17)
	b.ShiftRight(17)
	require.True(t, b.Equal(0xABCDEF))
}

// TestFindFirstLastBitOrdering is spec.md §8 invariant 7: for any nonzero
// x, find_first_bit(x) <= find_last_bit(x) < B.
func TestFindFirstLastBitOrdering(t *testing.T) {
	b := New[uint32](128)
	b.SetUint64(0x10020000)
	first, err := b.FindFirstBit()
	require.NoError(t, err)
	last, err := b.FindLastBit()
	require.NoError(t, err)
	require.LessOrEqual(t, first, last)
	require.Less(t, last, 128)
}

func TestFindFirstBitZeroErrors(t *testing.T) {
	b := New[uint32](128)
	_, err := b.FindFirstBit()
	require.Error(t, err)
}

// TestScenarioE is spec.md §8 Scenario E: BigInt roundtrip on a 64-bit
// limb, 1024-bit width.
func TestScenarioE(t *testing.T) {
	const m = uint64(18446744073709551615) // 2^64 - 1

	b := New[uint64](1024)
	b.SetUint64(1)
	for i := 0; i < 16; i++ {
		b.Multiply(m)
	}
	require.Equal(t, 15, b.Index())

	want := bigPow(m, 16)
	require.Equal(t, want, b.String())

	for i := 0; i < 15; i++ {
		r := b.Divide(m)
		require.Zero(t, r)
	}
	require.Equal(t, 0, b.Index())
	require.Equal(t, m, uint64(b.Number()))
}

// bigPow computes base^exp in decimal with math/big, as an independent
// cross-check path rather than hand-computing a 300-digit literal.
func bigPow(base uint64, exp int) string {
	x := new(big.Int).SetUint64(base)
	return x.Exp(x, big.NewInt(int64(exp)), nil).String()
}

// TestScenarioG is spec.md §8 Scenario G: shift saturation on a 128-bit
// BigInt with 64-bit limbs.
func TestScenarioG(t *testing.T) {
	b := New[uint64](128)
	b.limbs[0] = ^uint64(0)
	b.limbs[1] = ^uint64(0)
	b.top = 1

	allOnes := b.Clone()

	b.ShiftLeft(128)
	require.True(t, b.IsZero())

	b2 := allOnes.Clone()
	b2.ShiftLeft(192)
	require.True(t, b2.IsZero())

	b3 := allOnes.Clone()
	b3.ShiftLeft(65)
	b3.ShiftRight(65)

	// ShiftLeft(65) pushes the top 65 bits of a 128-bit all-ones value
	// out of the width, leaving 63 set bits, then ShiftRight(65) moves
	// those 63 bits back down and drops the 65 zero bits below them —
	// only the lowest 63 bits of the original survive,
	// i.e. 0x7fffffffffffffff in limb 0 and 0 in limb 1. Clearing just
	// the top bit (spec.md §8 Scenario G's literal wording) only holds
	// for a shift amount of 1, not 65; see DESIGN.md.
	want := New[uint64](128)
	want.limbs[0] = 0x7fffffffffffffff
	want.limbs[1] = 0
	want.normalizeTop()
	require.Equal(t, want.limbs, b3.limbs)
}

func TestStringRoundTrip(t *testing.T) {
	b := New[uint32](128)
	require.NoError(t, b.SetString("123456789012345678901234567890"))
	require.Equal(t, "123456789012345678901234567890", b.String())
}

func TestStringZero(t *testing.T) {
	b := New[uint32](64)
	require.Equal(t, "0", b.String())
}

func TestSetStringRejectsMalformed(t *testing.T) {
	b := New[uint32](64)
	require.Error(t, b.SetString(""))
	require.Error(t, b.SetString("12x4"))
}

// TestDoubleWidthDivideKnuthPath exercises divWide's multi-limb correction
// branch directly (the Knuth two-digit division spec.md §4.7 describes
// hand-rolling for w = 64, here delegated to math/bits.Div64): a dividend
// whose high half is just below the divisor forces at least one
// quotient-digit correction.
func TestDoubleWidthDivideKnuthPath(t *testing.T) {
	hi := uint64(0x7FFFFFFFFFFFFFFF)
	lo := uint64(0xFFFFFFFFFFFFFFFF)
	d := uint64(0x8000000000000001)

	q, r := divWide(hi, lo, d)

	gotHi, gotLo := mulWide(q, d)
	// reconstruct hi:lo from q*d + r and compare against the original
	sum, carry := addWithCarry(gotLo, r)
	gotHi += carry
	require.Equal(t, lo, sum)
	require.Equal(t, hi, gotHi)
}

func addWithCarry(a, b uint64) (sum uint64, carry uint64) {
	sum = a + b
	if sum < a {
		carry = 1
	}
	return
}
