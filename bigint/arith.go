package bigint

// addAt adds x into limbs[i], propagating carry upward, implementing
// spec.md §4.6's "addition of a built-in integer at index i": carry is
// detected by the sum wrapping below the previous value, and carry that
// would propagate past the last limb saturates the whole value to zero
// (the two's-complement wraparound of a fixed-width unsigned add).
func (b *BigInt[L]) addAt(i int, x L) {
	carry := x
	for carry != 0 && i <= b.maxLimbIndex() {
		prev := b.limbs[i]
		sum := prev + carry
		b.limbs[i] = sum
		if sum < prev {
			carry = 1
		} else {
			carry = 0
		}
		if i > b.top && b.limbs[i] != 0 {
			b.top = i
		}
		i++
	}
	if carry != 0 {
		// Carry propagated past the top limb: wrap the whole value to
		// zero, per spec.md §4.6's fixed-width overflow rule.
		for j := range b.limbs {
			b.limbs[j] = 0
		}
		b.top = 0
		return
	}
	b.clampTop()
}

// Add adds the single-limb built-in x to the value.
func (b *BigInt[L]) Add(x L) { b.addAt(0, x) }

// subAt subtracts x from limbs[i], propagating borrow upward, per
// spec.md §4.6's "subtraction of a built-in integer at index i": borrow
// past the highest limb saturates top to the maximum (the value wraps to
// 2^B - remainder, i.e. two's-complement underflow within the width).
func (b *BigInt[L]) subAt(i int, x L) {
	borrow := x
	for borrow != 0 && i <= b.maxLimbIndex() {
		prev := b.limbs[i]
		diff := prev - borrow
		b.limbs[i] = diff
		if diff > prev {
			borrow = 1
		} else {
			borrow = 0
		}
		i++
	}
	if borrow != 0 {
		// Underflowed past the top limb: the limbs already hold the
		// wrapped value, so keep it within the configured width
		// (two's-complement of the shortfall) and saturate top.
		b.limbs[len(b.limbs)-1] &= b.topMask
		b.top = b.maxLimbIndex()
		b.normalizeTop()
		return
	}
	b.clampTop()
}

// Sub subtracts the single-limb built-in x from the value.
func (b *BigInt[L]) Sub(x L) { b.subAt(0, x) }

// Multiply scans limbs from top down to 0, forming the full w×w product
// of each limb with m via the double-width adapter and folding the high
// half in as a carry at the next limb up (spec.md §4.6).
func (b *BigInt[L]) Multiply(m L) {
	if m == 0 {
		for i := range b.limbs {
			b.limbs[i] = 0
		}
		b.top = 0
		return
	}

	for i := b.top; i >= 0; i-- {
		hi, lo := mulWide(b.limbs[i], m)
		b.limbs[i] = lo
		if hi != 0 {
			b.addAt(i+1, hi)
		}
	}
	b.clampTop()
}

// Divide performs classic long division by the single-limb built-in d,
// top-down across limbs, and returns the remainder (spec.md §4.6).
// Dividing by zero is a caller error; it panics, matching the built-in
// integer division it generalizes.
func (b *BigInt[L]) Divide(d L) L {
	if d == 0 {
		panic("bigint: division by zero")
	}

	var remainder L
	for i := b.top; i >= 0; i-- {
		q, r := divWide(remainder, b.limbs[i], d)
		b.limbs[i] = q
		remainder = r
	}
	b.normalizeTop()
	return remainder
}

// ShiftLeft shifts the value left by s bits, decomposed into a whole-limb
// move by q = s/w and an intra-limb shift by r = s%w (spec.md §4.6). A
// shift that would push every retained bit out saturates the value to
// zero.
func (b *BigInt[L]) ShiftLeft(s int) {
	if s <= 0 {
		return
	}
	w := b.limbWidth
	q, r := s/w, s%w
	n := len(b.limbs)

	if q >= n {
		for i := range b.limbs {
			b.limbs[i] = 0
		}
		b.top = 0
		return
	}

	if q > 0 {
		for i := n - 1; i >= q; i-- {
			b.limbs[i] = b.limbs[i-q]
		}
		for i := 0; i < q; i++ {
			b.limbs[i] = 0
		}
	}

	if r > 0 {
		for i := n - 1; i > q; i-- {
			high := b.limbs[i] << uint(r)
			spill := b.limbs[i-1] >> uint(w-r)
			b.limbs[i] = high | spill
		}
		b.limbs[q] <<= uint(r)
	}

	b.limbs[len(b.limbs)-1] &= b.topMask
	b.top = n - 1
	b.normalizeTop()
}

// ShiftRight shifts the value right by s bits, symmetric with ShiftLeft.
func (b *BigInt[L]) ShiftRight(s int) {
	if s <= 0 {
		return
	}
	w := b.limbWidth
	q, r := s/w, s%w
	n := len(b.limbs)

	if q > b.top {
		for i := range b.limbs {
			b.limbs[i] = 0
		}
		b.top = 0
		return
	}

	if q > 0 {
		for i := 0; i <= n-1-q; i++ {
			b.limbs[i] = b.limbs[i+q]
		}
		for i := n - q; i < n; i++ {
			b.limbs[i] = 0
		}
	}

	if r > 0 {
		last := n - 1 - q
		for i := 0; i < last; i++ {
			low := b.limbs[i] >> uint(r)
			spill := b.limbs[i+1] << uint(w-r)
			b.limbs[i] = low | spill
		}
		b.limbs[last] >>= uint(r)
	}

	b.normalizeTop()
}

// BitAnd ANDs the single-limb built-in x into the least-significant limb.
func (b *BigInt[L]) BitAnd(x L) {
	b.limbs[0] &= x
	b.normalizeTop()
}

// BitOr ORs the single-limb built-in x into the least-significant limb.
func (b *BigInt[L]) BitOr(x L) {
	b.limbs[0] |= x
	b.limbs[len(b.limbs)-1] &= b.topMask
	if b.top == 0 && b.limbs[0] != 0 {
		b.top = 0
	}
}
