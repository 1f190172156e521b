package bigint

import "math/bits"

// mulWide computes the full w×w → 2w product of a and b, returning
// (hi, lo), for every limb width the Limb constraint allows (spec.md
// §4.7). For w ∈ {8,16,32} this promotes to the next-larger native
// unsigned type and splits the result; for w = 64 it uses math/bits'
// Mul64, which is itself the two-half-product/carry-assembly algorithm
// spec.md describes hand-rolling, lowered by the Go compiler to a single
// hardware MULQ on amd64/arm64 — see DESIGN.md.
func mulWide[L Limb](a, b L) (hi, lo L) {
	switch av := any(a).(type) {
	case uint8:
		bv := any(b).(uint8)
		p := uint16(av) * uint16(bv)
		return L(p >> 8), L(p)
	case uint16:
		bv := any(b).(uint16)
		p := uint32(av) * uint32(bv)
		return L(p >> 16), L(p)
	case uint32:
		bv := any(b).(uint32)
		p := uint64(av) * uint64(bv)
		return L(p >> 32), L(p)
	case uint64:
		bv := any(b).(uint64)
		h, l := bits.Mul64(av, bv)
		return L(h), L(l)
	default:
		return mulWideGeneric(a, b)
	}
}

// mulWideGeneric handles defined types whose underlying kind doesn't
// match the type switch exactly, by promoting through uint64 — sufficient
// since Limb is bounded at 64 bits.
func mulWideGeneric[L Limb](a, b L) (hi, lo L) {
	bitWidth := limbBits(a)
	if bitWidth == 64 {
		h, l := bits.Mul64(uint64(a), uint64(b))
		return L(h), L(l)
	}
	p := uint64(a) * uint64(b)
	return L(p >> uint(bitWidth)), L(p)
}

// divWide computes the quotient and remainder of the 2w-bit dividend
// (hi:lo) divided by d, per spec.md §4.7. The quotient must fit a single
// limb (hi < d): for w = 64 a larger quotient panics, the contract
// math/bits.Div64 exposes, while for narrower widths it is truncated to
// the limb. Callers only reach this path with a normalized hi < d,
// guaranteed by BigInt's long-division loop.
func divWide[L Limb](hi, lo, d L) (q, r L) {
	switch hv := any(hi).(type) {
	case uint8:
		lv, dv := any(lo).(uint8), any(d).(uint8)
		dividend := uint16(hv)<<8 | uint16(lv)
		return L(dividend / uint16(dv)), L(dividend % uint16(dv))
	case uint16:
		lv, dv := any(lo).(uint16), any(d).(uint16)
		dividend := uint32(hv)<<16 | uint32(lv)
		return L(dividend / uint32(dv)), L(dividend % uint32(dv))
	case uint32:
		lv, dv := any(lo).(uint32), any(d).(uint32)
		dividend := uint64(hv)<<32 | uint64(lv)
		return L(dividend / uint64(dv)), L(dividend % uint64(dv))
	case uint64:
		lv, dv := any(lo).(uint64), any(d).(uint64)
		q, r := bits.Div64(hv, lv, dv)
		return L(q), L(r)
	default:
		return divWideGeneric(hi, lo, d)
	}
}

func divWideGeneric[L Limb](hi, lo, d L) (q, r L) {
	bitWidth := limbBits(hi)
	if bitWidth == 64 {
		q, r := bits.Div64(uint64(hi), uint64(lo), uint64(d))
		return L(q), L(r)
	}
	dividend := uint64(hi)<<uint(bitWidth) | uint64(lo)
	return L(dividend / uint64(d)), L(dividend % uint64(d))
}
