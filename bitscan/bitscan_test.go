package bitscan

import "testing"

func TestFirstSetBit(t *testing.T) {
	specs := []struct {
		x    uint64
		want int
	}{
		{1, 0},
		{2, 1},
		{0x8000000000000000, 63},
		{0b1010, 1},
	}

	for i, spec := range specs {
		if got := FirstSetBit(spec.x); got != spec.want {
			t.Errorf("[spec %d] FirstSetBit(%b): expected %d, got %d", i, spec.x, spec.want, got)
		}
	}
}

func TestLastSetBit(t *testing.T) {
	specs := []struct {
		x    uint64
		want int
	}{
		{1, 0},
		{2, 1},
		{0x8000000000000000, 63},
		{0b1010, 3},
	}

	for i, spec := range specs {
		if got := LastSetBit(spec.x); got != spec.want {
			t.Errorf("[spec %d] LastSetBit(%b): expected %d, got %d", i, spec.x, spec.want, got)
		}
	}
}

func TestFirstLastSetBitOrdering(t *testing.T) {
	for _, x := range []uint32{1, 3, 0xFFFF, 0x80000001} {
		if FirstSetBit(x) > LastSetBit(x) {
			t.Errorf("x=%#x: first %d > last %d", x, FirstSetBit(x), LastSetBit(x))
		}
	}
}

func TestOnesCount(t *testing.T) {
	if got := OnesCount(uint64(0b1011)); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}
