package mem

import "testing"

func TestSizeAlignUp(t *testing.T) {
	specs := []struct {
		size  Size
		align Size
		want  Size
	}{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 16, 32},
		{4095, 4096, 4096},
		{4096, 4096, 4096},
		{4097, 4096, 8192},
	}

	for i, spec := range specs {
		if got := spec.size.AlignUp(spec.align); got != spec.want {
			t.Errorf("[spec %d] AlignUp(%d, %d): expected %d, got %d", i, spec.size, spec.align, spec.want, got)
		}
	}
}

func TestSizeAlignDown(t *testing.T) {
	specs := []struct {
		size  Size
		align Size
		want  Size
	}{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 16},
		{17, 16, 16},
	}

	for i, spec := range specs {
		if got := spec.size.AlignDown(spec.align); got != spec.want {
			t.Errorf("[spec %d] AlignDown(%d, %d): expected %d, got %d", i, spec.size, spec.align, spec.want, got)
		}
	}
}

func TestAlignUpUintptr(t *testing.T) {
	specs := []struct {
		addr  uintptr
		align uintptr
		want  uintptr
	}{
		{0, 8, 0},
		{1, 8, 8},
		{9, 8, 16},
	}

	for i, spec := range specs {
		if got := AlignUp(spec.addr, spec.align); got != spec.want {
			t.Errorf("[spec %d] AlignUp(%d, %d): expected %d, got %d", i, spec.addr, spec.align, spec.want, got)
		}
	}
}
