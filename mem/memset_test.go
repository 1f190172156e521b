package mem

import (
	"unsafe"

	"testing"
)

func TestMemset(t *testing.T) {
	sizes := []Size{0, 1, 2, 3, 7, 8, 15, 16, 17, 127, 128, 4096}

	for _, size := range sizes {
		buf := make([]byte, size)
		if size > 0 {
			Memset(uintptr(unsafe.Pointer(&buf[0])), 0xAB, size)
		}
		for i, b := range buf {
			if b != 0xAB {
				t.Fatalf("size %d: byte %d: expected 0xAB, got 0x%02x", size, i, b)
			}
		}
	}
}
