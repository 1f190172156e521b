package mem

import "unsafe"

// Memset sets size bytes starting at addr to value. The implementation
// mirrors bytes.Repeat: instead of a byte-at-a-time loop it performs
// log2(size) copy calls, which pays off for regions at least a few words
// long.
func Memset(addr uintptr, value byte, size Size) {
	if size == 0 {
		return
	}

	target := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))

	target[0] = value
	for i := Size(1); i < size; i *= 2 {
		copy(target[i:], target[:i])
	}
}
