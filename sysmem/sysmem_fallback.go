//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package sysmem

import (
	"sync"
	"unsafe"

	"github.com/qentengo/qentengo/qerr"
)

// Fallback implementation for hosts without a usable virtual-memory API
// (spec.md §4.1: "a build-time fallback implementation uses the host's
// generic allocator"). Go's allocator never moves or compacts live memory,
// so a pointer into a make([]byte, ...) slice is stable for as long as the
// slice header is kept reachable — which is why regions is held for the
// lifetime of the reservation, keyed by the returned address.
const fallbackPageSize = 4096

var (
	regionsMu sync.Mutex
	regions   = map[uintptr][]byte{}
)

func queryPageSize() uintptr {
	return fallbackPageSize
}

func reserve(size uintptr, _ bool) (uintptr, error) {
	if size == 0 {
		return 0, nil
	}

	// Over-allocate by one page and hand back the first page-aligned
	// address inside the buffer, so the returned region is page-aligned
	// and still has the full requested size behind it; the unaligned
	// prefix of the buffer is never handed out.
	buf := make([]byte, size+fallbackPageSize)
	raw := uintptr(unsafe.Pointer(&buf[0]))
	aligned := (raw + fallbackPageSize - 1) &^ (fallbackPageSize - 1)

	regionsMu.Lock()
	regions[aligned] = buf
	regionsMu.Unlock()

	return aligned, nil
}

func release(ptr uintptr, _ uintptr) error {
	if ptr == 0 {
		return nil
	}

	regionsMu.Lock()
	defer regionsMu.Unlock()

	if _, ok := regions[ptr]; !ok {
		return qerr.Wrap("sysmem.Release", qerr.ErrForeignPointer)
	}
	delete(regions, ptr)
	return nil
}

func protectNone(uintptr, uintptr) error {
	// No generic-allocator equivalent of mprotect; guard pages are a
	// best-effort feature per spec.md §4.1 and silently become a no-op
	// here.
	return nil
}
