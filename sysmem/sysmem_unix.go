//go:build linux || darwin || freebsd || netbsd || openbsd

package sysmem

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/qentengo/qentengo/qerr"
)

func queryPageSize() uintptr {
	return uintptr(unix.Getpagesize())
}

func reserve(size uintptr, stack bool) (uintptr, error) {
	if size == 0 {
		return 0, nil
	}

	flags := unix.MAP_PRIVATE | unix.MAP_ANON
	if stack {
		// MAP_STACK is a hint on some kernels (notably OpenBSD, which
		// enforces it) that the region will be used as a stack; it is
		// a no-op elsewhere, so it is safe to set unconditionally.
		flags |= mapStackFlag
	}

	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, flags)
	if err != nil {
		return 0, qerr.Wrap("sysmem.Reserve", qerr.ErrOutOfMemory)
	}

	return uintptr(unsafe.Pointer(&b[0])), nil
}

func release(ptr uintptr, size uintptr) error {
	if ptr == 0 || size == 0 {
		return nil
	}

	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), int(size))
	if err := unix.Munmap(b); err != nil {
		return qerr.Wrap("sysmem.Release", err)
	}
	return nil
}

func protectNone(ptr uintptr, size uintptr) error {
	if ptr == 0 || size == 0 {
		return nil
	}

	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), int(size))
	if err := unix.Mprotect(b, unix.PROT_NONE); err != nil {
		return qerr.Wrap("sysmem.ProtectNone", err)
	}
	return nil
}
