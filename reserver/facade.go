package reserver

import (
	"strconv"
	"sync"
	"unsafe"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/qentengo/qentengo/cpuset"
	"github.com/qentengo/qentengo/mem"
	"github.com/qentengo/qentengo/qerr"
)

// DefaultChunkAlign is the native chunk size new blocks are laid out with
// when a Reserver is built with NewDefault, matching the teacher's
// page-table frame granularity generalized to spec.md §3's "A-byte chunk".
const DefaultChunkAlign = 16

// DefaultBlockSize is the capacity requested for each new block of a
// pool, unless the request that triggers it is larger.
const DefaultBlockSize = mem.Size(64 * mem.KB)

// Reserver is the process-wide façade described in spec.md §4.5: one
// ReserverCore per logical CPU, indexed by the calling thread's current
// core so the fast path never needs a lock.
type Reserver struct {
	cores      []*ReserverCore
	chunkAlign uintptr
	helper     *cpuset.CPUHelper
	metrics    *Metrics

	mu sync.Mutex // not acquired by any method: Release's cross-core fallback runs without a lock
}

// New builds a Reserver sized to helper's core count, one ReserverCore
// per logical CPU, using chunkAlign as every core's native chunk size and
// blockSize as every core's default block capacity.
func New(helper *cpuset.CPUHelper, chunkAlign uintptr, blockSize mem.Size, reg prometheus.Registerer) *Reserver {
	n := helper.CoreCount()
	r := &Reserver{
		cores:      make([]*ReserverCore, n),
		chunkAlign: chunkAlign,
		helper:     helper,
	}
	if reg != nil {
		r.metrics = NewMetrics(reg)
	}
	for i := range r.cores {
		c := NewCore(chunkAlign, blockSize)
		c.metrics = r.metrics
		c.coreLabel = strconv.Itoa(i)
		r.cores[i] = c
	}
	return r
}

// NewDefault builds a Reserver against cpuset.DefaultHelper with
// DefaultChunkAlign/DefaultBlockSize and no metrics.
func NewDefault() *Reserver {
	return New(&cpuset.DefaultHelper, DefaultChunkAlign, DefaultBlockSize, nil)
}

var (
	defaultOnce     sync.Once
	defaultReserver *Reserver
)

// Default returns the lazily-initialized process-wide Reserver instance.
func Default() *Reserver {
	defaultOnce.Do(func() {
		defaultReserver = NewDefault()
	})
	return defaultReserver
}

func (r *Reserver) coreFor() *ReserverCore {
	id := r.helper.CurrentCore()
	return r.cores[id]
}

// RoundUpBytes rounds count instances of T up to a whole number of chunks
// and reports the resulting size in bytes, per spec.md §4.5's
// round_up_bytes<T>(count).
func RoundUpBytes[T any](r *Reserver, count int) mem.Size {
	var zero T
	raw := mem.Size(uintptr(count) * unsafe.Sizeof(zero))
	return raw.AlignUp(mem.Size(r.chunkAlign))
}

// Reserve reserves storage for count values of type T, aligned to at
// least align bytes, and returns a typed pointer to the first one. align
// must be a power of two; pass 0 to use T's natural alignment.
func Reserve[T any](r *Reserver, count int, align uintptr) (*T, error) {
	if count <= 0 {
		return nil, qerr.Wrap("reserver.Reserve", qerr.ErrZeroValue)
	}
	var zero T
	if align == 0 {
		align = unsafe.Alignof(zero)
	}
	if align&(align-1) != 0 {
		return nil, qerr.Wrap("reserver.Reserve", qerr.ErrInvalidAlignment)
	}
	if align < r.chunkAlign {
		align = r.chunkAlign
	}

	size := RoundUpBytes[T](r, count)
	ptr, err := r.coreFor().Reserve(size, align)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(ptr)), nil
}

// Release returns the storage backing ptr (count values of T) to the
// pool. Per spec.md §4.5/§7, release first tries the calling thread's own
// core, then falls back to scanning every other core so a pointer
// reserved on one core and released on another is still handled; if no
// core owns ptr the release is silently dropped (a caller error this API
// has no way to surface without risking a double free elsewhere).
func Release[T any](r *Reserver, ptr *T, count int) {
	if ptr == nil || count <= 0 {
		return
	}
	size := RoundUpBytes[T](r, count)
	addr := uintptr(unsafe.Pointer(ptr))

	home := r.coreFor()
	if home.Release(addr, size) {
		return
	}

	for _, c := range r.cores {
		if c == home {
			continue
		}
		if c.Release(addr, size) {
			r.metrics.incCrossCoreFree()
			return
		}
	}
}

// TryExpand attempts to grow the allocation at ptr from oldCount to
// newCount instances of T in place, without copying. It returns false if
// the allocation cannot be grown in place (the caller must then Reserve a
// new, larger region and copy manually).
func TryExpand[T any](r *Reserver, ptr *T, oldCount, newCount int) bool {
	if ptr == nil || newCount <= oldCount {
		return true
	}
	oldSize := RoundUpBytes[T](r, oldCount)
	newSize := RoundUpBytes[T](r, newCount)
	addr := uintptr(unsafe.Pointer(ptr))

	home := r.coreFor()
	if home.TryExpand(addr, oldSize, newSize) {
		return true
	}
	for _, c := range r.cores {
		if c == home {
			continue
		}
		if c.TryExpand(addr, oldSize, newSize) {
			return true
		}
	}
	return false
}

// Shrink truncates the allocation at ptr from oldCount to newCount
// instances of T in place, freeing the trailing storage.
func Shrink[T any](r *Reserver, ptr *T, oldCount, newCount int) {
	if ptr == nil || newCount >= oldCount {
		return
	}
	oldSize := RoundUpBytes[T](r, oldCount)
	newSize := RoundUpBytes[T](r, newCount)
	addr := uintptr(unsafe.Pointer(ptr))

	home := r.coreFor()
	if home.Owns(addr) {
		home.Shrink(addr, oldSize, newSize)
		return
	}
	for _, c := range r.cores {
		if c == home {
			continue
		}
		if c.Owns(addr) {
			c.Shrink(addr, oldSize, newSize)
			return
		}
	}
}

// Reset releases every block owned by every core back to the OS. Intended
// for tests and graceful shutdown; concurrent Reserve/Release calls during
// a Reset race.
func (r *Reserver) Reset() error {
	var firstErr error
	for _, c := range r.cores {
		if err := c.Reset(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CoreCount returns the number of per-CPU pools this Reserver manages.
func (r *Reserver) CoreCount() int { return len(r.cores) }
