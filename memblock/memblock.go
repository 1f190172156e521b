// Package memblock implements MemoryBlock (spec.md §3, §4.3): a single
// contiguous page-aligned region laid out as
// [bitfield table | padding | usable data area], with first-fit scanning
// of the external bitfield table and no per-allocation header.
//
// Grounded on the teacher's kernel/mem/pmm/allocator/bitmap_allocator.go,
// which tracks free/reserved physical frames the same way (one bit per
// unit, external table, reflect.SliceHeader overlay onto a raw pointer).
// qentengo generalizes "one bit per physical frame" to "one bit per
// A-byte chunk of an arbitrary region" and replaces the SliceHeader
// overlay (deprecated since the teacher's Go 1.15 target) with
// unsafe.Slice, and bit numbering is chosen LSB-first within each word
// (bit i of table[w] represents chunk w*64+i) — spec.md leaves the table's
// internal bit order unspecified; this choice is documented as an Open
// Question resolution in DESIGN.md.
package memblock

import (
	"math/bits"
	"unsafe"

	"github.com/qentengo/qentengo/mem"
	"github.com/qentengo/qentengo/qerr"
	"github.com/qentengo/qentengo/sysmem"
)

const wordBits = 64

// MemoryBlock is a single contiguous OS-reserved region subdivided into
// fixed-size chunks, tracked by an external bitfield table at the front of
// the region. A MemoryBlock exclusively owns its reserved OS region;
// copying a MemoryBlock by value is a programming error (use a pointer),
// move semantics are expressed by handing over the pointer and not
// reusing the source.
type MemoryBlock struct {
	base  uintptr // start of the reserved region (and of the bitfield table)
	data  uintptr // first usable chunk; data - base covers table + padding
	table []uint64

	capacity   mem.Size // total reserved bytes, a multiple of the page size
	usableSize mem.Size // capacity minus table+padding bytes
	available  mem.Size // free bytes in the usable area

	chunkAlign     uintptr
	tableSize      int // number of bitfield words
	tableMaskShift uint
	nextIndex      int
}

// New reserves a block with at least minCapacity bytes of total capacity
// (spec.md §4.3 step 1: rounded up to a page, or exactly one page if the
// request does not exceed a page) and lays out its bitfield table for
// chunks of size chunkAlign (a power of two).
func New(minCapacity mem.Size, chunkAlign uintptr) (*MemoryBlock, error) {
	return newBlock(minCapacity, chunkAlign, false)
}

// NewStack is identical to New but passes the stack hint through to
// sysmem.Reserve, per spec.md §4.1.
func NewStack(minCapacity mem.Size, chunkAlign uintptr) (*MemoryBlock, error) {
	return newBlock(minCapacity, chunkAlign, true)
}

func newBlock(minCapacity mem.Size, chunkAlign uintptr, stack bool) (*MemoryBlock, error) {
	pageSize := mem.Size(sysmem.PageSize())

	capacity := minCapacity.AlignUp(pageSize)
	if minCapacity <= pageSize {
		capacity = pageSize
	}

	base, err := sysmem.Reserve(uintptr(capacity), stack)
	if err != nil {
		return nil, qerr.Wrap("memblock.New", err)
	}

	b := &MemoryBlock{
		base:       base,
		capacity:   capacity,
		chunkAlign: chunkAlign,
	}
	b.layout()
	b.clearTableLocked()

	return b, nil
}

// layout computes data, usableSize, tableSize and tableMaskShift from
// base/capacity/chunkAlign (spec.md §4.3 steps 2-3). The table size and the
// data offset are mutually dependent (a bigger table needs more padding,
// which shrinks the usable area, which could in principle shrink the
// table) so this resolves the dependency with a short fixed-point
// iteration; it converges in at most two steps because the table is tiny
// relative to the capacities MemoryBlock is built for (one word covers 64
// chunks).
func (b *MemoryBlock) layout() {
	tableBytes := mem.Size(0)

	for i := 0; i < 4; i++ {
		dataOffset := mem.Size(mem.AlignUp(uintptr(tableBytes), b.chunkAlign))
		usable := b.capacity - dataOffset
		chunks := uint64(usable) / uint64(b.chunkAlign)
		words := (chunks + wordBits - 1) / wordBits
		newTableBytes := mem.Size(words) * 8
		if newTableBytes == tableBytes {
			break
		}
		tableBytes = newTableBytes
	}

	dataOffset := mem.AlignUp(uintptr(tableBytes), b.chunkAlign)
	b.data = b.base + dataOffset
	b.usableSize = b.capacity - mem.Size(dataOffset)
	b.available = b.usableSize

	chunks := uint64(b.usableSize) / uint64(b.chunkAlign)
	b.tableSize = int((chunks + wordBits - 1) / wordBits)
	if b.tableSize == 0 {
		b.tableSize = 1
	}
	b.tableMaskShift = uint(uint64(b.tableSize)*wordBits - chunks)

	b.table = unsafe.Slice((*uint64)(unsafe.Pointer(b.base)), b.tableSize)
}

// ClearTable zeroes every bitfield bit except the pre-masked tail of the
// last word, which tableMaskShift keeps permanently reserved so those bits
// (beyond the last real chunk) are never reported as free.
func (b *MemoryBlock) ClearTable() {
	b.clearTableLocked()
}

func (b *MemoryBlock) clearTableLocked() {
	for i := range b.table {
		b.table[i] = 0
	}
	if b.tableMaskShift > 0 && b.tableSize > 0 {
		last := b.tableSize - 1
		b.table[last] = ^uint64(0) << (wordBits - b.tableMaskShift)
	}
	b.nextIndex = 0
}

// Base returns the start of the reserved region (and of the bitfield
// table).
func (b *MemoryBlock) Base() uintptr { return b.base }

// Data returns the address of the first usable chunk.
func (b *MemoryBlock) Data() uintptr { return b.data }

// Capacity returns the total number of bytes reserved from the OS.
func (b *MemoryBlock) Capacity() mem.Size { return b.capacity }

// UsableSize returns the number of bytes available to chunk allocations.
func (b *MemoryBlock) UsableSize() mem.Size { return b.usableSize }

// Available returns the number of free bytes in the usable area.
func (b *MemoryBlock) Available() mem.Size { return b.available }

// ChunkAlign returns the block's native chunk size/alignment.
func (b *MemoryBlock) ChunkAlign() uintptr { return b.chunkAlign }

// ChunkCount returns the total number of chunks in the usable area.
func (b *MemoryBlock) ChunkCount() int {
	return int(uint64(b.usableSize) / uint64(b.chunkAlign))
}

// IsEmpty reports whether every chunk is free.
func (b *MemoryBlock) IsEmpty() bool { return b.available == b.usableSize }

// IsFull reports whether no chunk is free.
func (b *MemoryBlock) IsFull() bool { return b.available == 0 }

// Destroy returns the block's reserved region to the OS. The MemoryBlock
// must not be used afterwards.
func (b *MemoryBlock) Destroy() error {
	return qerr.Wrap("memblock.Destroy", sysmem.Release(b.base, uintptr(b.capacity)))
}

// Owns reports whether ptr falls inside this block's usable data area —
// the named helper behind the "ptr lies within a block's usable area"
// checks in spec.md §4.4 (see SPEC_FULL.md §5, grounded on the original
// MemoryBlock's Contains/IsEqual helpers).
func (b *MemoryBlock) Owns(ptr uintptr) bool {
	return ptr >= b.data && ptr < b.data+uintptr(b.usableSize)
}

// bitIndexForPointer converts a pointer inside the usable area into a
// 0-based chunk/bit index.
func (b *MemoryBlock) bitIndexForPointer(ptr uintptr) int {
	return int((ptr - b.data) / b.chunkAlign)
}

// BitIndexForPointer exports bitIndexForPointer for reserver's TryExpand
// and Shrink helpers, which need to locate the bit run backing an existing
// allocation before growing or truncating it in place.
func (b *MemoryBlock) BitIndexForPointer(ptr uintptr) int {
	return b.bitIndexForPointer(ptr)
}

// IsRangeFree reports whether all chunks consecutive bits starting at
// bitIndex are currently free, without mutating the table. Used by
// TryExpand to check whether a bit run can be grown in place.
func (b *MemoryBlock) IsRangeFree(bitIndex, chunks int) bool {
	if bitIndex < 0 || chunks <= 0 || bitIndex+chunks > b.ChunkCount() {
		return false
	}
	for remaining, bit := chunks, bitIndex; remaining > 0; {
		word := bit / wordBits
		offset := uint(bit % wordBits)
		width := wordBits - int(offset)
		if width > remaining {
			width = remaining
		}

		var mask uint64
		if width == wordBits {
			mask = ^uint64(0)
		} else {
			mask = ((uint64(1) << uint(width)) - 1) << offset
		}

		if b.table[word]&mask != 0 {
			return false
		}

		bit += width
		remaining -= width
	}
	return true
}

// ReserveRegion marks chunks consecutive bits starting at bitIndex as
// reserved and returns the user pointer. The caller must ensure those bits
// are currently free.
func (b *MemoryBlock) ReserveRegion(bitIndex, chunks int) uintptr {
	b.setRange(bitIndex, chunks, true)
	b.available -= mem.Size(chunks) * mem.Size(b.chunkAlign)

	// Advance the hint past every entirely reserved word starting at the
	// hint (spec.md §4.3's collapsed next_index rule, applied
	// conservatively so no word with a free bit is skipped).
	for b.nextIndex < b.tableSize && b.table[b.nextIndex] == ^uint64(0) {
		b.nextIndex++
	}

	return b.data + uintptr(bitIndex)*b.chunkAlign
}

// ReleaseRegion clears the chunks consecutive bits that back ptr and
// rewinds the scan hint to at most the word the release touched.
func (b *MemoryBlock) ReleaseRegion(ptr uintptr, chunks int) {
	bitIndex := b.bitIndexForPointer(ptr)
	b.setRange(bitIndex, chunks, false)
	b.available += mem.Size(chunks) * mem.Size(b.chunkAlign)

	startWord := bitIndex / wordBits
	if startWord < b.nextIndex {
		b.nextIndex = startWord
	}
}

func (b *MemoryBlock) setRange(bitIndex, chunks int, reserved bool) {
	for remaining, bit := chunks, bitIndex; remaining > 0; {
		word := bit / wordBits
		offset := uint(bit % wordBits)
		width := wordBits - int(offset)
		if width > remaining {
			width = remaining
		}

		var mask uint64
		if width == wordBits {
			mask = ^uint64(0)
		} else {
			mask = ((uint64(1) << uint(width)) - 1) << offset
		}

		if reserved {
			b.table[word] |= mask
		} else {
			b.table[word] &^= mask
		}

		bit += width
		remaining -= width
	}
}

// FindFirstFit scans the bitfield table for the earliest run of chunks
// consecutive free bits at or after the scan hint, honoring a caller
// alignment requirement reqAlign that may be stricter than the block's
// native chunk alignment (spec.md §4.4.1). It reports the starting bit
// index and whether a fit was found; it does not mutate the table.
func (b *MemoryBlock) FindFirstFit(chunks int, reqAlign uintptr) (int, bool) {
	if chunks <= 0 || chunks > b.ChunkCount() {
		return 0, false
	}

	n := uint64(chunks)
	runStart := -1
	var runLen uint64

	for wi := b.nextIndex; wi < b.tableSize; wi++ {
		word := b.table[wi]
		if word == ^uint64(0) {
			runStart, runLen = -1, 0
			continue
		}

		bit := 0
		for bit < wordBits {
			shifted := word >> uint(bit)
			if shifted&1 == 1 {
				// Skip the contiguous run of reserved bits starting
				// here; bits.TrailingZeros64 on the complement gives
				// its length in one step, capping at the bits left in
				// the word when every remaining bit is reserved.
				skip := bits.TrailingZeros64(^shifted)
				bit += skip
				runStart, runLen = -1, 0
				continue
			}

			// bits.TrailingZeros64(0) == 64 by Go convention, which
			// overstates the free run whenever the remaining width in
			// this word (wordBits-bit) is less than 64 — clamp to it so
			// a free run ending exactly at a word boundary isn't
			// reported as reaching into the next word's bits.
			free := bits.TrailingZeros64(shifted)
			if remaining := wordBits - bit; free > remaining {
				free = remaining
			}
			if runStart == -1 {
				runStart = wi*wordBits + bit
			}
			runLen += uint64(free)
			bit += free

			if runLen >= n {
				if start, ok := b.satisfiesAlignment(runStart, runLen, n, reqAlign); ok {
					return start, true
				}
			}
		}
	}

	return 0, false
}

// satisfiesAlignment computes the extra leading chunks that must be
// skipped within [runStart, runStart+runLen) so the returned pointer
// satisfies reqAlign, per spec.md §4.4.1.
func (b *MemoryBlock) satisfiesAlignment(runStart int, runLen, n uint64, reqAlign uintptr) (int, bool) {
	if reqAlign <= b.chunkAlign {
		return runStart, true
	}

	candidateAddr := b.data + uintptr(runStart)*b.chunkAlign
	alignedAddr := mem.AlignUp(candidateAddr, reqAlign)
	skipChunks := uint64((alignedAddr - candidateAddr) / b.chunkAlign)

	if skipChunks <= runLen && runLen-skipChunks >= n {
		return runStart + int(skipChunks), true
	}
	return 0, false
}
