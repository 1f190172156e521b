// Package reserver implements ReserverCore and the Reserver façade
// (spec.md §4.4, §4.5): a per-logical-CPU pool of MemoryBlocks that serves
// allocations by first-fit scanning, rotating blocks between an active and
// an exhausted list, plus the process-wide dispatcher that routes a
// request to the calling thread's pool and falls back to sibling pools on
// cross-core release.
//
// Grounded on the teacher's kernel/mem/pmm/allocator/bitmap_allocator.go
// (the active-pool/free-bitmap rotation) and kernel/mem/vmm/map.go (the
// pattern of routing a request through a swappable allocator function,
// generalized here into the façade's per-core dispatch).
package reserver

import (
	"github.com/qentengo/qentengo/mem"
	"github.com/qentengo/qentengo/memblock"
	"github.com/qentengo/qentengo/qerr"
)

// ReserverCore is a per-logical-CPU pool of MemoryBlocks. It is owned by
// at most one thread at a time and performs no internal locking
// (spec.md §5). The only access to a non-current instance is the
// façade's cross-core Release fallback, which takes no lock either and
// is safe only while the owning core is not using this pool.
type ReserverCore struct {
	blocks    []*memblock.MemoryBlock
	exhausted []*memblock.MemoryBlock

	chunkAlign       uintptr
	defaultBlockSize mem.Size

	metrics   *Metrics
	coreLabel string
}

// NewCore constructs an empty pool. chunkAlign is the native chunk size
// new blocks are laid out with; defaultBlockSize is the capacity requested
// for blocks created to serve a request no active block can satisfy.
func NewCore(chunkAlign uintptr, defaultBlockSize mem.Size) *ReserverCore {
	return &ReserverCore{
		chunkAlign:       chunkAlign,
		defaultBlockSize: defaultBlockSize,
	}
}

// Reserve implements spec.md §4.4's reserve<align>(size) algorithm. size
// must already be a whole number of chunks (callers use RoundUpBytes).
func (c *ReserverCore) Reserve(size mem.Size, align uintptr) (uintptr, error) {
	chunks := int(uint64(size) / uint64(c.chunkAlign))

	for i, blk := range c.blocks {
		if blk.Available() < size {
			continue
		}
		if bit, ok := blk.FindFirstFit(chunks, align); ok {
			ptr := blk.ReserveRegion(bit, chunks)
			if blk.IsFull() {
				c.detach(i)
			}
			c.observe()
			return ptr, nil
		}
	}

	return c.reserveFromNewBlock(size, chunks, align)
}

// reserveFromNewBlock handles spec.md §4.4 step 2: no active block fit the
// request, so a new block is created with capacity max(size,
// defaultBlockSize).
func (c *ReserverCore) reserveFromNewBlock(size mem.Size, chunks int, align uintptr) (uintptr, error) {
	blockSize := c.defaultBlockSize
	if size > blockSize {
		blockSize = size
	}

	blk, err := memblock.New(blockSize, c.chunkAlign)
	if err != nil {
		return 0, qerr.Wrap("reserver.Reserve", err)
	}

	if size >= blk.UsableSize() {
		// The request consumes the entire block. spec.md §4.4 has the
		// pool hand back block.base directly in this case; qentengo
		// instead serves the allocation through the block's normal
		// data-area bookkeeping (still landing the block straight in
		// exhausted_blocks, never touching the active list) because
		// handing out a pointer that overlaps the bitfield table
		// would be unsafe for a hosted allocator whose callers are
		// arbitrary Go code rather than a single trusted kernel image
		// — see DESIGN.md.
		bit, ok := blk.FindFirstFit(blk.ChunkCount(), align)
		if !ok {
			_ = blk.Destroy()
			return 0, qerr.Wrap("reserver.Reserve", qerr.ErrOutOfMemory)
		}
		ptr := blk.ReserveRegion(bit, blk.ChunkCount())
		c.exhausted = append(c.exhausted, blk)
		c.observe()
		return ptr, nil
	}

	bit, ok := blk.FindFirstFit(chunks, align)
	if !ok {
		_ = blk.Destroy()
		return 0, qerr.Wrap("reserver.Reserve", qerr.ErrOutOfMemory)
	}
	ptr := blk.ReserveRegion(bit, chunks)
	c.insertActive(blk)
	if blk.IsFull() {
		c.detach(len(c.blocks) - 1)
	}
	c.observe()
	return ptr, nil
}

// Release implements spec.md §4.4's release(ptr, size) algorithm. It
// returns true iff ptr lies inside a block this pool owns.
func (c *ReserverCore) Release(ptr uintptr, size mem.Size) bool {
	chunks := int(uint64(size) / uint64(c.chunkAlign))

	for i, blk := range c.blocks {
		if !blk.Owns(ptr) {
			continue
		}
		blk.ReleaseRegion(ptr, chunks)
		if blk.IsEmpty() && i != 0 && len(c.blocks) > 1 {
			c.destroyActive(i)
		}
		c.observe()
		return true
	}

	for i, blk := range c.exhausted {
		if !blk.Owns(ptr) {
			continue
		}

		wasWholeBlock := size >= blk.UsableSize()
		blk.ReleaseRegion(ptr, chunks)

		if !wasWholeBlock {
			c.reattach(i)
			c.observe()
			return true
		}

		if blk.Capacity() != c.defaultBlockSize || len(c.blocks) > 0 {
			c.removeExhausted(i)
			_ = blk.Destroy()
		} else {
			blk.ClearTable()
			c.reattach(i)
		}
		c.observe()
		return true
	}

	return false
}

// IsEmpty reports whether every active block is empty and no exhausted
// blocks exist.
func (c *ReserverCore) IsEmpty() bool {
	if len(c.exhausted) != 0 {
		return false
	}
	for _, blk := range c.blocks {
		if !blk.IsEmpty() {
			return false
		}
	}
	return true
}

// Reset releases every block this pool owns back to the OS.
func (c *ReserverCore) Reset() error {
	var firstErr error
	for _, blk := range c.blocks {
		if err := blk.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, blk := range c.exhausted {
		if err := blk.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.blocks = nil
	c.exhausted = nil
	c.observe()
	return firstErr
}

// Owns reports whether any block in this pool (active or exhausted)
// backs ptr. Used by the façade to route Shrink to the right core without
// mutating state on every sibling.
func (c *ReserverCore) Owns(ptr uintptr) bool {
	blk, _, _ := c.findOwning(ptr)
	return blk != nil
}

// findOwning locates the block backing ptr, searching active blocks then
// exhausted ones. Used by TryExpand/Shrink.
func (c *ReserverCore) findOwning(ptr uintptr) (blk *memblock.MemoryBlock, activeIndex int, inActive bool) {
	for i, b := range c.blocks {
		if b.Owns(ptr) {
			return b, i, true
		}
	}
	for _, b := range c.exhausted {
		if b.Owns(ptr) {
			return b, -1, false
		}
	}
	return nil, -1, false
}

// insertActive appends blk to the active list and applies the leader-swap
// tie-break (spec.md §4.4.2).
func (c *ReserverCore) insertActive(blk *memblock.MemoryBlock) {
	c.blocks = append(c.blocks, blk)
	c.maybeSwapLeader(len(c.blocks) - 1)
}

// maybeSwapLeader swaps the block at index i into the leader slot (index
// 0) iff it has a strictly larger usable size than the current leader.
func (c *ReserverCore) maybeSwapLeader(i int) {
	if i <= 0 || i >= len(c.blocks) {
		return
	}
	if c.blocks[i].UsableSize() > c.blocks[0].UsableSize() {
		c.blocks[0], c.blocks[i] = c.blocks[i], c.blocks[0]
	}
}

// detach moves c.blocks[i] to the tail of exhausted, removing it from
// blocks via swap-with-last (spec.md §4.4.2).
func (c *ReserverCore) detach(i int) {
	blk := c.blocks[i]
	last := len(c.blocks) - 1
	c.blocks[i] = c.blocks[last]
	c.blocks = c.blocks[:last]
	c.exhausted = append(c.exhausted, blk)
}

// destroyActive removes and destroys c.blocks[i] (an empty, non-leader
// block) via swap-with-last.
func (c *ReserverCore) destroyActive(i int) {
	blk := c.blocks[i]
	last := len(c.blocks) - 1
	c.blocks[i] = c.blocks[last]
	c.blocks = c.blocks[:last]
	_ = blk.Destroy()
}

// reattach moves c.exhausted[i] back into blocks via swap-with-last,
// applying the leader-swap tie-break.
func (c *ReserverCore) reattach(i int) {
	blk := c.exhausted[i]
	last := len(c.exhausted) - 1
	c.exhausted[i] = c.exhausted[last]
	c.exhausted = c.exhausted[:last]
	c.blocks = append(c.blocks, blk)
	c.maybeSwapLeader(len(c.blocks) - 1)
}

// removeExhausted removes c.exhausted[i] via swap-with-last without
// destroying it (caller destroys separately).
func (c *ReserverCore) removeExhausted(i int) {
	last := len(c.exhausted) - 1
	c.exhausted[i] = c.exhausted[last]
	c.exhausted = c.exhausted[:last]
}

// TryExpand attempts to grow the allocation at ptr from oldSize to
// newSize in place, without copying, by extending its bit run within the
// same block (spec.md §4.5, detail resolved in SPEC_FULL.md §5). It
// returns false if the trailing chunks are not free or ptr is unowned.
func (c *ReserverCore) TryExpand(ptr uintptr, oldSize, newSize mem.Size) bool {
	if newSize <= oldSize {
		return true
	}

	blk, activeIndex, inActive := c.findOwning(ptr)
	if blk == nil {
		return false
	}

	oldChunks := int(uint64(oldSize) / uint64(c.chunkAlign))
	growChunks := int(uint64(newSize-oldSize) / uint64(c.chunkAlign))
	bitIndex := blk.BitIndexForPointer(ptr)
	growStart := bitIndex + oldChunks

	if !blk.IsRangeFree(growStart, growChunks) {
		return false
	}

	blk.ReserveRegion(growStart, growChunks)
	if blk.IsFull() && inActive {
		c.detach(activeIndex)
	}
	c.observe()
	return true
}

// Shrink truncates the allocation at ptr from oldSize to newSize in
// place, freeing the trailing chunks.
func (c *ReserverCore) Shrink(ptr uintptr, oldSize, newSize mem.Size) {
	if newSize >= oldSize {
		return
	}

	blk, _, _ := c.findOwning(ptr)
	if blk == nil {
		return
	}

	newChunks := int(uint64(newSize) / uint64(c.chunkAlign))
	bitIndex := blk.BitIndexForPointer(ptr)
	freeStart := bitIndex + newChunks
	freeChunks := int(uint64(oldSize-newSize) / uint64(c.chunkAlign))

	wasFull := blk.IsFull()
	blk.ReleaseRegion(blk.Data()+uintptr(freeStart)*blk.ChunkAlign(), freeChunks)

	if wasFull {
		for i, b := range c.exhausted {
			if b == blk {
				c.reattach(i)
				break
			}
		}
	}
	c.observe()
}
