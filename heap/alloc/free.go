package alloc

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Free releases the block at p and merges it with free neighbors.
// Free(Nil) is a no-op.
//
// Only the framing of p is checked: it must be an aligned payload offset
// past the prologue whose header describes a block inside the arena.
// Freeing a block twice, or an offset that Malloc never returned, is not
// detected and leaves the heap corrupt.
func (a *Allocator) Free(p Ptr) error {
	if p == Nil {
		return nil
	}
	bp, size, err := a.block(p)
	if err != nil {
		return err
	}
	a.stats.FreeCalls++
	a.stats.BytesFreed += int64(size)

	a.setTags(bp, size, false)
	a.coalesce(bp)
	a.debugCheck("free")
	return nil
}

// block validates p and returns its payload offset and block size.
func (a *Allocator) block(p Ptr) (int, int, error) {
	m := a.mem()
	bp := int(p)
	if bp < format.FirstPayload || !format.IsAligned(bp) || !buf.Has(m, format.HeaderOff(bp), format.WordSize) {
		return 0, 0, errors.Wrapf(ErrBadPtr, "offset %d outside heap of %d bytes", bp, len(m))
	}
	tag := format.ReadTag(m, format.HeaderOff(bp))
	size := tag.Size()
	if !tag.Valid() || size < format.MinBlock || format.NextBlock(bp, size) > len(m) {
		return 0, 0, errors.Wrapf(ErrBadPtr, "offset %d does not frame a block (header %s)", bp, tag)
	}
	return bp, size, nil
}

// UsableSize returns the payload capacity of the allocated block at p, or 0
// if p does not frame an allocated block.
func (a *Allocator) UsableSize(p Ptr) int {
	bp, size, err := a.block(p)
	if err != nil || !a.isAllocated(bp) {
		return 0
	}
	return format.PayloadSize(size)
}

// Payload returns the usable bytes of the allocated block at p, or nil if p
// does not frame an allocated block. The slice aliases the arena and is
// only valid until the next Malloc, Realloc or Calloc.
func (a *Allocator) Payload(p Ptr) []byte {
	bp, size, err := a.block(p)
	if err != nil || !a.isAllocated(bp) {
		return nil
	}
	end := bp + format.PayloadSize(size)
	return a.mem()[bp:end:end]
}
