package alloc

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// extend grows the heap by size bytes (rounded up to 8) and returns the
// payload offset of the resulting free block, already merged with a free
// block that ended at the old epilogue. On error nothing has been written.
func (a *Allocator) extend(size int) (int, error) {
	size = format.Align8(size)
	old := a.HeapSize()
	if size > format.MaxBlockSize-old {
		return 0, errors.Wrapf(heap.ErrExhausted, "heap of %d bytes cannot grow by %d past %d", old, size, format.MaxBlockSize)
	}

	base, err := a.store.Grow(size)
	if err != nil {
		a.log.Warn("heap growth failed", "size", size, "heap", old, "error", err)
		return 0, err
	}
	if base != old {
		return 0, errors.AssertionFailedf("store grew at offset %d, expected %d", base, old)
	}

	// The new block's header overwrites the old epilogue.
	bp := base
	a.setTags(bp, size, false)
	a.setEpilogue(format.HeaderOff(format.NextBlock(bp, size)))

	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)
	a.log.Debug("heap grown", "by", size, "size", a.HeapSize())

	return a.coalesce(bp), nil
}
