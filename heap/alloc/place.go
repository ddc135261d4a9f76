package alloc

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/internal/format"
)

// Malloc allocates a block with at least n usable bytes and returns its
// payload offset, aligned to 8. n <= 0 fails with ErrZeroSize and leaves
// the heap untouched. When the heap cannot grow, Malloc fails with
// ErrNoSpace (which also matches the store's own error) and the heap is
// left exactly as it was.
func (a *Allocator) Malloc(n int) (Ptr, error) {
	a.stats.AllocCalls++
	if n <= 0 {
		return Nil, errors.Wrapf(ErrZeroSize, "malloc(%d)", n)
	}
	asize, ok := format.AdjustedSize(n)
	if !ok {
		return Nil, errors.Wrapf(ErrNoSpace, "malloc(%d) exceeds the maximum block size", n)
	}

	grew := false
	for {
		if bp, found := a.findFit(asize); found {
			a.place(bp, asize)
			if grew {
				a.stats.AllocSlowPath++
			} else {
				a.stats.AllocFastPath++
			}
			a.stats.BytesAllocated += int64(a.blockSize(bp))
			a.debugCheck("malloc")
			return Ptr(bp), nil
		}

		if _, err := a.extend(max(asize, a.chunk)); err != nil {
			a.log.Warn("allocation failed", "request", n, "size", asize, "heap", a.HeapSize())
			return Nil, errors.Mark(errors.Wrapf(err, "alloc: malloc(%d)", n), ErrNoSpace)
		}
		grew = true
	}
}

// findFit returns the first free block of at least asize bytes.
func (a *Allocator) findFit(asize int) (int, bool) {
	for bp := a.head(); bp != format.NilOffset; bp = a.succ(bp) {
		if a.blockSize(bp) >= asize {
			return bp, true
		}
	}
	return 0, false
}

// place allocates asize bytes at the front of the free block bp. A
// remainder of at least MinBlock becomes a free block in bp's list slot;
// anything smaller stays with the allocation.
func (a *Allocator) place(bp, asize int) {
	size := a.blockSize(bp)
	rem := size - asize

	if rem >= format.MinBlock {
		a.setTags(bp, asize, true)
		back := format.NextBlock(bp, asize)
		a.setTags(back, rem, false)
		a.replace(bp, back)
		a.stats.SplitCount++
		return
	}

	a.remove(bp)
	a.setTags(bp, size, true)
}
