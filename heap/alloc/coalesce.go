package alloc

// coalesce merges the free block bp with free physical neighbors, inserts
// the result into the free list and returns its payload offset.
func (a *Allocator) coalesce(bp int) int {
	size := a.blockSize(bp)
	prev := a.prevTag(bp)
	next := a.nextBlock(bp)
	nextTag := a.hdr(next)

	switch {
	case prev.Allocated() && nextTag.Allocated():
		// nothing to merge

	case prev.Allocated() && !nextTag.Allocated():
		a.remove(next)
		size += nextTag.Size()
		a.stats.CoalesceForward++

	case !prev.Allocated() && nextTag.Allocated():
		bp -= prev.Size()
		a.remove(bp)
		size += prev.Size()
		a.stats.CoalesceBackward++

	default:
		a.remove(next)
		bp -= prev.Size()
		a.remove(bp)
		size += prev.Size() + nextTag.Size()
		a.stats.CoalesceForward++
		a.stats.CoalesceBackward++
	}

	a.setTags(bp, size, false)
	a.insert(bp)
	return bp
}
