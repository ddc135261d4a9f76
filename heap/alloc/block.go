package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Offset accessors over the arena. They take and return payload offsets and
// assume the offset frames a block; public entry points validate first.

func (a *Allocator) mem() []byte { return a.store.Bytes() }

func (a *Allocator) hdr(bp int) format.Tag {
	return format.ReadTag(a.mem(), format.HeaderOff(bp))
}

func (a *Allocator) blockSize(bp int) int { return a.hdr(bp).Size() }

func (a *Allocator) isAllocated(bp int) bool { return a.hdr(bp).Allocated() }

// setTags writes identical header and footer tags for a block.
func (a *Allocator) setTags(bp, size int, allocated bool) {
	m := a.mem()
	t := format.MustPack(size, allocated)
	format.PutTag(m, format.HeaderOff(bp), t)
	format.PutTag(m, format.FooterOff(bp, size), t)
	a.dt.Add(format.HeaderOff(bp), format.WordSize)
	a.dt.Add(format.FooterOff(bp, size), format.WordSize)
}

func (a *Allocator) setEpilogue(off int) {
	format.PutTag(a.mem(), off, format.EpilogueTag)
	a.dt.Add(off, format.WordSize)
}

func (a *Allocator) nextBlock(bp int) int {
	return format.NextBlock(bp, a.blockSize(bp))
}

// prevTag reads the footer of the physically preceding block.
func (a *Allocator) prevTag(bp int) format.Tag {
	return format.ReadTag(a.mem(), format.PrevFooterOff(bp))
}

func (a *Allocator) pred(bp int) int {
	return int(format.ReadU64(a.mem(), bp+format.PredOffset))
}

func (a *Allocator) succ(bp int) int {
	return int(format.ReadU64(a.mem(), bp+format.SuccOffset))
}

func (a *Allocator) setPred(bp, p int) {
	format.PutU64(a.mem(), bp+format.PredOffset, uint64(p))
	a.dt.Add(bp+format.PredOffset, format.LinkSize)
}

func (a *Allocator) setSucc(bp, s int) {
	format.PutU64(a.mem(), bp+format.SuccOffset, uint64(s))
	a.dt.Add(bp+format.SuccOffset, format.LinkSize)
}

func (a *Allocator) head() int {
	return int(format.ReadU32(a.mem(), format.HeadSlotOffset))
}

func (a *Allocator) setHead(bp int) {
	format.PutU32(a.mem(), format.HeadSlotOffset, uint32(bp))
	a.dt.Add(format.HeadSlotOffset, format.WordSize)
}
