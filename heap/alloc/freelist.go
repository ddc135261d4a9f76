package alloc

import "github.com/joshuapare/heapkit/internal/format"

// insert pushes bp at the head of the free list.
func (a *Allocator) insert(bp int) {
	old := a.head()
	a.setPred(bp, format.NilOffset)
	a.setSucc(bp, old)
	if old != format.NilOffset {
		a.setPred(old, bp)
	}
	a.setHead(bp)
}

// remove unlinks bp. Its own links are left as they were.
func (a *Allocator) remove(bp int) {
	p, s := a.pred(bp), a.succ(bp)
	if p == format.NilOffset {
		a.setHead(s)
	} else {
		a.setSucc(p, s)
	}
	if s != format.NilOffset {
		a.setPred(s, p)
	}
}

// replace puts nb in old's list position. Used when placement splits old
// and nb is the free remainder.
func (a *Allocator) replace(old, nb int) {
	p, s := a.pred(old), a.succ(old)
	a.setPred(nb, p)
	a.setSucc(nb, s)
	if p == format.NilOffset {
		a.setHead(nb)
	} else {
		a.setSucc(p, nb)
	}
	if s != format.NilOffset {
		a.setPred(s, nb)
	}
	a.assertSplice(nb)
}
