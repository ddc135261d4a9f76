//go:build debug_heap

package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// assertSplice panics unless bp is correctly linked to its neighbors.
func (a *Allocator) assertSplice(bp int) {
	p, s := a.pred(bp), a.succ(bp)
	if p == format.NilOffset {
		if h := a.head(); h != bp {
			panic(fmt.Sprintf("alloc: splice of %d: head is %d", bp, h))
		}
	} else if got := a.succ(p); got != bp {
		panic(fmt.Sprintf("alloc: splice of %d: pred %d points to %d", bp, p, got))
	}
	if s != format.NilOffset {
		if got := a.pred(s); got != bp {
			panic(fmt.Sprintf("alloc: splice of %d: succ %d points back to %d", bp, s, got))
		}
	}
}

// debugCheck panics if any heap invariant is broken after op.
func (a *Allocator) debugCheck(op string) {
	if err := a.Check(); err != nil {
		panic(fmt.Sprintf("alloc: heap corrupt after %s: %v", op, err))
	}
}
