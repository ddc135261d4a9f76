package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// newTestAllocator creates an allocator over a fresh Mem store.
func newTestAllocator(t testing.TB, limit int) (*Allocator, *heap.Mem) {
	t.Helper()
	store := heap.NewMem(limit)
	a, err := New(store, nil)
	require.NoError(t, err)
	return a, store
}

// mustMalloc allocates n bytes or fails the test.
func mustMalloc(t testing.TB, a *Allocator, n int) Ptr {
	t.Helper()
	p, err := a.Malloc(n)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	return p
}

// listOrder returns the free list from the head, checking back links on the way.
func listOrder(t testing.TB, a *Allocator) []int {
	t.Helper()
	var out []int
	prev := format.NilOffset
	for bp := a.head(); bp != format.NilOffset; bp = a.succ(bp) {
		require.Equal(t, prev, a.pred(bp), "pred of %d", bp)
		out = append(out, bp)
		prev = bp
		require.LessOrEqual(t, len(out), a.HeapSize()/format.MinBlock, "free list cycle")
	}
	return out
}

// snapshot copies the arena.
func snapshot(a *Allocator) []byte {
	return append([]byte(nil), a.mem()...)
}

// fill writes a pattern derived from seed into the payload of p.
func fill(a *Allocator, p Ptr, n int, seed byte) {
	pl := a.Payload(p)
	for i := range n {
		pl[i] = seed + byte(i)
	}
}

func requirePattern(t testing.TB, a *Allocator, p Ptr, n int, seed byte) {
	t.Helper()
	pl := a.Payload(p)
	require.GreaterOrEqual(t, len(pl), n)
	for i := range n {
		if pl[i] != seed+byte(i) {
			t.Fatalf("payload of %d corrupted at byte %d: got 0x%02X, want 0x%02X", p, i, pl[i], seed+byte(i))
		}
	}
}

// recordingTracker records every range reported by the allocator.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}

func (r *recordingTracker) covers(off, length int) bool {
	for _, rg := range r.ranges {
		if off >= rg[0] && off+length <= rg[0]+rg[1] {
			return true
		}
	}
	return false
}
