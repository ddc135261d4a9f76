package alloc

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Realloc resizes the allocation at p to n bytes.
//
//   - p == Nil behaves as Malloc(n).
//   - n == 0 frees p and returns Nil.
//   - Otherwise a new block is allocated, min(n, UsableSize(p)) bytes are
//     copied over and p is freed. The block always moves, even when a free
//     neighbor could absorb the growth.
//
// If the new allocation fails, p is left allocated and untouched.
func (a *Allocator) Realloc(p Ptr, n int) (Ptr, error) {
	a.stats.ReallocCalls++
	if p == Nil {
		return a.Malloc(n)
	}
	if n == 0 {
		return Nil, a.Free(p)
	}

	bp, size, err := a.block(p)
	if err != nil {
		return Nil, err
	}
	np, err := a.Malloc(n)
	if err != nil {
		return Nil, err
	}

	// Re-read the arena: Malloc may have grown and moved it.
	m := a.mem()
	nb := int(np)
	k := min(n, format.PayloadSize(size))
	copy(m[nb:nb+k], m[bp:bp+k])
	a.dt.Add(nb, k)

	if err := a.Free(p); err != nil {
		return Nil, err
	}
	return np, nil
}

// Calloc allocates count*size zeroed bytes. A product that overflows fails
// with ErrNoSpace; a zero product fails with ErrZeroSize.
func (a *Allocator) Calloc(count, size int) (Ptr, error) {
	if count < 0 || size < 0 {
		return Nil, errors.Wrapf(ErrZeroSize, "calloc(%d, %d)", count, size)
	}
	total, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return Nil, errors.Wrapf(ErrNoSpace, "calloc(%d, %d) overflows", count, size)
	}
	p, err := a.Malloc(total)
	if err != nil {
		return Nil, err
	}
	pl := a.Payload(p)
	clear(pl)
	a.dt.Add(int(p), len(pl))
	return p, nil
}
