package trace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// CheckError reports a replay result the allocator got wrong.
type CheckError struct {
	Op  Op
	Msg string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("trace: line %d (%s id %d): %s", e.Op.Line, e.Op.Kind, e.Op.ID, e.Msg)
}

// Options controls a replay. A nil *Options selects the defaults.
type Options struct {
	// CheckHeap runs the full heap checker after every op.
	CheckHeap bool

	// Logger receives per-trace progress. Default: discard.
	Logger *slog.Logger
}

// Result summarizes a replay.
type Result struct {
	Ops         int
	Allocs      int
	Reallocs    int
	Frees       int
	PeakPayload int     // largest sum of live requested bytes
	HeapSize    int     // arena size after the last op
	Utilization float64 // PeakPayload / HeapSize
}

type liveBlock struct {
	ptr  alloc.Ptr
	size int
}

type replayer struct {
	a     *alloc.Allocator
	opts  Options
	live  *swiss.Map[int, liveBlock]
	bytes int
	res   Result
}

// Replay runs every op of tr against a. Each payload is filled with a
// pattern derived from its id; the pattern must survive until the block is
// freed, and must be carried over by realloc. Every returned pointer must be
// 8-aligned, inside the heap and disjoint from all live blocks. Replay stops
// at the first failed op or when ctx is cancelled.
func Replay(ctx context.Context, a *alloc.Allocator, tr *Trace, opts *Options) (Result, error) {
	r := &replayer{
		a:    a,
		live: newLiveMap(min(tr.NumIDs, len(tr.Ops))),
	}
	if opts != nil {
		r.opts = *opts
	}
	if r.opts.Logger == nil {
		r.opts.Logger = slog.New(slog.DiscardHandler)
	}

	for _, op := range tr.Ops {
		if err := ctx.Err(); err != nil {
			return r.result(), errors.Wrapf(err, "trace: stopped before line %d", op.Line)
		}
		if err := r.step(op); err != nil {
			return r.result(), err
		}
		if r.opts.CheckHeap {
			if err := a.Check(); err != nil {
				return r.result(), &CheckError{Op: op, Msg: "heap check: " + err.Error()}
			}
		}
		r.res.Ops++
	}

	res := r.result()
	r.opts.Logger.Info("trace replayed", "trace", tr.Name, "ops", res.Ops,
		"peak", res.PeakPayload, "heap", res.HeapSize, "util", res.Utilization)
	return res, nil
}

// newLiveMap sizes the table for ids live blocks, capped at maxPreallocOps.
func newLiveMap(ids int) *swiss.Map[int, liveBlock] {
	return swiss.NewMap[int, liveBlock](uint32(min(max(ids, 1), maxPreallocOps)))
}

func (r *replayer) result() Result {
	res := r.res
	res.HeapSize = r.a.HeapSize()
	if res.HeapSize > 0 {
		res.Utilization = float64(res.PeakPayload) / float64(res.HeapSize)
	}
	return res
}

func (r *replayer) step(op Op) error {
	switch op.Kind {
	case OpAlloc:
		r.res.Allocs++
		if old, ok := r.live.Get(op.ID); ok {
			// malloclab traces never reuse a live id; treat it as a leak.
			r.drop(op.ID, old)
		}
		p, err := r.a.Malloc(op.Size)
		if err != nil {
			return errors.Wrapf(err, "trace: line %d: malloc(%d)", op.Line, op.Size)
		}
		return r.adopt(op, p, 0, 0)

	case OpRealloc:
		r.res.Reallocs++
		old, _ := r.live.Get(op.ID)
		if old.ptr == alloc.Nil && op.Size == 0 {
			return nil
		}
		if old.ptr != alloc.Nil {
			if err := r.verifyPattern(op, old); err != nil {
				return err
			}
		}
		p, err := r.a.Realloc(old.ptr, op.Size)
		if err != nil {
			return errors.Wrapf(err, "trace: line %d: realloc(%d)", op.Line, op.Size)
		}
		if old.ptr != alloc.Nil {
			r.drop(op.ID, old)
		}
		if op.Size == 0 {
			return nil
		}
		return r.adopt(op, p, old.ptr, min(old.size, op.Size))

	case OpFree:
		r.res.Frees++
		old, ok := r.live.Get(op.ID)
		if !ok {
			return nil
		}
		if err := r.verifyPattern(op, old); err != nil {
			return err
		}
		r.drop(op.ID, old)
		if err := r.a.Free(old.ptr); err != nil {
			return errors.Wrapf(err, "trace: line %d: free", op.Line)
		}
		return nil
	}
	return &CheckError{Op: op, Msg: "unknown op"}
}

// adopt checks a fresh pointer, verifies the carried-over prefix of a
// reallocated block and fills the payload.
func (r *replayer) adopt(op Op, p, from alloc.Ptr, carried int) error {
	b := liveBlock{ptr: p, size: op.Size}
	if p == alloc.Nil {
		return &CheckError{Op: op, Msg: "allocator returned Nil without an error"}
	}
	if !format.IsAligned(int(p)) {
		return &CheckError{Op: op, Msg: fmt.Sprintf("payload 0x%X is not 8-byte aligned", p)}
	}
	lo, hi := int(p), int(p)+op.Size
	if lo < format.FirstPayload || hi > format.EpilogueOff(r.a.HeapSize()) {
		return &CheckError{Op: op, Msg: fmt.Sprintf("payload [0x%X, 0x%X) outside heap of %d bytes", lo, hi, r.a.HeapSize())}
	}
	if r.a.UsableSize(p) < op.Size {
		return &CheckError{Op: op, Msg: fmt.Sprintf("usable size %d below request %d", r.a.UsableSize(p), op.Size)}
	}

	var overlap error
	r.live.Iter(func(id int, o liveBlock) bool {
		if lo < int(o.ptr)+o.size && int(o.ptr) < hi {
			overlap = &CheckError{Op: op, Msg: fmt.Sprintf("payload [0x%X, 0x%X) overlaps id %d at 0x%X", lo, hi, id, o.ptr)}
			return true
		}
		return false
	})
	if overlap != nil {
		return overlap
	}

	pl := r.a.Payload(p)
	if from != alloc.Nil {
		for i := range carried {
			if pl[i] != pattern(op.ID, i) {
				return &CheckError{Op: op, Msg: fmt.Sprintf("realloc lost byte %d of the old payload", i)}
			}
		}
	}
	for i := carried; i < op.Size; i++ {
		pl[i] = pattern(op.ID, i)
	}

	r.live.Put(op.ID, b)
	r.bytes += op.Size
	r.res.PeakPayload = max(r.res.PeakPayload, r.bytes)
	return nil
}

func (r *replayer) drop(id int, b liveBlock) {
	r.live.Delete(id)
	r.bytes -= b.size
}

func (r *replayer) verifyPattern(op Op, b liveBlock) error {
	pl := r.a.Payload(b.ptr)
	if len(pl) < b.size {
		return &CheckError{Op: op, Msg: fmt.Sprintf("block 0x%X no longer allocated", b.ptr)}
	}
	for i := range b.size {
		if pl[i] != pattern(op.ID, i) {
			return &CheckError{Op: op, Msg: fmt.Sprintf("payload of 0x%X overwritten at byte %d", b.ptr, i)}
		}
	}
	return nil
}

func pattern(id, i int) byte {
	return byte(id*31 + i)
}
