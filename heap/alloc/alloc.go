package alloc

import (
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/heap/walker"
	"github.com/joshuapare/heapkit/internal/format"
)

// Runtime debug flag for allocation logging - controlled by HEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAP_LOG_ALLOC") != ""

// Allocator manages one heap laid out in a heap.Store.
//
// All state lives in the arena itself; the struct only holds the store and
// configuration, so a heap written to a file can be reattached later.
type Allocator struct {
	store heap.Store
	dt    DirtyTracker
	log   *slog.Logger
	chunk int

	// Statistics for testing and instrumentation
	stats Stats
}

func newAllocator(store heap.Store, opts *Options) *Allocator {
	a := &Allocator{
		store: store,
		dt:    noopTracker{},
		log:   newLogger(nil),
		chunk: opts.chunkSize(),
	}
	if opts != nil {
		if opts.Tracker != nil {
			a.dt = opts.Tracker
		}
		a.log = newLogger(opts.Logger)
	}
	return a
}

func newLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}

// New lays out an empty heap in store and grows it by one chunk.
// The store must be empty. Any failure is reported as ErrInit.
func New(store heap.Store, opts *Options) (*Allocator, error) {
	if store == nil {
		return nil, errors.Wrap(ErrInit, "nil store")
	}
	if n := len(store.Bytes()); n != 0 {
		return nil, errors.Wrapf(ErrInit, "store already holds %d bytes", n)
	}
	a := newAllocator(store, opts)

	base, err := store.Grow(format.PrefixSize)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "alloc: grow heap prefix"), ErrInit)
	}
	if base != 0 {
		return nil, errors.Wrapf(ErrInit, "store grew at offset %d, expected 0", base)
	}

	m := a.mem()
	format.PutU32(m, format.HeadSlotOffset, format.NilOffset)
	format.PutTag(m, format.PrologueHeaderOffset, format.PrologueTag)
	format.PutTag(m, format.PrologueFooterOffset, format.PrologueTag)
	format.PutTag(m, format.InitialEpilogueOffset, format.EpilogueTag)
	a.dt.Add(0, format.PrefixSize)

	if _, err := a.extend(a.chunk); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "alloc: grow initial chunk"), ErrInit)
	}
	a.log.Debug("heap initialized", "chunk", a.chunk, "size", a.HeapSize())
	a.debugCheck("init")
	return a, nil
}

// Attach adopts a heap already laid out in store, such as a reopened
// heap.File. The arena is verified first; a damaged heap fails with ErrInit.
func Attach(store heap.Store, opts *Options) (*Allocator, error) {
	if store == nil {
		return nil, errors.Wrap(ErrInit, "nil store")
	}
	if err := verify.AllInvariants(store.Bytes()); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "alloc: attach"), ErrInit)
	}
	a := newAllocator(store, opts)
	a.log.Debug("heap attached", "size", a.HeapSize(), "head", a.head())
	return a, nil
}

// HeapSize returns the current arena length in bytes.
func (a *Allocator) HeapSize() int { return len(a.mem()) }

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats { return a.stats }

// Blocks walks every block of the heap in address order.
func (a *Allocator) Blocks(fn func(walker.Block) error) error {
	return walker.Walk(a.mem(), fn)
}

// Check runs every heap invariant check and returns the first violation.
func (a *Allocator) Check() error {
	return verify.AllInvariants(a.mem())
}
