package alloc

import (
	"log/slog"

	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is the payload offset of an allocated block.
type Ptr uint32

// Nil is the null pointer. Offset 0 holds the list head and is never a payload.
const Nil Ptr = format.NilOffset

// Options configures an Allocator. A nil *Options selects the defaults.
type Options struct {
	// ChunkSize is the minimum growth step. Rounded up to 8 and never below
	// MinBlock. Default: format.ChunkSize (4096).
	ChunkSize int

	// Logger receives growth, exhaustion and attach events. When nil, logs
	// are discarded unless HEAP_LOG_ALLOC is set in the environment.
	Logger *slog.Logger

	// Tracker is told about every byte range the allocator writes.
	// Optional; file-backed heaps use it to flush only touched pages.
	Tracker DirtyTracker
}

func (o *Options) chunkSize() int {
	if o == nil || o.ChunkSize <= 0 {
		return format.ChunkSize
	}
	return max(format.Align8(o.ChunkSize), format.MinBlock)
}

// Stats holds allocator counters for testing and instrumentation.
type Stats struct {
	AllocCalls       int   // Total Malloc calls, failed ones included
	AllocFastPath    int   // Allocations served from the free list
	AllocSlowPath    int   // Allocations that had to grow the heap
	FreeCalls        int   // Total Free calls, including those made by Realloc
	ReallocCalls     int   // Total Realloc calls
	BytesAllocated   int64 // Block bytes handed out (including header and footer)
	BytesFreed       int64 // Block bytes returned
	SplitCount       int   // Blocks split during placement
	CoalesceForward  int   // Merges with the following block
	CoalesceBackward int   // Merges with the preceding block
	GrowCalls        int   // Successful heap extensions
	GrowBytes        int64 // Bytes added by heap extensions
}
