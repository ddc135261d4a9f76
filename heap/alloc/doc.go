// Package alloc implements an explicit free-list allocator over a heap.Store.
//
// # Overview
//
// Every block in the arena is framed by a 4-byte header and a 4-byte footer
// holding the block size with the allocated flag in the low bit. Free blocks
// additionally carry two 8-byte links (predecessor, successor) at the start
// of their payload, forming a doubly linked list whose head lives in the
// first word of the arena. The list is unordered; new free blocks are pushed
// at the head.
//
// Arena layout after initialization:
//
//	0x00  free-list head     (payload offset, 0 = empty)
//	0x04  prologue header    (8, allocated)
//	0x08  prologue footer    (8, allocated)
//	0x0C  first real block   header ... footer
//	 ...
//	len-4 epilogue header    (0, allocated)
//
// The sentinels always read as allocated, so coalescing never needs to
// special-case the heap edges.
//
// # Allocation
//
//   - Malloc scans the free list first-fit. A block is split when the
//     remainder can stand alone (MinBlock, 24 bytes); the remainder takes
//     over the original block's list position.
//   - When nothing fits, the heap grows by max(request, ChunkSize) and the
//     new region is merged with a free block ending at the old epilogue.
//   - Free marks the block free and merges it with free physical neighbors.
//   - Realloc always moves: allocate, copy, free.
//
// # Pointers
//
// A Ptr is a payload offset into the arena, never an address. Payload
// returns a slice over the usable bytes; like any slice into the arena it
// is only valid until the next call that may grow the heap.
//
// # Thread Safety
//
// Allocator is not safe for concurrent use. Callers that share one must
// serialize access themselves.
package alloc
