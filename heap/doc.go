// Package heap provides the backing stores a heapkit allocator grows into.
//
// # Overview
//
// A Store is a single contiguous byte arena that only ever grows. Grow
// extends it by n bytes and returns the offset where the new bytes begin,
// which is always the previous length of the arena. The allocator never
// remembers a slice across a Grow call: it re-reads Bytes instead, because
// a store is free to move the arena when it grows.
//
// # Implementations
//
// Mem: capacity-bounded in-memory arena
//
//   - Reserves its whole limit up front, so the arena never moves
//   - Grow past the limit fails with ErrExhausted
//   - Reset empties it for reuse
//
// File: file-backed arena
//
//   - Mapped read-write with mmap on unix, held in memory elsewhere
//   - Grow extends the file and remaps it
//   - A heap written to a File can be reopened later and attached again
//
// # Usage Example
//
//	store := heap.NewMem(heap.DefaultMemLimit)
//	a, err := alloc.New(store, nil)
//	if err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Stores are not thread-safe. They are driven by a single allocator.
package heap
