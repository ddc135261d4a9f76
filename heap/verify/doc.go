// Package verify checks the structural invariants of a heap arena.
//
// # Overview
//
// The checks run directly on the arena bytes, so they can be pointed at a
// live allocator (via Allocator.Check), at a heap file on disk, or at a
// deliberately corrupted buffer in a test.
//
// Validation categories:
//   - Prefix: list-head slot, prologue tags, arena alignment
//   - Blocks: header equals footer, sizes aligned and at least MinBlock,
//     no two adjacent free blocks, epilogue at the arena end
//   - FreeList: every node free and inside the arena, back links consistent,
//     node count equals the number of free blocks
//
// # Quick Start
//
//	if err := verify.AllInvariants(store.Bytes()); err != nil {
//	    var verr *verify.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("%s at 0x%X: %s\n", verr.Type, verr.Offset, verr.Message)
//	    }
//	}
//
// # ValidationError
//
// Every check returns *ValidationError on failure. Offset is -1 when the
// problem has no single location. Details carries extra values (sizes, the
// mismatching tag) for tooling.
package verify
