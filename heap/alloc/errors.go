package alloc

import "github.com/cockroachdb/errors"

var (
	// ErrInit indicates the heap could not be initialized or attached.
	// The allocator must not be used after New or Attach returns it.
	ErrInit = errors.New("alloc: heap initialization failed")

	// ErrNoSpace indicates no free block fits and the heap could not grow.
	// The heap is left exactly as it was.
	ErrNoSpace = errors.New("alloc: out of heap space")

	// ErrZeroSize indicates a request for zero (or negative) bytes.
	ErrZeroSize = errors.New("alloc: zero-size request")

	// ErrBadPtr indicates a pointer that does not frame a block inside the arena.
	ErrBadPtr = errors.New("alloc: bad pointer")
)
