package format

import "golang.org/x/exp/constraints"

// Align8 returns n aligned up to the next 8-byte boundary.
// Used for block sizes and heap growth requests.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8[T constraints.Integer](n T) T {
	return (n + AlignmentMask) &^ AlignmentMask
}

// IsAligned reports whether n sits on an 8-byte boundary.
func IsAligned[T constraints.Integer](n T) bool {
	return n&AlignmentMask == 0
}

// AdjustedSize converts a payload request into a block size: room for the
// header and footer, 8-byte aligned, never below MinBlock. ok is false when
// the result cannot be carried by a tag.
func AdjustedSize(n int) (size int, ok bool) {
	if n <= 0 || n > MaxBlockSize-Overhead {
		return 0, false
	}
	size = max(Align8(n+Overhead), MinBlock)
	if size > MaxBlockSize {
		return 0, false
	}
	return size, true
}
