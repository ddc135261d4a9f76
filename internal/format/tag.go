package format

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Tag is a boundary tag: the block size with the allocated flag packed into
// the low bit. Sizes are multiples of 8, so the three low bits are free.
type Tag uint32

const (
	allocatedBit Tag = 0x1
	sizeMask     Tag = ^Tag(AlignmentMask)
)

// Sentinel tags. Both always read as allocated so neighbor checks at the
// heap edges need no special cases.
const (
	PrologueTag Tag = PrologueSize | allocatedBit
	EpilogueTag Tag = 0 | allocatedBit
)

// Pack builds a tag, rejecting sizes that are negative, misaligned or too large.
func Pack(size int, allocated bool) (Tag, error) {
	if size < 0 || size > MaxBlockSize {
		return 0, errors.Wrapf(ErrBadTag, "size %d out of range", size)
	}
	if !IsAligned(size) {
		return 0, errors.Wrapf(ErrBadTag, "size %d is not 8-byte aligned", size)
	}
	t := Tag(size)
	if allocated {
		t |= allocatedBit
	}
	return t, nil
}

// MustPack is Pack for sizes the caller has already validated. It panics on
// a bad size, which inside the allocator means the heap is corrupt.
func MustPack(size int, allocated bool) Tag {
	t, err := Pack(size, allocated)
	if err != nil {
		panic(err)
	}
	return t
}

// Size returns the block size including header and footer.
func (t Tag) Size() int { return int(t & sizeMask) }

// Allocated reports whether the block is in use.
func (t Tag) Allocated() bool { return t&allocatedBit != 0 }

// Valid reports whether the tag carries no stray low bits.
func (t Tag) Valid() bool { return t&^(sizeMask|allocatedBit) == 0 }

func (t Tag) String() string {
	state := "free"
	if t.Allocated() {
		state = "allocated"
	}
	return fmt.Sprintf("(%d, %s)", t.Size(), state)
}

// ReadTag decodes the tag stored at off.
func ReadTag(b []byte, off int) Tag {
	return Tag(ReadU32(b, off))
}

// PutTag stores t at off.
func PutTag(b []byte, off int, t Tag) {
	PutU32(b, off, uint32(t))
}
