// Package format describes the on-arena layout of a heapkit heap: word sizes,
// the fixed prefix holding the free-list head and the sentinels, and the
// boundary-tag encoding shared by the allocator, the walker and the verifier.
//
// All positions are byte offsets into the arena. A block is addressed by the
// offset of its payload ("bp"); its header sits one word before it and its
// footer one double word before the next block's payload.
package format

import "math"

const (
	// WordSize is the size of a header or footer tag.
	WordSize = 4

	// DoubleSize is the size of a header plus footer, and the alignment unit.
	DoubleSize = 8

	// Alignment is the payload and block-size alignment.
	Alignment = 8

	// AlignmentMask is Alignment - 1.
	AlignmentMask = Alignment - 1

	// ChunkSize is the default amount the heap grows by when no free block fits.
	ChunkSize = 1 << 12

	// LinkSize is the width of one free-list link stored in a free payload.
	LinkSize = 8

	// PredOffset and SuccOffset locate the free-list links inside a free payload.
	PredOffset = 0
	SuccOffset = LinkSize

	// Overhead is the per-block bookkeeping cost (header + footer).
	Overhead = 2 * WordSize

	// MinBlock is the smallest legal block: header, footer and two links.
	// Allocated blocks are held to it too so any block can become a list node.
	MinBlock = Overhead + 2*LinkSize

	// MaxBlockSize caps block sizes, and with them the arena, at 2GB so every
	// offset and size fits an int on all platforms.
	MaxBlockSize = math.MaxInt32 &^ AlignmentMask
)

// Fixed prefix written by heap initialization:
//
//	0x00  free-list head (payload offset of first free block, 0 = empty)
//	0x04  prologue header (8, allocated)
//	0x08  prologue footer (8, allocated)
//	0x0C  epilogue header (0, allocated), moves to the arena end on growth
const (
	HeadSlotOffset        = 0
	PrologueHeaderOffset  = 4
	PrologueFooterOffset  = 8
	InitialEpilogueOffset = 12

	// PrefixSize is the size of the first growth performed by initialization.
	PrefixSize = 4 * WordSize

	// PrologueSize is the size recorded in the prologue tags.
	PrologueSize = DoubleSize

	// FirstBlock is the payload offset of the prologue, the "first block"
	// pointer of the heap. Walks start from the block after it.
	FirstBlock = PrologueFooterOffset

	// FirstPayload is the payload offset of the first real block.
	FirstPayload = FirstBlock + PrologueSize

	// NilOffset marks an empty list-head slot, an absent successor, or, as a
	// predecessor, "the list-head slot itself". Offset 0 is never a payload.
	NilOffset = 0
)
