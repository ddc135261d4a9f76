package format

// Block address arithmetic. Every function takes and returns payload offsets
// unless its name says otherwise; none of them touch the arena.

// HeaderOff returns the offset of the header of the block at bp.
func HeaderOff(bp int) int { return bp - WordSize }

// FooterOff returns the offset of the footer of the block at bp with the given size.
func FooterOff(bp, size int) int { return bp + size - DoubleSize }

// PrevFooterOff returns the offset of the footer of the block physically before bp.
func PrevFooterOff(bp int) int { return bp - DoubleSize }

// NextBlock returns the payload offset of the block physically after bp.
func NextBlock(bp, size int) int { return bp + size }

// PrevBlock returns the payload offset of the block physically before bp,
// given the size read from that block's footer.
func PrevBlock(bp, prevSize int) int { return bp - prevSize }

// PayloadSize returns how many bytes a block of the given size can hold.
func PayloadSize(size int) int { return size - Overhead }

// EpilogueOff returns where the epilogue header lives in an arena of arenaLen bytes.
func EpilogueOff(arenaLen int) int { return arenaLen - WordSize }
