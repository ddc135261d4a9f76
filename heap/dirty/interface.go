package dirty

// DirtyTracker is the minimal interface for tracking dirty (modified) byte ranges.
// The allocator reports every tag, link and list-head write through it so
// a file-backed heap can flush only the pages it touched.
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the offset from the start of the arena, length is the number of bytes.
	Add(off, length int)
}

// Mapped is the arena a Tracker flushes: a byte view plus the descriptor of
// the file behind it. heap.File satisfies it.
type Mapped interface {
	Bytes() []byte
	Fd() int
}
