package heap

// Mem is an in-memory arena with a fixed ceiling, the moral equivalent of
// an sbrk over a preallocated region. The whole limit is reserved when the
// store is created so slices handed out earlier stay valid after Grow.
type Mem struct {
	buf   []byte
	limit int
}

// NewMem creates an empty arena that can grow up to limit bytes.
// A limit <= 0 selects DefaultMemLimit.
func NewMem(limit int) *Mem {
	if limit <= 0 {
		limit = DefaultMemLimit
	}
	return &Mem{
		buf:   make([]byte, 0, limit),
		limit: limit,
	}
}

// Grow extends the arena by n bytes.
func (m *Mem) Grow(n int) (int, error) {
	base := len(m.buf)
	if err := checkGrow(n, base, m.limit); err != nil {
		return -1, err
	}
	m.buf = m.buf[:base+n]
	return base, nil
}

func (m *Mem) Bytes() []byte { return m.buf }

// Limit returns the arena ceiling in bytes.
func (m *Mem) Limit() int { return m.limit }

// Reset empties the arena. Old contents are not cleared; freshly grown
// memory has unspecified contents, as with sbrk.
func (m *Mem) Reset() {
	m.buf = m.buf[:0]
}
