package heap

import "github.com/cockroachdb/errors"

// DefaultMemLimit is the default ceiling for a Mem arena (20 MiB).
const DefaultMemLimit = 20 * (1 << 20)

var (
	// ErrExhausted indicates the store cannot grow any further.
	ErrExhausted = errors.New("heap: backing store exhausted")

	// ErrClosed indicates an operation on a closed store.
	ErrClosed = errors.New("heap: store is closed")
)

// Store is a contiguous, grow-only byte arena.
type Store interface {
	// Grow extends the arena by n bytes and returns the offset of the first
	// new byte. The new region is contiguous with everything grown before.
	// On failure the arena is left exactly as it was.
	Grow(n int) (int, error)

	// Bytes returns the current arena. The slice may be replaced by Grow.
	Bytes() []byte
}

func checkGrow(n, size, limit int) error {
	if n < 0 {
		return errors.Newf("heap: negative grow request %d", n)
	}
	if n > limit-size {
		return errors.Wrapf(ErrExhausted, "grow by %d bytes (in use %d, limit %d)", n, size, limit)
	}
	return nil
}
