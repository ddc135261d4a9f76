//go:build !unix

package heap

import (
	"os"

	"github.com/cockroachdb/errors"
)

// File is an arena backed by a file. Without mmap the arena lives in memory
// and Sync writes it back; Close syncs before closing.
type File struct {
	f     *os.File
	data  []byte
	limit int
}

// Create makes an empty heap file at path, truncating any existing file.
// A limit <= 0 selects DefaultMemLimit.
func Create(path string, limit int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "heap: create")
	}
	return &File{f: f, limit: normalizeLimit(limit)}, nil
}

// Open reads an existing heap file into memory.
func Open(path string, limit int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err, "heap: open")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "heap: read")
	}
	limit = normalizeLimit(limit)
	if len(data) > limit {
		_ = f.Close()
		return nil, errors.Wrapf(ErrExhausted, "file is %d bytes, limit %d", len(data), limit)
	}
	return &File{f: f, data: data, limit: limit}, nil
}

// Grow extends the arena by n zero bytes and the file with it.
func (h *File) Grow(n int) (int, error) {
	if h.f == nil {
		return -1, ErrClosed
	}
	base := len(h.data)
	if err := checkGrow(n, base, h.limit); err != nil {
		return -1, err
	}
	if err := h.f.Truncate(int64(base + n)); err != nil {
		return -1, errors.Mark(errors.Wrap(err, "heap: extend file"), ErrExhausted)
	}
	newData := make([]byte, base+n)
	copy(newData, h.data)
	h.data = newData
	return base, nil
}

func (h *File) Bytes() []byte { return h.data }

// Size returns the current arena size in bytes.
func (h *File) Size() int { return len(h.data) }

// Fd returns the file descriptor, or -1 once closed.
func (h *File) Fd() int {
	if h == nil || h.f == nil {
		return -1
	}
	return int(h.f.Fd())
}

// Sync writes the whole arena back to the file.
func (h *File) Sync() error {
	if h.f == nil {
		return ErrClosed
	}
	if _, err := h.f.WriteAt(h.data, 0); err != nil {
		return errors.Wrap(err, "heap: write back")
	}
	return errors.Wrap(h.f.Sync(), "heap: sync")
}

// Close syncs and closes the file. Calling Close twice is a no-op.
func (h *File) Close() error {
	if h.f == nil {
		return nil
	}
	err := h.Sync()
	if cerr := h.f.Close(); err == nil {
		err = cerr
	}
	h.f = nil
	h.data = nil
	return errors.Wrap(err, "heap: close")
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultMemLimit
	}
	return limit
}
