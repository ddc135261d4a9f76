//go:build unix

package heap

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// File is an arena backed by a file mapped read-write into memory. Writes
// through Bytes land in the page cache and reach the disk on msync (see
// package heap/dirty) or when the kernel writes them back.
type File struct {
	f     *os.File
	data  []byte
	size  int
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

// Open maps an existing heap file. The file size becomes the arena size.
func Open(path string, limit int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err, "heap: open")
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "heap: stat")
	}
	limit = normalizeLimit(limit)
	if st.Size() > int64(limit) {
		_ = f.Close()
		return nil, errors.Wrapf(ErrExhausted, "file is %d bytes, limit %d", st.Size(), limit)
	}

	h := &File{f: f, size: int(st.Size()), limit: limit}
	if h.size > 0 {
		if h.data, err = mapFile(f, h.size); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return h, nil
}

// Grow extends the file by n bytes and remaps it. The new bytes are
// zero-initialized by the OS. The old mapping stays in place until the new
// one exists, so on failure Bytes is unchanged.
func (h *File) Grow(n int) (int, error) {
	if h.f == nil {
		return -1, ErrClosed
	}
	if err := checkGrow(n, h.size, h.limit); err != nil {
		return -1, err
	}
	base := h.size
	if n == 0 {
		return base, nil
	}

	fd := int(h.f.Fd())
	newSize := h.size + n
	if err := unix.Ftruncate(fd, int64(newSize)); err != nil {
		return -1, errors.Mark(errors.Wrap(err, "heap: extend file"), ErrExhausted)
	}

	data, err := mapFile(h.f, newSize)
	if err != nil {
		return -1, errors.Mark(h.shrinkBack(err), ErrExhausted)
	}
	if h.data != nil {
		if err := unix.Munmap(h.data); err != nil {
			_ = unix.Munmap(data)
			return -1, h.shrinkBack(errors.Wrap(err, "heap: unmap old mapping"))
		}
	}
	h.data = data
	h.size = newSize
	return base, nil
}

// shrinkBack truncates the file to the mapped size after a failed grow.
func (h *File) shrinkBack(cause error) error {
	if err := unix.Ftruncate(int(h.f.Fd()), int64(h.size)); err != nil {
		return errors.CombineErrors(cause, errors.Wrap(err, "heap: restore file size"))
	}
	return cause
}

func (h *File) Bytes() []byte { return h.data }

// Size returns the current arena size in bytes.
func (h *File) Size() int { return h.size }

// Fd returns the file descriptor, or -1 once closed.
func (h *File) Fd() int {
	if h == nil || h.f == nil {
		return -1
	}
	return int(h.f.Fd())
}

// Sync writes the whole mapping back to the file.
func (h *File) Sync() error {
	if h.data == nil {
		return nil
	}
	return errors.Wrap(unix.Msync(h.data, unix.MS_SYNC), "heap: msync")
}

// Close unmaps and closes the file. Calling Close twice is a no-op.
func (h *File) Close() error {
	var err error
	if h.data != nil {
		err = unix.Munmap(h.data)
		h.data = nil
	}
	if h.f != nil {
		if cerr := h.f.Close(); err == nil {
			err = cerr
		}
		h.f = nil
	}
	return errors.Wrap(err, "heap: close")
}

func mapFile(f *os.File, size int) ([]byte, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrap(err, "heap: mmap")
	}
	return data, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultMemLimit
	}
	return limit
}
