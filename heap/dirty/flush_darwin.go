//go:build darwin

package dirty

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// flushRanges syncs the whole mapping. On macOS msync needs the address the
// mapping started at, so sub-slices cannot be used; the kernel only writes
// pages that are actually dirty anyway.
func (t *Tracker) flushRanges(data []byte) error {
	return errors.Wrap(unix.Msync(data, unix.MS_SYNC), "dirty: msync")
}

// fdatasync uses F_FULLFSYNC when asked, plain fsync otherwise; macOS has
// no fdatasync.
func fdatasync(m Mapped, fullfsync bool) error {
	if fullfsync {
		_, err := unix.FcntlInt(uintptr(m.Fd()), unix.F_FULLFSYNC, 0)
		return errors.Wrap(err, "dirty: F_FULLFSYNC")
	}
	return errors.Wrap(unix.Fsync(m.Fd()), "dirty: fsync")
}
