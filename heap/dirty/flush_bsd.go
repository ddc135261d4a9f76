//go:build unix && !linux && !darwin

package dirty

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// flushRanges syncs the whole mapping in one call.
func (t *Tracker) flushRanges(data []byte) error {
	return errors.Wrap(unix.Msync(data, unix.MS_SYNC), "dirty: msync")
}

func fdatasync(m Mapped, _ bool) error {
	return errors.Wrap(unix.Fsync(m.Fd()), "dirty: fsync")
}
