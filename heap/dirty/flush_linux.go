//go:build linux

package dirty

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// flushRanges msyncs each coalesced range. Linux accepts page-aligned
// sub-slices of a mapping.
func (t *Tracker) flushRanges(data []byte) error {
	for _, r := range t.coalesce() {
		start := int(r.Off)
		end := min(int(r.Off+r.Len), len(data))
		if start >= end {
			continue
		}
		if err := unix.Msync(data[start:end], unix.MS_SYNC); err != nil {
			return errors.Wrapf(err, "dirty: msync [%d, %d)", start, end)
		}
	}
	return nil
}

// fdatasync syncs file data. fullfsync is ignored; fdatasync already
// reaches stable storage here.
func fdatasync(m Mapped, _ bool) error {
	return errors.Wrap(unix.Fdatasync(m.Fd()), "dirty: fdatasync")
}
