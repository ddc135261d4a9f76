//go:build !unix

package dirty

import "github.com/cockroachdb/errors"

type syncer interface {
	Sync() error
}

// flushRanges falls back to the arena's own Sync on platforms without a
// usable msync; the non-mmap heap.File writes its buffer back.
func (t *Tracker) flushRanges(_ []byte) error {
	if s, ok := t.m.(syncer); ok {
		return errors.Wrap(s.Sync(), "dirty: sync")
	}
	return nil
}

func fdatasync(Mapped, bool) error { return nil }
