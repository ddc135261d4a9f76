package format

import "github.com/cockroachdb/errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadTag indicates a boundary tag that breaks the size or alignment rules.
	ErrBadTag = errors.New("format: invalid boundary tag")
)
