// Package dirty provides tracking and flushing of dirty pages in
// file-backed heaps.
//
// The tracker maintains a list of dirty byte ranges, coalesces them into
// page-aligned ranges, and flushes them to disk using platform-specific
// system calls (msync and fdatasync on unix).
package dirty

import (
	"context"
	"sort"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096

	// compactThreshold is the range count at which Add first merges the
	// pending ranges into page runs.
	compactThreshold = 1024
)

// FlushMode controls durability guarantees for Flush.
type FlushMode int

const (
	// FlushAuto msyncs dirty pages, then fdatasyncs the file.
	FlushAuto FlushMode = iota

	// FlushDataOnly only msyncs dirty pages.
	// The caller is responsible for syncing the descriptor later.
	FlushDataOnly

	// FlushFull msyncs dirty pages and forces the file to stable storage,
	// using F_FULLFSYNC on macOS.
	FlushFull
)

// Range represents a dirty byte range.
type Range struct {
	Off int64 // Offset in the arena
	Len int64 // Length in bytes
}

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	m        Mapped
	ranges    []Range // Dirty data ranges (will be coalesced at flush time)
	pageSize  int64
	compactAt int
}

// NewTracker creates a dirty tracker for the given arena.
func NewTracker(m Mapped) *Tracker {
	return &Tracker{
		m:        m,
		ranges:    make([]Range, 0, defaultRangeCapacity),
		pageSize:  standardPageSize,
		compactAt: compactThreshold,
	}
}

// Add records a dirty range. Ranges are page-aligned and merged at flush
// time, or earlier once compactAt of them are pending, so memory stays
// bounded by the number of dirty pages between flushes.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
	if len(t.ranges) >= t.compactAt {
		t.ranges = t.coalesce()
		t.compactAt = max(compactThreshold, 2*len(t.ranges))
	}
}

// Flush writes all dirty pages back and clears the tracked ranges.
//
// The context is checked before the page flush and before the descriptor
// sync. If it is cancelled in between, the pages are on disk but the file
// metadata may not be.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(t.ranges) == 0 {
		return nil
	}

	data := t.m.Bytes()
	if len(data) == 0 {
		t.Reset()
		return nil
	}

	if err := t.flushRanges(data); err != nil {
		return err
	}
	t.Reset()

	if mode == FlushDataOnly {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fdatasync(t.m, mode == FlushFull)
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
	t.compactAt = compactThreshold
}

// Pending reports whether any range is waiting to be flushed.
func (t *Tracker) Pending() bool { return len(t.ranges) > 0 }

// DebugRanges returns a copy of the pending ranges as Add recorded them,
// after any compaction.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the page-aligned, merged ranges Flush would write.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping/adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}

		aligned[i] = Range{
			Off: start,
			Len: end - start,
		}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]

	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			end := max(current.Off+current.Len, next.Off+next.Len)
			current.Len = end - current.Off
		} else {
			merged = append(merged, current)
			current = next
		}
	}

	return append(merged, current)
}
