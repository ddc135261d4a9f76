package walker

import "math"

// Summary aggregates a walk of the arena.
type Summary struct {
	HeapBytes      int // arena length
	BlockCount     int
	AllocatedCount int
	AllocatedBytes int // block bytes, overhead included
	FreeCount      int
	FreeBytes      int
	LargestFree    int
	SmallestFree   int // 0 when there is no free block
	ListLength     int // nodes reachable from the list head
}

// Clear resets the summary to an empty arena.
func (s *Summary) Clear() {
	*s = Summary{SmallestFree: math.MaxInt}
}

// AddBlock folds one block into the summary.
func (s *Summary) AddBlock(b Block) {
	s.BlockCount++
	if b.Allocated {
		s.AllocatedCount++
		s.AllocatedBytes += b.Size
		return
	}
	s.FreeCount++
	s.FreeBytes += b.Size
	s.LargestFree = max(s.LargestFree, b.Size)
	s.SmallestFree = min(s.SmallestFree, b.Size)
}

// Utilization returns allocated block bytes over arena bytes (0.0 to 1.0).
func (s Summary) Utilization() float64 {
	if s.HeapBytes == 0 {
		return 0
	}
	return float64(s.AllocatedBytes) / float64(s.HeapBytes)
}

// Summarize walks both the blocks and the free list of data.
func Summarize(data []byte) (Summary, error) {
	var s Summary
	s.Clear()
	s.HeapBytes = len(data)

	if err := Walk(data, func(b Block) error {
		s.AddBlock(b)
		return nil
	}); err != nil {
		return s, err
	}
	if s.FreeCount == 0 {
		s.SmallestFree = 0
	}

	err := FreeList(data, func(Node) error {
		s.ListLength++
		return nil
	})
	return s, err
}
