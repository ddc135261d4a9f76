package walker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// arena builds a heap image holding the given blocks back to back after the
// prologue, followed by the epilogue. Free blocks are linked in order.
func arena(t *testing.T, blocks ...Block) []byte {
	t.Helper()
	total := format.PrefixSize - format.WordSize
	for _, b := range blocks {
		total += b.Size
	}
	total += format.WordSize
	data := make([]byte, total)

	format.PutTag(data, format.PrologueHeaderOffset, format.PrologueTag)
	format.PutTag(data, format.PrologueFooterOffset, format.PrologueTag)

	bp := format.FirstPayload
	prevFree := format.NilOffset
	for _, b := range blocks {
		tag := format.MustPack(b.Size, b.Allocated)
		format.PutTag(data, format.HeaderOff(bp), tag)
		format.PutTag(data, format.FooterOff(bp, b.Size), tag)
		if !b.Allocated {
			if prevFree == format.NilOffset {
				format.PutU32(data, format.HeadSlotOffset, uint32(bp))
			} else {
				format.PutU64(data, prevFree+format.SuccOffset, uint64(bp))
			}
			format.PutU64(data, bp+format.PredOffset, uint64(prevFree))
			format.PutU64(data, bp+format.SuccOffset, 0)
			prevFree = bp
		}
		bp += b.Size
	}
	format.PutTag(data, format.HeaderOff(bp), format.EpilogueTag)
	require.Equal(t, len(data), bp)
	return data
}

func TestWalk_EmptyArena(t *testing.T) {
	data := arena(t)
	require.Len(t, data, format.PrefixSize)

	blocks, err := Blocks(data)
	require.NoError(t, err)
	require.Empty(t, blocks)
}

func TestWalk_Sequence(t *testing.T) {
	data := arena(t,
		Block{Size: 112, Allocated: true},
		Block{Size: 24},
		Block{Size: 4000, Allocated: true},
	)

	blocks, err := Blocks(data)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	require.Equal(t, 16, blocks[0].Off)
	require.Equal(t, 128, blocks[1].Off)
	require.Equal(t, 152, blocks[2].Off)
	require.True(t, blocks[0].Allocated)
	require.False(t, blocks[1].Allocated)
	require.Equal(t, 104, blocks[0].Payload())
	require.Equal(t, 12, blocks[0].Header())
	require.Equal(t, blocks[1].Off, blocks[0].End())
	for _, b := range blocks {
		require.Equal(t, format.MustPack(b.Size, b.Allocated), b.Footer)
	}
}

func TestWalk_StopEarly(t *testing.T) {
	data := arena(t, Block{Size: 24}, Block{Size: 24, Allocated: true}, Block{Size: 24})

	seen := 0
	err := Walk(data, func(Block) error {
		seen++
		if seen == 2 {
			return ErrStop
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, seen)
}

func TestWalk_Truncated(t *testing.T) {
	_, err := Blocks(make([]byte, 8))
	var we *WalkError
	require.ErrorAs(t, err, &we)
	require.Equal(t, 0, we.Off)
}

func TestWalk_SizeRunsPastEnd(t *testing.T) {
	data := arena(t, Block{Size: 32, Allocated: true})
	format.PutTag(data, format.HeaderOff(format.FirstPayload), format.MustPack(4096, true))

	_, err := Blocks(data)
	var we *WalkError
	require.ErrorAs(t, err, &we)
	require.Equal(t, format.HeaderOff(format.FirstPayload), we.Off)
}

func TestWalk_EarlyEpilogue(t *testing.T) {
	data := arena(t, Block{Size: 32, Allocated: true}, Block{Size: 32, Allocated: true})
	format.PutTag(data, format.HeaderOff(48), format.EpilogueTag)

	_, err := Blocks(data)
	var we *WalkError
	require.ErrorAs(t, err, &we)
	require.Equal(t, format.HeaderOff(48), we.Off)
}

func TestWalk_MisalignedTag(t *testing.T) {
	data := arena(t, Block{Size: 32, Allocated: true})
	format.PutU32(data, format.HeaderOff(format.FirstPayload), 0x23)

	_, err := Blocks(data)
	require.Error(t, err)
}

func TestFreeList_Order(t *testing.T) {
	data := arena(t,
		Block{Size: 24},
		Block{Size: 32, Allocated: true},
		Block{Size: 48},
		Block{Size: 64},
	)

	var got []Node
	require.NoError(t, FreeList(data, func(n Node) error {
		got = append(got, n)
		return nil
	}))
	require.Len(t, got, 3)
	require.Equal(t, 16, got[0].Off)
	require.Equal(t, 0, got[0].Pred)
	require.Equal(t, got[1].Off, got[0].Succ)
	require.Equal(t, got[0].Off, got[1].Pred)
	require.Equal(t, 0, got[2].Succ)
	require.False(t, got[2].Tag.Allocated())
}

func TestFreeList_Cycle(t *testing.T) {
	data := arena(t, Block{Size: 24}, Block{Size: 24})
	// tail points back to the head
	format.PutU64(data, 40+format.SuccOffset, 16)

	err := FreeList(data, func(Node) error { return nil })
	var we *WalkError
	require.ErrorAs(t, err, &we)
	require.Contains(t, we.Msg, "cycle")
}

func TestFreeList_OutOfBoundsLink(t *testing.T) {
	data := arena(t, Block{Size: 24})
	format.PutU64(data, 16+format.SuccOffset, 1<<20)

	err := FreeList(data, func(Node) error { return nil })
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	data := arena(t,
		Block{Size: 112, Allocated: true},
		Block{Size: 24},
		Block{Size: 64, Allocated: true},
		Block{Size: 200},
	)

	s, err := Summarize(data)
	require.NoError(t, err)
	require.Equal(t, len(data), s.HeapBytes)
	require.Equal(t, 4, s.BlockCount)
	require.Equal(t, 2, s.AllocatedCount)
	require.Equal(t, 176, s.AllocatedBytes)
	require.Equal(t, 2, s.FreeCount)
	require.Equal(t, 224, s.FreeBytes)
	require.Equal(t, 200, s.LargestFree)
	require.Equal(t, 24, s.SmallestFree)
	require.Equal(t, 2, s.ListLength)
	require.InDelta(t, 176.0/float64(len(data)), s.Utilization(), 1e-9)
}

func TestSummarize_NoFree(t *testing.T) {
	s, err := Summarize(arena(t, Block{Size: 32, Allocated: true}))
	require.NoError(t, err)
	require.Zero(t, s.SmallestFree)
	require.Zero(t, s.ListLength)
}
