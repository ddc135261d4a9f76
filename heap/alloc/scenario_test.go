package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// Freed block is reused by the next request of the same size.
func TestScenario_LIFOReuse(t *testing.T) {
	a, _ := newTestAllocator(t, 0)

	p := mustMalloc(t, a, 100)
	require.GreaterOrEqual(t, a.blockSize(int(p)), format.Align8(100+format.Overhead))
	require.NoError(t, a.Free(p))

	q := mustMalloc(t, a, 100)
	require.Equal(t, p, q)
	require.NoError(t, a.Check())
}

// The second large request does not fit in what is left of the first chunk.
func TestScenario_GrowOnSecondLargeRequest(t *testing.T) {
	a, _ := newTestAllocator(t, 0)
	size := a.HeapSize()

	p := mustMalloc(t, a, 4000)
	require.Equal(t, size, a.HeapSize(), "first request fits in the initial chunk")
	require.Equal(t, 1, a.Stats().AllocFastPath)

	q := mustMalloc(t, a, 4000)
	require.Greater(t, a.HeapSize(), size)
	require.Equal(t, 2, a.Stats().GrowCalls)
	require.Equal(t, 1, a.Stats().AllocSlowPath)

	// The leftover tail of the first chunk merged with the new chunk.
	require.Equal(t, format.NextBlock(int(p), 4008), int(q))
	require.Equal(t, 1, a.Stats().CoalesceBackward)
	require.NoError(t, a.Check())
}

// Freeing B then A merges them without touching C.
func TestScenario_MergeStopsAtAllocated(t *testing.T) {
	a, _ := newTestAllocator(t, 0)
	pa := mustMalloc(t, a, 100)
	pb := mustMalloc(t, a, 100)
	pc := mustMalloc(t, a, 100)
	sa, sb := a.blockSize(int(pa)), a.blockSize(int(pb))

	require.NoError(t, a.Free(pb))
	require.NoError(t, a.Free(pa))

	merged := a.hdr(int(pa))
	require.False(t, merged.Allocated())
	require.Equal(t, sa+sb, merged.Size())
	require.Equal(t, int(pc), a.nextBlock(int(pa)))
	require.True(t, a.isAllocated(int(pc)))
	require.Contains(t, listOrder(t, a), int(pa))
	require.NotContains(t, listOrder(t, a), int(pb))
	require.NoError(t, a.Check())
}

// Whatever the free order, A+B+C come back as one region.
func TestScenario_FullMergeAnyOrder(t *testing.T) {
	orders := [][3]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, order := range orders {
		a, _ := newTestAllocator(t, 0)
		ptrs := [3]Ptr{mustMalloc(t, a, 100), mustMalloc(t, a, 200), mustMalloc(t, a, 300)}
		total := 0
		for _, p := range ptrs {
			total += a.blockSize(int(p))
		}
		size := a.HeapSize()

		for _, i := range order {
			require.NoError(t, a.Free(ptrs[i]), "order %v", order)
			require.NoError(t, a.Check(), "order %v", order)
		}

		p := mustMalloc(t, a, format.PayloadSize(total))
		require.Equal(t, ptrs[0], p, "order %v", order)
		require.Equal(t, size, a.HeapSize(), "order %v: heap must not grow", order)
		require.Equal(t, 1, a.Stats().GrowCalls, "order %v", order)
	}
}
