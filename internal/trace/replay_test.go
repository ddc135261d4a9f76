package trace

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

func newAllocator(t *testing.T, limit int) *alloc.Allocator {
	t.Helper()
	a, err := alloc.New(heap.NewMem(limit), nil)
	require.NoError(t, err)
	return a
}

func mustParse(t *testing.T, s string) *Trace {
	t.Helper()
	tr, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	return tr
}

func TestReplay(t *testing.T) {
	a := newAllocator(t, 0)
	res, err := Replay(context.Background(), a, mustParse(t, shortTrace), &Options{CheckHeap: true})
	require.NoError(t, err)

	require.Equal(t, 8, res.Ops)
	require.Equal(t, 2+1, res.Allocs)
	require.Equal(t, 2, res.Reallocs)
	require.Equal(t, 3, res.Frees)
	require.Equal(t, 2300, res.PeakPayload)
	require.Equal(t, a.HeapSize(), res.HeapSize)
	require.InDelta(t, 2300/float64(a.HeapSize()), res.Utilization, 1e-9)
	require.NoError(t, a.Check())
}

func TestReplay_GeneratedTrace(t *testing.T) {
	var b strings.Builder
	const ids = 200
	ops := 0
	body := &strings.Builder{}
	for i := range ids {
		body.WriteString("a " + strconv.Itoa(i) + " " + strconv.Itoa(1+(i*53)%900) + "\n")
		ops++
		if i%3 == 0 {
			body.WriteString("r " + strconv.Itoa(i) + " " + strconv.Itoa(1+(i*17)%2000) + "\n")
			ops++
		}
		if i%2 == 1 {
			body.WriteString("f " + strconv.Itoa(i-1) + "\n")
			ops++
		}
	}
	b.WriteString("100000\n" + strconv.Itoa(ids) + "\n" + strconv.Itoa(ops) + "\n1\n")
	b.WriteString(body.String())

	a := newAllocator(t, 0)
	res, err := Replay(context.Background(), a, mustParse(t, b.String()), &Options{CheckHeap: true})
	require.NoError(t, err)
	require.Equal(t, ops, res.Ops)
	require.Greater(t, res.Utilization, 0.0)
	require.LessOrEqual(t, res.Utilization, 1.0)
}

func TestReplay_ReallocUnknownID(t *testing.T) {
	tr := mustParse(t, "0\n2\n3\n1\nr 0 40\nr 1 0\nf 0\n")
	a := newAllocator(t, 0)
	res, err := Replay(context.Background(), a, tr, nil)
	require.NoError(t, err)
	require.Equal(t, 3, res.Ops)
	require.Equal(t, 40, res.PeakPayload)
}

func TestReplay_LargeIDSpace(t *testing.T) {
	tr := &Trace{
		NumIDs: 1 << 40,
		NumOps: 2,
		Ops: []Op{
			{Kind: OpAlloc, ID: 1<<40 - 1, Size: 24, Line: 5},
			{Kind: OpFree, ID: 1<<40 - 1, Line: 6},
		},
	}
	a := newAllocator(t, 0)
	res, err := Replay(context.Background(), a, tr, &Options{CheckHeap: true})
	require.NoError(t, err)
	require.Equal(t, 2, res.Ops)
	require.Equal(t, 24, res.PeakPayload)
}

func TestReplay_OutOfMemory(t *testing.T) {
	tr := mustParse(t, "0\n2\n2\n1\na 0 3000\na 1 3000\n")
	a := newAllocator(t, 16+4096)

	res, err := Replay(context.Background(), a, tr, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, alloc.ErrNoSpace))
	require.Equal(t, 1, res.Ops)
	require.Contains(t, err.Error(), "line 6")
}

func TestReplay_DetectsCorruption(t *testing.T) {
	tr := mustParse(t, "0\n1\n2\n1\na 0 64\nf 0\n")
	a := newAllocator(t, 0)

	// Replay the first op, scribble on the payload, then replay the free.
	r := &replayer{a: a, live: newLiveMap(1)}
	require.NoError(t, r.step(tr.Ops[0]))
	b, _ := r.live.Get(0)
	a.Payload(b.ptr)[10] ^= 0xFF

	err := r.step(tr.Ops[1])
	var cerr *CheckError
	require.True(t, errors.As(err, &cerr))
	require.Contains(t, cerr.Msg, "overwritten at byte 10")
}

func TestReplay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newAllocator(t, 0)
	res, err := Replay(ctx, a, mustParse(t, shortTrace), nil)
	require.True(t, errors.Is(err, context.Canceled))
	require.Zero(t, res.Ops)
}

