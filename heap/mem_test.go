package heap

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

var (
	_ Store = (*Mem)(nil)
	_ Store = (*File)(nil)
)

func TestMem_GrowIsContiguous(t *testing.T) {
	m := NewMem(64)

	base, err := m.Grow(16)
	require.NoError(t, err)
	require.Equal(t, 0, base)

	base, err = m.Grow(32)
	require.NoError(t, err)
	require.Equal(t, 16, base, "second region must start where the first ended")
	require.Len(t, m.Bytes(), 48)
}

func TestMem_GrowPastLimitLeavesArenaUntouched(t *testing.T) {
	m := NewMem(32)
	_, err := m.Grow(24)
	require.NoError(t, err)

	base, err := m.Grow(16)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrExhausted))
	require.Equal(t, -1, base)
	require.Len(t, m.Bytes(), 24)
}

func TestMem_ArenaDoesNotMove(t *testing.T) {
	m := NewMem(1024)
	_, err := m.Grow(8)
	require.NoError(t, err)
	first := m.Bytes()
	first[0] = 0xAB

	_, err = m.Grow(512)
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), m.Bytes()[0])
	require.Same(t, &first[0], &m.Bytes()[0])
}

func TestMem_NegativeGrowRejected(t *testing.T) {
	m := NewMem(32)
	_, err := m.Grow(-8)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrExhausted))
}

func TestMem_DefaultLimitAndReset(t *testing.T) {
	m := NewMem(0)
	require.Equal(t, DefaultMemLimit, m.Limit())

	_, err := m.Grow(4096)
	require.NoError(t, err)
	m.Reset()
	require.Empty(t, m.Bytes())

	base, err := m.Grow(8)
	require.NoError(t, err)
	require.Equal(t, 0, base)
}
