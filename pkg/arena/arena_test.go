package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocRoundsAndAdvances(t *testing.T) {
	a, err := New(4096)
	require.NoError(t, err)
	defer a.Destroy()

	b, ok := a.Alloc(3)
	require.True(t, ok)
	assert.Len(t, b, 3)
	assert.Equal(t, 8, a.Used(), "allocation should round up to the 8-byte alignment")

	c, ok := a.Alloc(8)
	require.True(t, ok)
	assert.Len(t, c, 8)
	assert.Equal(t, 16, a.Used())
}

func TestAllocRejectsOverflowWithoutPanic(t *testing.T) {
	a, err := New(64)
	require.NoError(t, err)
	defer a.Destroy()

	_, ok := a.Alloc(1000)
	assert.False(t, ok)
	assert.Equal(t, 0, a.Used(), "failed allocation must not move the used pointer")
}

func TestResetZeroesAndRewinds(t *testing.T) {
	a, err := New(4096)
	require.NoError(t, err)
	defer a.Destroy()

	b, ok := a.Alloc(32)
	require.True(t, ok)
	for i := range b {
		b[i] = 0xAA
	}

	a.Reset()
	assert.Equal(t, 0, a.Used())
	assert.Equal(t, 32, a.Peak(), "peak survives reset")

	b2, ok := a.Alloc(32)
	require.True(t, ok)
	for _, v := range b2 {
		assert.Equal(t, byte(0), v, "reset must zero previously occupied bytes")
	}
}

func TestSnapshotRestore(t *testing.T) {
	a, err := New(4096)
	require.NoError(t, err)
	defer a.Destroy()

	_, ok := a.Alloc(64)
	require.True(t, ok)
	snap := a.Snapshot()

	_, ok = a.Alloc(128)
	require.True(t, ok)
	assert.Equal(t, 192, a.Used())

	a.Restore(snap)
	assert.Equal(t, 64, a.Used())
}

func TestDestroyIsIdempotentAndWrapIsNoop(t *testing.T) {
	a, err := New(64)
	require.NoError(t, err)
	require.NoError(t, a.Destroy())
	require.NoError(t, a.Destroy())

	w := Wrap(make([]byte, 64))
	require.NoError(t, w.Destroy())
	assert.Equal(t, 64, w.Cap())
}
