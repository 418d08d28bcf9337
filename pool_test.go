package tablefsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type block32 struct {
	Block
	Payload [32]byte
	Seq     int
}

func TestPool_ReusesZeroedBlocks(t *testing.T) {
	pool := NewPool[block32]("b32", 2)

	first, err := pool.Allocate()
	require.NoError(t, err)
	first.Seq = 7
	first.Payload[0] = 0xAA
	first.Release()

	again, err := pool.Allocate()
	require.NoError(t, err)
	assert.Same(t, first, again, "released block is handed out again")
	assert.Zero(t, again.Seq)
	assert.Zero(t, again.Payload[0])

	stats := pool.Stats()
	assert.Equal(t, 1, stats.BlockCount)
	assert.Equal(t, 1, stats.BlocksInUse)
	assert.Equal(t, 2, stats.Allocations)
	assert.Equal(t, 1, stats.Deallocations)
}

func TestPool_Exhausted(t *testing.T) {
	pool := NewPool[block32]("b32", 2)

	a, err := pool.Allocate()
	require.NoError(t, err)
	_, err = pool.Allocate()
	require.NoError(t, err)

	_, err = pool.Allocate()
	assert.ErrorIs(t, err, ErrPoolExhausted)

	a.Release()
	_, err = pool.Allocate()
	assert.NoError(t, err, "a freed block can be allocated again")
	assert.Equal(t, 2, pool.Stats().BlockCount)
}

func TestPool_DoubleReleasePanics(t *testing.T) {
	pool := NewPool[block32]("b32", 0)
	b, err := pool.Allocate()
	require.NoError(t, err)

	b.Release()
	assert.PanicsWithError(t, "block released twice: pool b32", func() { b.Release() })
}

func TestBlock_ReleaseWithoutPool(t *testing.T) {
	b := &block32{}
	assert.NotPanics(t, func() {
		b.Release()
		b.Release()
	})
}
