package stockroom

import (
	"testing"

	iter_util "github.com/TheBitDrifter/util/iter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceIndexAddRemove(t *testing.T) {
	t.Parallel()

	p := newPresenceIndex(0)
	assert.True(t, p.Add(5))
	assert.False(t, p.Add(5), "second add reports the bit was already set")
	assert.True(t, p.Contains(5))
	assert.Equal(t, 1, p.Len())

	assert.True(t, p.Remove(5))
	assert.False(t, p.Remove(5))
	assert.False(t, p.Contains(5))
	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Remove(100000), "removing beyond the allocated words is a no-op")
}

func TestPresenceIndexSummaryTracksWords(t *testing.T) {
	t.Parallel()

	p := newPresenceIndex(0)
	p.Add(64)
	p.Add(65)
	require.Equal(t, uint64(1<<1), p.summary(0))

	p.Remove(64)
	assert.Equal(t, uint64(1<<1), p.summary(0), "word 1 still has a bit")

	p.Remove(65)
	assert.Zero(t, p.summary(0), "summary bit cleared once the word is empty")
}

func TestPresenceIndexEntitiesAscending(t *testing.T) {
	t.Parallel()

	p := newPresenceIndex(16)
	for _, i := range []uint32{70000, 3, 4095, 4096, 0, 64, 63} {
		p.Add(i)
	}

	got := iter_util.Collect(p.Entities())
	assert.Equal(t, []Entity{0, 3, 63, 64, 4095, 4096, 70000}, got)
}

func TestPresenceIndexPresizingKeepsItEmpty(t *testing.T) {
	t.Parallel()

	p := newPresenceIndex(10000)
	assert.Equal(t, 0, p.Len())
	assert.Empty(t, iter_util.Collect(p.Entities()))
	assert.GreaterOrEqual(t, p.span(), 10000/64)
}

func TestPresenceIndexReset(t *testing.T) {
	t.Parallel()

	p := newPresenceIndex(0)
	p.Add(1)
	p.Add(1000)
	p.reset()

	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Contains(1000))
	assert.True(t, p.Add(1000))
}
