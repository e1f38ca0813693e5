package stockroom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackends(t *testing.T) {
	t.Parallel()

	for _, kind := range []StorageKind{DenseArray, HashMapping, OrderedMapping, Packed} {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			b := newBackend[Health](kind, 4)

			_, ok := b.Get(2)
			assert.False(t, ok)

			b.Insert(2, Health{Value: 20})
			b.Insert(100, Health{Value: 100})
			v, ok := b.Get(2)
			require.True(t, ok)
			assert.Equal(t, 20, v.Value)

			m, ok := b.GetMut(100)
			require.True(t, ok)
			m.Value++
			v, _ = b.Get(100)
			assert.Equal(t, 101, v.Value, "writes through GetMut are visible")

			b.Insert(2, Health{Value: 21})
			v, _ = b.Get(2)
			assert.Equal(t, 21, v.Value, "insert replaces")

			old, ok := b.Remove(2)
			assert.True(t, ok)
			assert.Equal(t, 21, old.Value)
			_, ok = b.Get(2)
			assert.False(t, ok)
			_, ok = b.Remove(2)
			assert.False(t, ok)

			b.Clear()
			_, ok = b.Get(100)
			assert.False(t, ok)
		})
	}
}

func TestMarkerBackendHasNoPayload(t *testing.T) {
	t.Parallel()

	b := newBackend[Frozen](Marker, 0)
	b.Insert(3, Frozen{})
	v, ok := b.Get(999)
	assert.True(t, ok)
	assert.Equal(t, Frozen{}, *v)
}

func TestPackedBackendSwapRemove(t *testing.T) {
	t.Parallel()

	b := &packedBackend[int]{}
	for i := range uint32(5) {
		b.Insert(i*10, int(i))
	}
	require.Equal(t, 5, b.Len())

	_, ok := b.Remove(10)
	require.True(t, ok)
	assert.Equal(t, 4, b.Len())

	// The last row (index 40) moved into the hole left by index 10.
	assert.Equal(t, []uint32{0, 40, 20, 30}, b.indices)
	for _, index := range []uint32{0, 20, 30, 40} {
		v, ok := b.Get(index)
		require.True(t, ok)
		assert.Equal(t, int(index/10), *v)
	}
}

func TestOrderedBackendAscends(t *testing.T) {
	t.Parallel()

	b := newOrderedBackend[string]()
	b.Insert(30, "c")
	b.Insert(10, "a")
	b.Insert(20, "b")

	var got []string
	b.Ascend(func(_ uint32, v *string) bool {
		got = append(got, *v)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestDenseBackendGrowKeepsValues(t *testing.T) {
	t.Parallel()

	b := &denseBackend[int]{}
	b.Insert(3, 7)
	b.Grow(1 << 12)
	v, ok := b.Get(3)
	require.True(t, ok)
	assert.Equal(t, 7, *v)
	_, ok = b.Get(4000)
	assert.False(t, ok, "pre-sized slots stay empty")
}

func TestFlaggedBackendRecordsWrites(t *testing.T) {
	t.Parallel()

	f := newFlaggedBackend[int](newBackend[int](HashMapping, 0), 0)
	f.Insert(1, 10)
	f.Insert(2, 20)
	f.resetChanged()

	_, _ = f.Get(1)
	assert.Equal(t, 0, f.Changed().Len(), "reads are not writes")

	_, _ = f.GetMut(2)
	assert.True(t, f.Changed().Contains(2))

	f.Remove(1)
	assert.True(t, f.Changed().Contains(1))
	assert.Equal(t, 2, f.Changed().Len())
}
