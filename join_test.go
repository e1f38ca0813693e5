package stockroom

import (
	"math/rand"
	"testing"

	iter_util "github.com/TheBitDrifter/util/iter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinMatchesPerEntityCheck(t *testing.T) {
	t.Parallel()

	sto, k := newTestStore(t)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		b := sto.Reserve()
		if rng.Intn(2) == 0 {
			k.position.Set(b, Position{X: float64(i)})
		}
		if rng.Intn(3) == 0 {
			k.velocity.Set(b, Velocity{X: 1})
		}
		if rng.Intn(4) == 0 {
			k.frozen.Set(b)
		}
		sto.Build(b)
	}
	for i := uint32(0); i < 300; i += 7 {
		sto.Kill(NewEntity(i))
	}

	join := sto.Join(k.position.Read(sto), k.velocity.Read(sto), k.frozen.Not(sto))
	var want []Entity
	for e := range sto.Entities() {
		if k.position.Has(sto, e) && k.velocity.Has(sto, e) && !k.frozen.Has(sto, e) {
			want = append(want, e)
		}
	}
	got := iter_util.Collect(join.Entities())
	assert.Equal(t, want, got)
	assert.Equal(t, len(want), join.Count())
	for _, e := range got {
		assert.True(t, join.Contains(e))
	}
}

func TestJoinViews(t *testing.T) {
	t.Parallel()

	sto, k := newTestStore(t)
	b := sto.Reserve()
	k.position.Set(b, Position{X: 1})
	k.velocity.Set(b, Velocity{X: 2})
	moving := sto.Build(b)
	still := sto.Build(k.position.Set(sto.Reserve(), Position{X: 5}))

	pos, vel := k.position.Write(sto), k.velocity.Opt(sto)
	for e := range sto.Join(pos).Entities() {
		if v, ok := vel.At(e); ok {
			pos.At(e).X += v.X
		}
	}

	p, _ := k.position.Get(sto, moving)
	assert.Equal(t, 3.0, p.X)
	p, _ = k.position.Get(sto, still)
	assert.Equal(t, 5.0, p.X)

	read := k.velocity.Read(sto)
	assert.Panics(t, func() { read.At(still) })
	_, ok := read.Get(still)
	assert.False(t, ok)
}

func TestJoinWithMarker(t *testing.T) {
	t.Parallel()

	sto, k := newTestStore(t)
	a := sto.Build(k.frozen.Set(sto.Reserve()))
	sto.Build(sto.Reserve())

	frozen := k.frozen.Read(sto)
	assert.True(t, frozen.Has(a))
	assert.Equal(t, []Entity{a}, iter_util.Collect(sto.Join(frozen).Entities()))
}

func TestStoreJoinRestrictsToAlive(t *testing.T) {
	t.Parallel()

	sto, k := newTestStore(t)
	e := sto.Build(sto.Reserve())
	other := sto.Build(sto.Reserve())
	require.True(t, sto.Kill(e))

	// Only negations: the alive set bounds the iteration.
	all := sto.Join(k.position.Not(sto))
	assert.Equal(t, []Entity{other}, iter_util.Collect(all.Entities()))

	assert.Panics(t, func() {
		for range Join(k.position.Not(sto)).Entities() {
		}
	}, "a join of negations alone is unbounded")
}

func TestJoinIsRestartable(t *testing.T) {
	t.Parallel()

	sto, k := newTestStore(t)
	for i := 0; i < 3; i++ {
		sto.Build(k.position.Set(sto.Reserve(), Position{}))
	}
	join := sto.Join(k.position.Read(sto))
	first := iter_util.Collect(join.Entities())
	second := iter_util.Collect(join.Entities())
	assert.Len(t, first, 3)
	assert.Equal(t, first, second)

	nested := sto.Join(join, k.velocity.Not(sto))
	assert.Equal(t, 3, nested.Count())
}
