package stockroom

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/stockroom/internal/assert"
)

// EntityBuilder stages the complete component set of one entity. It is filled through the
// component kinds' Set and Unset methods and consumed by Store.Build or a command buffer flush.
type EntityBuilder struct {
	sto      *store
	entity   Entity
	values   []any // one slot per column
	present  mask.Mask
	consumed bool
}

func newEntityBuilder(s *store, e Entity) *EntityBuilder {
	return &EntityBuilder{
		sto:    s,
		entity: e,
		values: make([]any, len(s.columns)),
	}
}

// Entity returns the id the builder will materialize.
func (b *EntityBuilder) Entity() Entity {
	return b.entity
}

// Has reports whether the builder holds a value for c.
func (b *EntityBuilder) Has(c Component) bool {
	slot, ok := b.sto.lookup(c)
	return ok && b.hasSlot(slot)
}

func (b *EntityBuilder) hasSlot(slot uint32) bool {
	return hasBit(b.present, slot)
}

func (b *EntityBuilder) set(slot uint32, v any) *EntityBuilder {
	assert.That(!b.consumed, "builder for %v was already built", b.entity)
	b.values[slot] = v
	b.present.Mark(slot)
	return b
}

func (b *EntityBuilder) unset(slot uint32) *EntityBuilder {
	assert.That(!b.consumed, "builder for %v was already built", b.entity)
	b.values[slot] = nil
	b.present.Unmark(slot)
	return b
}

func hasBit(m mask.Mask, bit uint32) bool {
	var want mask.Mask
	want.Mark(bit)
	return m.ContainsAll(want)
}
