package stockroom

import (
	"iter"
	"reflect"

	"github.com/TheBitDrifter/stockroom/internal/assert"
	"github.com/TheBitDrifter/table"
)

var _ Store = &store{}

// maxComponentKinds is the number of component slots a store can address. Slots are bits of a
// mask.Mask signature.
const maxComponentKinds = 63

type store struct {
	schema   table.Schema
	columns  []column // indexed by schema row; unregistered rows are nil
	slots    map[reflect.Type]uint32
	kinds    []Component
	names    Cache[uint32]
	alive    *PresenceIndex
	alloc    *allocator
	capacity int
}

func newStore(capacity int, components ...Component) (*store, error) {
	s := &store{
		schema:   table.Factory.NewSchema(),
		slots:    make(map[reflect.Type]uint32, len(components)),
		names:    FactoryNewCache[uint32](maxComponentKinds),
		alive:    newPresenceIndex(capacity),
		alloc:    newAllocator(),
		capacity: capacity,
	}
	for _, c := range components {
		if err := s.register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *store) register(c Component) error {
	typ := c.key()
	if _, ok := s.slots[typ]; ok {
		return ComponentRegistrationError{Name: typ.String(), Reason: "registered twice"}
	}
	if len(s.kinds) >= maxComponentKinds {
		return ComponentRegistrationError{Name: typ.String(), Reason: "too many component kinds"}
	}
	s.schema.Register(c)
	slot := s.schema.RowIndexFor(c)
	if slot >= maxComponentKinds {
		return ComponentRegistrationError{Name: typ.String(), Reason: "schema row exceeds the component mask"}
	}
	if _, err := s.names.Register(typ.String(), slot); err != nil {
		return ComponentRegistrationError{Name: typ.String(), Reason: err.Error()}
	}
	for int(slot) >= len(s.columns) {
		s.columns = append(s.columns, nil)
	}
	s.columns[slot] = c.newColumn(s.capacity)
	s.slots[typ] = slot
	s.kinds = append(s.kinds, c)
	return nil
}

// asStore unwraps the Store implementation.
func asStore(sto Store) *store {
	s, ok := sto.(*store)
	assert.That(ok, "unsupported store implementation %T", sto)
	return s
}

func (s *store) lookup(c Component) (uint32, bool) {
	slot, ok := s.slots[c.key()]
	return slot, ok
}

func (s *store) slotFor(c Component) uint32 {
	slot, ok := s.lookup(c)
	assert.That(ok, "component %s is not registered with this store", c.key())
	return slot
}

func (s *store) assertAlive(e Entity) {
	assert.That(s.alive.Contains(e.Index()), "%v is not alive", e)
}

func (s *store) RowIndexFor(c Component) uint32 {
	return s.slotFor(c)
}

func (s *store) Components() []Component {
	out := make([]Component, len(s.kinds))
	copy(out, s.kinds)
	return out
}

func (s *store) Next() Entity {
	return s.alloc.reserve()
}

func (s *store) NewBuilder(e Entity) *EntityBuilder {
	return newEntityBuilder(s, e)
}

func (s *store) Reserve() *EntityBuilder {
	return newEntityBuilder(s, s.Next())
}

// Build makes the builder's entity alive with exactly the builder's component set. Components
// the entity carried before and the builder leaves unset are removed.
func (s *store) Build(b *EntityBuilder) Entity {
	assert.That(b.sto == s, "builder for %v belongs to another store", b.entity)
	assert.That(!b.consumed, "builder for %v was already built", b.entity)
	index := b.entity.Index()
	assert.That(index < s.alloc.highWater(), "%v was never allocated", b.entity)

	if s.alive.Add(index) {
		s.alloc.release(index)
	}
	for slot, col := range s.columns {
		if col == nil {
			continue
		}
		if b.hasSlot(uint32(slot)) {
			col.insertAny(index, b.values[slot])
			continue
		}
		col.drop(index)
	}
	b.consumed = true
	b.values = nil
	return b.entity
}

func (s *store) Kill(e Entity) bool {
	index := e.Index()
	if !s.alive.Remove(index) {
		return false
	}
	for _, col := range s.columns {
		if col != nil {
			col.kill(index)
		}
	}
	s.alloc.recycle(index)
	return true
}

// Reset marks a reserved or alive entity alive with no components.
func (s *store) Reset(e Entity) {
	index := e.Index()
	assert.That(index < s.alloc.highWater(), "%v was never allocated", e)
	if s.alive.Add(index) {
		s.alloc.release(index)
	}
	for _, col := range s.columns {
		if col != nil {
			col.drop(index)
		}
	}
}

func (s *store) Alive(e Entity) bool {
	return s.alive.Contains(e.Index())
}

func (s *store) AliveSet() *PresenceIndex {
	return s.alive
}

func (s *store) Len() int {
	return s.alive.Len()
}

func (s *store) Entities() iter.Seq[Entity] {
	return s.alive.Entities()
}

// Join restricts parts to alive entities.
func (s *store) Join(parts ...Joinable) *JoinIter {
	all := make([]Joinable, 0, len(parts)+1)
	all = append(all, s.alive)
	all = append(all, parts...)
	return Join(all...)
}

func (s *store) NewCommandBuffer() *CommandBuffer {
	return newCommandBuffer(s)
}

// Grow pre-sizes the alive set and every column for capacity entities.
func (s *store) Grow(capacity int) {
	if capacity <= s.capacity {
		return
	}
	s.capacity = capacity
	s.alive.grow(capacity)
	for _, col := range s.columns {
		if col != nil {
			col.grow(capacity)
		}
	}
}
