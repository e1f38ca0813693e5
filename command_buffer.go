package stockroom

import (
	"github.com/TheBitDrifter/stockroom/internal/assert"
)

// FlushStats counts what a flush applied. Dropped edits are not counted.
type FlushStats struct {
	Killed  int
	Built   int
	Added   int
	Removed int
}

// Empty reports whether the flush changed nothing.
func (fs FlushStats) Empty() bool {
	return fs == FlushStats{}
}

// CommandBuffer records structural changes without touching the store, so it can be written
// while the store is being iterated. Flush applies everything at once.
//
// A buffer shares the id allocator of the store that created it; reserving ids from several
// buffers or from the store concurrently is safe. A single buffer is not safe for concurrent use.
type CommandBuffer struct {
	sto      *store
	created  []*EntityBuilder
	deleted  []Entity
	deleting map[Entity]struct{}
	adds     []editSet // per slot
	removes  []editSet // per slot
}

// editSet is a last-write-wins map that remembers first-insertion order.
type editSet struct {
	order  []Entity
	values map[Entity]any
}

func (es *editSet) put(e Entity, v any) {
	if es.values == nil {
		es.values = make(map[Entity]any)
	}
	if _, ok := es.values[e]; !ok {
		es.order = append(es.order, e)
	}
	es.values[e] = v
}

func (es *editSet) len() int {
	return len(es.order)
}

func (es *editSet) reset() {
	es.order = es.order[:0]
	clear(es.values)
}

func newCommandBuffer(s *store) *CommandBuffer {
	return &CommandBuffer{
		sto:      s,
		deleting: make(map[Entity]struct{}),
		adds:     make([]editSet, len(s.columns)),
		removes:  make([]editSet, len(s.columns)),
	}
}

// Entity reserves an id right away and schedules the entity's creation. fn fills the builder; it
// may be nil for an entity without components.
func (cb *CommandBuffer) Entity(fn func(Entity, *EntityBuilder)) Entity {
	e := cb.sto.alloc.reserve()
	b := newEntityBuilder(cb.sto, e)
	if fn != nil {
		fn(e, b)
	}
	cb.created = append(cb.created, b)
	return e
}

// Delete schedules e to be killed.
func (cb *CommandBuffer) Delete(e Entity) *CommandBuffer {
	if _, ok := cb.deleting[e]; !ok {
		cb.deleting[e] = struct{}{}
		cb.deleted = append(cb.deleted, e)
	}
	return cb
}

func (cb *CommandBuffer) enqueueAdd(slot uint32, e Entity, v any) *CommandBuffer {
	cb.adds[slot].put(e, v)
	return cb
}

func (cb *CommandBuffer) enqueueRemove(slot uint32, e Entity) *CommandBuffer {
	cb.removes[slot].put(e, nil)
	return cb
}

// Len returns the number of pending requests.
func (cb *CommandBuffer) Len() int {
	n := len(cb.created) + len(cb.deleted)
	for slot := range cb.adds {
		n += cb.adds[slot].len() + cb.removes[slot].len()
	}
	return n
}

// Flush applies pending requests to sto: kills, then builds, then component adds, then
// component removals. Edits that target an entity not alive at that point are dropped.
// The buffer is empty afterwards.
func (cb *CommandBuffer) Flush(sto Store) FlushStats {
	s := asStore(sto)
	assert.That(s.alloc == cb.sto.alloc, "command buffer flushed into a foreign store")

	var stats FlushStats
	for _, e := range cb.deleted {
		if s.Kill(e) {
			stats.Killed++
		}
	}
	for _, b := range cb.created {
		s.Build(b)
		stats.Built++
	}
	for slot := range cb.adds {
		edits := &cb.adds[slot]
		col := s.columns[slot]
		for _, e := range edits.order {
			if !s.alive.Contains(e.Index()) {
				continue
			}
			col.insertAny(e.Index(), edits.values[e])
			stats.Added++
		}
	}
	for slot := range cb.removes {
		col := s.columns[slot]
		for _, e := range cb.removes[slot].order {
			if !s.alive.Contains(e.Index()) {
				continue
			}
			if col.present().Contains(e.Index()) {
				col.drop(e.Index())
				stats.Removed++
			}
		}
	}
	cb.clear()

	if !stats.Empty() {
		Config.logger.Debug().
			Int("killed", stats.Killed).
			Int("built", stats.Built).
			Int("added", stats.Added).
			Int("removed", stats.Removed).
			Msg("command buffer flushed")
	}
	return stats
}

func (cb *CommandBuffer) clear() {
	clear(cb.created)
	cb.created = cb.created[:0]
	cb.deleted = cb.deleted[:0]
	clear(cb.deleting)
	for slot := range cb.adds {
		cb.adds[slot].reset()
		cb.removes[slot].reset()
	}
}
