package stockroom

import (
	"reflect"

	"github.com/TheBitDrifter/stockroom/internal/assert"
	"github.com/TheBitDrifter/table"
	iter_util "github.com/TheBitDrifter/util/iter"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Component represents a kind of data that can be attached to entities.
// Components are created with FactoryNewComponent or FactoryNewMarker and registered with a store
// when the store is created.
type Component interface {
	table.ElementType
	key() reflect.Type
	newColumn(capacity int) column
}

// ComponentOption configures a payload component kind.
type ComponentOption[T any] func(*ComponentKind[T])

// WithFlagged records every write to the component so systems can ask what changed.
func WithFlagged[T any]() ComponentOption[T] {
	return func(c *ComponentKind[T]) {
		c.flagged = true
	}
}

// WithBackend replaces the built-in backend selected by the StorageKind.
func WithBackend[T any](fn func(capacity int) Backend[T]) ComponentOption[T] {
	return func(c *ComponentKind[T]) {
		c.backend = fn
	}
}

// ComponentKind is a payload-carrying component. Every distinct T is a distinct kind.
type ComponentKind[T any] struct {
	Component
	storage StorageKind
	flagged bool
	backend func(capacity int) Backend[T]
}

// MarkerKind is a component without payload. Presence is the data.
type MarkerKind[T any] struct {
	Component
}

// componentIdentity is the Component implementation shared by both kind flavors.
type componentIdentity[T any] struct {
	table.ElementType
	typ     reflect.Type
	factory func(capacity int) column
}

func (c componentIdentity[T]) key() reflect.Type {
	return c.typ
}

func (c componentIdentity[T]) newColumn(capacity int) column {
	return c.factory(capacity)
}

// Storage reports the backend kind the component was declared with.
func (c ComponentKind[T]) Storage() StorageKind {
	return c.storage
}

// Flagged reports whether writes to the component are tracked.
func (c ComponentKind[T]) Flagged() bool {
	return c.flagged
}

// Add attaches v to a live entity, replacing any previous value.
func (c ComponentKind[T]) Add(sto Store, e Entity, v T) Store {
	s := asStore(sto)
	s.assertAlive(e)
	col := columnOf[T](s, c)
	col.bits.Add(e.Index())
	col.backend.Insert(e.Index(), v)
	return sto
}

// Remove detaches the component from a live entity and returns the removed value.
func (c ComponentKind[T]) Remove(sto Store, e Entity) (T, bool) {
	s := asStore(sto)
	s.assertAlive(e)
	return columnOf[T](s, c).take(e.Index())
}

// Get returns the component of e, or false if e is dead or does not carry it.
func (c ComponentKind[T]) Get(sto Store, e Entity) (*T, bool) {
	s := asStore(sto)
	if !s.alive.Contains(e.Index()) {
		return nil, false
	}
	return columnOf[T](s, c).get(e.Index())
}

// GetMut is Get for callers that intend to write. Flagged kinds record the access as a change.
func (c ComponentKind[T]) GetMut(sto Store, e Entity) (*T, bool) {
	s := asStore(sto)
	if !s.alive.Contains(e.Index()) {
		return nil, false
	}
	return columnOf[T](s, c).getMut(e.Index())
}

// Has reports whether e is alive and carries the component.
func (c ComponentKind[T]) Has(sto Store, e Entity) bool {
	s := asStore(sto)
	return s.alive.Contains(e.Index()) && columnOf[T](s, c).bits.Contains(e.Index())
}

// Set stages v on the builder.
func (c ComponentKind[T]) Set(b *EntityBuilder, v T) *EntityBuilder {
	return b.set(b.sto.slotFor(c), v)
}

// Unset clears the builder's slot, so building removes the component.
func (c ComponentKind[T]) Unset(b *EntityBuilder) *EntityBuilder {
	return b.unset(b.sto.slotFor(c))
}

// EnqueueAdd schedules an add on the command buffer.
func (c ComponentKind[T]) EnqueueAdd(cb *CommandBuffer, e Entity, v T) *CommandBuffer {
	return cb.enqueueAdd(cb.sto.slotFor(c), e, v)
}

// EnqueueRemove schedules a removal on the command buffer.
func (c ComponentKind[T]) EnqueueRemove(cb *CommandBuffer, e Entity) *CommandBuffer {
	return cb.enqueueRemove(cb.sto.slotFor(c), e)
}

// Read returns a join participant with read access to the component.
func (c ComponentKind[T]) Read(sto Store) ReadStorage[T] {
	return ReadStorage[T]{col: columnOf[T](asStore(sto), c)}
}

// Write returns a join participant with write access to the component.
func (c ComponentKind[T]) Write(sto Store) WriteStorage[T] {
	return WriteStorage[T]{col: columnOf[T](asStore(sto), c)}
}

// Opt returns an accessor probed per entity. It does not restrict a join.
func (c ComponentKind[T]) Opt(sto Store) OptStorage[T] {
	return OptStorage[T]{col: columnOf[T](asStore(sto), c)}
}

// Not returns a join participant matching entities without the component.
func (c ComponentKind[T]) Not(sto Store) NotStorage {
	return NotStorage{bits: columnOf[T](asStore(sto), c).bits}
}

// GetFromCursor returns the component of the entity under the cursor.
func (c ComponentKind[T]) GetFromCursor(cursor *Cursor) *T {
	v, ok := c.Get(cursor.store, cursor.current)
	assert.That(ok, "%v has no %s", cursor.current, c.key())
	return v
}

// GetFromCursorSafe is GetFromCursor that reports absence instead of failing.
func (c ComponentKind[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	v, ok := c.Get(cursor.store, cursor.current)
	return ok, v
}

// Changed reports whether the component of e was written since the last ResetChanged.
// The kind must be flagged.
func (c ComponentKind[T]) Changed(sto Store, e Entity) bool {
	return c.changes(sto).Contains(e.Index())
}

// ChangedSet returns the written indices as a join participant. The kind must be flagged.
func (c ComponentKind[T]) ChangedSet(sto Store) *PresenceIndex {
	return c.changes(sto)
}

// ResetChanged forgets every recorded write. The kind must be flagged.
func (c ComponentKind[T]) ResetChanged(sto Store) {
	col := columnOf[T](asStore(sto), c)
	assert.That(col.flags != nil, "%s is not flagged", col.label)
	col.flags.resetChanged()
}

func (c ComponentKind[T]) changes(sto Store) *PresenceIndex {
	col := columnOf[T](asStore(sto), c)
	assert.That(col.flags != nil, "%s is not flagged", col.label)
	return col.flags.Changed()
}

// Has reports whether e is alive and carries the marker.
func (m MarkerKind[T]) Has(sto Store, e Entity) bool {
	s := asStore(sto)
	return s.alive.Contains(e.Index()) && columnOf[T](s, m).bits.Contains(e.Index())
}

// Add marks a live entity. Returns false if it was already marked.
func (m MarkerKind[T]) Add(sto Store, e Entity) bool {
	s := asStore(sto)
	s.assertAlive(e)
	return columnOf[T](s, m).bits.Add(e.Index())
}

// Remove unmarks a live entity. Returns false if it was not marked.
func (m MarkerKind[T]) Remove(sto Store, e Entity) bool {
	s := asStore(sto)
	s.assertAlive(e)
	return columnOf[T](s, m).bits.Remove(e.Index())
}

func (m MarkerKind[T]) Set(b *EntityBuilder) *EntityBuilder {
	var zero T
	return b.set(b.sto.slotFor(m), zero)
}

func (m MarkerKind[T]) Unset(b *EntityBuilder) *EntityBuilder {
	return b.unset(b.sto.slotFor(m))
}

func (m MarkerKind[T]) EnqueueAdd(cb *CommandBuffer, e Entity) *CommandBuffer {
	var zero T
	return cb.enqueueAdd(cb.sto.slotFor(m), e, zero)
}

func (m MarkerKind[T]) EnqueueRemove(cb *CommandBuffer, e Entity) *CommandBuffer {
	return cb.enqueueRemove(cb.sto.slotFor(m), e)
}

// Read returns a join participant matching marked entities.
func (m MarkerKind[T]) Read(sto Store) MarkerStorage {
	return MarkerStorage{bits: columnOf[T](asStore(sto), m).bits}
}

// Not returns a join participant matching unmarked entities.
func (m MarkerKind[T]) Not(sto Store) NotStorage {
	return NotStorage{bits: columnOf[T](asStore(sto), m).bits}
}

// column is the type-erased face of a typedColumn, used by the store for whole-entity work.
type column interface {
	name() string
	present() *PresenceIndex
	insertAny(index uint32, v any)
	drop(index uint32)
	kill(index uint32)
	grow(capacity int)
	clear()
	snapshot() (json.RawMessage, error)
	decode(raw json.RawMessage, alive map[uint32]struct{}) (func(), error)
}

type typedColumn[T any] struct {
	label   string
	marker  bool
	bits    *PresenceIndex
	backend Backend[T]
	flags   *flaggedBackend[T]
}

var _ column = &typedColumn[int]{}

func newTypedColumn[T any](label string, backend Backend[T], marker, flagged bool, capacity int) *typedColumn[T] {
	col := &typedColumn[T]{
		label:   label,
		marker:  marker,
		bits:    newPresenceIndex(capacity),
		backend: backend,
	}
	if flagged {
		col.flags = newFlaggedBackend(backend, capacity)
		col.backend = col.flags
	}
	return col
}

func (col *typedColumn[T]) name() string {
	return col.label
}

func (col *typedColumn[T]) present() *PresenceIndex {
	return col.bits
}

func (col *typedColumn[T]) get(index uint32) (*T, bool) {
	if !col.bits.Contains(index) {
		return nil, false
	}
	return col.backend.Get(index)
}

func (col *typedColumn[T]) getMut(index uint32) (*T, bool) {
	if !col.bits.Contains(index) {
		return nil, false
	}
	return col.backend.GetMut(index)
}

func (col *typedColumn[T]) take(index uint32) (T, bool) {
	if !col.bits.Remove(index) {
		var zero T
		return zero, false
	}
	return col.backend.Remove(index)
}

func (col *typedColumn[T]) insertAny(index uint32, v any) {
	col.bits.Add(index)
	col.backend.Insert(index, v.(T))
}

func (col *typedColumn[T]) drop(index uint32) {
	col.take(index)
}

// kill drops the component of a dead index and forgets that it was written, so the next owner
// of the index starts unchanged.
func (col *typedColumn[T]) kill(index uint32) {
	col.take(index)
	if col.flags != nil {
		col.flags.changed.Remove(index)
	}
}

func (col *typedColumn[T]) grow(capacity int) {
	col.bits.grow(capacity)
	col.backend.Grow(capacity)
}

func (col *typedColumn[T]) clear() {
	col.bits.reset()
	col.backend.Clear()
}

type snapshotRow[T any] struct {
	Entity uint32 `json:"entity"`
	Value  T      `json:"value"`
}

// snapshot encodes a marker column as its index list and a payload column as entity/value rows.
func (col *typedColumn[T]) snapshot() (json.RawMessage, error) {
	if col.marker {
		return json.Marshal(iter_util.Collect(col.bits.Entities()))
	}
	rows := make([]snapshotRow[T], 0, col.bits.Len())
	for e := range col.bits.Entities() {
		v, ok := col.backend.Get(e.Index())
		assert.That(ok, "%s: presence bit without payload at %v", col.label, e)
		rows = append(rows, snapshotRow[T]{Entity: e.Index(), Value: *v})
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to encode column %s", col.label)
	}
	return raw, nil
}

// decode parses a column snapshot without touching the column. Every entity must be in alive.
// The returned func replaces the column's contents.
func (col *typedColumn[T]) decode(raw json.RawMessage, alive map[uint32]struct{}) (func(), error) {
	if col.marker {
		var marked []Entity
		if err := json.Unmarshal(raw, &marked); err != nil {
			return nil, eris.Wrapf(err, "failed to decode column %s", col.label)
		}
		for _, e := range marked {
			if _, ok := alive[e.Index()]; !ok {
				return nil, eris.Wrapf(ErrCorruptSnapshot, "column %s marks dead %v", col.label, e)
			}
		}
		return func() {
			col.clear()
			for _, e := range marked {
				col.bits.Add(e.Index())
			}
		}, nil
	}

	var rows []snapshotRow[T]
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, eris.Wrapf(err, "failed to decode column %s", col.label)
	}
	for _, row := range rows {
		if _, ok := alive[row.Entity]; !ok {
			return nil, eris.Wrapf(ErrCorruptSnapshot, "column %s has a row for dead %v", col.label, Entity(row.Entity))
		}
	}
	return func() {
		col.clear()
		for _, row := range rows {
			col.bits.Add(row.Entity)
			col.backend.Insert(row.Entity, row.Value)
		}
		if col.flags != nil {
			col.flags.resetChanged()
		}
	}, nil
}

// columnOf resolves the typed column of c in s.
func columnOf[T any](s *store, c Component) *typedColumn[T] {
	col := s.columns[s.slotFor(c)]
	typed, ok := col.(*typedColumn[T])
	assert.That(ok, "column %s does not hold %T", col.name(), *new(T))
	return typed
}
