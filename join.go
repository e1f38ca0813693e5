package stockroom

import (
	"iter"

	"github.com/TheBitDrifter/stockroom/internal/assert"
)

// Joinable is anything that can restrict a join: a presence index or a storage view.
type Joinable interface {
	joinMask() Mask
}

// JoinIter is the intersection of its participants. The masks are combined before any backend is
// read, so every index it yields is present in each participant.
type JoinIter struct {
	mask Mask
}

// Join intersects parts. At least one part must be bounded (not a NotStorage).
func Join(parts ...Joinable) *JoinIter {
	masks := make([]Mask, len(parts))
	for i, part := range parts {
		masks[i] = part.joinMask()
	}
	return &JoinIter{mask: And(masks...)}
}

// Entities yields matching entities in ascending index order. Each call starts over. The
// participant masks are intersected before the first entity is produced, so At on any
// participating view is safe for every yielded entity.
func (j *JoinIter) Entities() iter.Seq[Entity] {
	return maskEntities(j.mask)
}

// Contains reports whether e matches every participant.
func (j *JoinIter) Contains(e Entity) bool {
	return maskContains(j.mask, e.Index())
}

// Count returns the number of matching entities.
func (j *JoinIter) Count() int {
	return maskCount(j.mask)
}

func (j *JoinIter) joinMask() Mask {
	return j.mask
}

// ReadStorage gives read access to one component inside a join.
type ReadStorage[T any] struct {
	col *typedColumn[T]
}

// At returns the component of e, which must be present. The value must not be written through.
func (r ReadStorage[T]) At(e Entity) *T {
	v, ok := r.col.get(e.Index())
	assert.That(ok, "%v has no %s", e, r.col.label)
	return v
}

// Get is At without the presence requirement.
func (r ReadStorage[T]) Get(e Entity) (*T, bool) {
	return r.col.get(e.Index())
}

func (r ReadStorage[T]) joinMask() Mask {
	return r.col.bits
}

// WriteStorage gives write access to one component inside a join.
type WriteStorage[T any] struct {
	col *typedColumn[T]
}

// At returns the component of e for writing. e must carry the component.
func (w WriteStorage[T]) At(e Entity) *T {
	v, ok := w.col.getMut(e.Index())
	assert.That(ok, "%v has no %s", e, w.col.label)
	return v
}

func (w WriteStorage[T]) Get(e Entity) (*T, bool) {
	return w.col.getMut(e.Index())
}

func (w WriteStorage[T]) joinMask() Mask {
	return w.col.bits
}

// OptStorage is probed per entity and never restricts a join.
type OptStorage[T any] struct {
	col *typedColumn[T]
}

func (o OptStorage[T]) At(e Entity) (*T, bool) {
	return o.col.get(e.Index())
}

// MarkerStorage restricts a join to entities carrying a marker.
type MarkerStorage struct {
	bits *PresenceIndex
}

func (m MarkerStorage) Has(e Entity) bool {
	return m.bits.Contains(e.Index())
}

func (m MarkerStorage) joinMask() Mask {
	return m.bits
}

// NotStorage restricts a join to entities without a component.
type NotStorage struct {
	bits *PresenceIndex
}

func (n NotStorage) joinMask() Mask {
	return Not(n.bits)
}
