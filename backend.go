package stockroom

import (
	"github.com/google/btree"
)

// Backend is the payload storage for one component kind, keyed by entity index.
//
// A backend never decides presence on its own: the owning column keeps a PresenceIndex and only
// calls Get/GetMut/Remove for indices whose bit is set. Backends are free to assume so.
type Backend[T any] interface {
	// Insert stores v at index, replacing any previous value.
	Insert(index uint32, v T)
	// Remove takes the value at index out of the backend.
	Remove(index uint32) (T, bool)
	Get(index uint32) (*T, bool)
	GetMut(index uint32) (*T, bool)
	// Grow pre-sizes the backend for indices below capacity.
	Grow(capacity int)
	Clear()
}

// StorageKind selects the backend used for a component kind.
type StorageKind int

const (
	// DenseArray keeps one slot per entity index. Best for components most entities carry.
	DenseArray StorageKind = iota
	// HashMapping keeps values in a map keyed by index.
	HashMapping
	// OrderedMapping keeps values in a B-tree keyed by index.
	OrderedMapping
	// Packed keeps values contiguous with a sparse index-to-row table.
	Packed
	// Marker stores nothing; presence is the data.
	Marker
)

func (k StorageKind) String() string {
	switch k {
	case DenseArray:
		return "DenseArray"
	case HashMapping:
		return "HashMapping"
	case OrderedMapping:
		return "OrderedMapping"
	case Packed:
		return "Packed"
	case Marker:
		return "Marker"
	}
	return "StorageKind(?)"
}

func newBackend[T any](kind StorageKind, capacity int) Backend[T] {
	var b Backend[T]
	switch kind {
	case HashMapping:
		b = &hashBackend[T]{values: make(map[uint32]*T)}
	case OrderedMapping:
		b = newOrderedBackend[T]()
	case Packed:
		b = &packedBackend[T]{}
	case Marker:
		b = markerBackend[T]{}
	default:
		b = &denseBackend[T]{}
	}
	b.Grow(capacity)
	return b
}

type denseSlot[T any] struct {
	value T
	ok    bool
}

type denseBackend[T any] struct {
	slots []denseSlot[T]
}

func (d *denseBackend[T]) Insert(index uint32, v T) {
	if int(index) >= len(d.slots) {
		d.Grow(int(index) + 1)
	}
	d.slots[index] = denseSlot[T]{value: v, ok: true}
}

func (d *denseBackend[T]) Remove(index uint32) (T, bool) {
	var zero T
	if int(index) >= len(d.slots) || !d.slots[index].ok {
		return zero, false
	}
	v := d.slots[index].value
	d.slots[index] = denseSlot[T]{}
	return v, true
}

func (d *denseBackend[T]) Get(index uint32) (*T, bool) {
	if int(index) >= len(d.slots) || !d.slots[index].ok {
		return nil, false
	}
	return &d.slots[index].value, true
}

func (d *denseBackend[T]) GetMut(index uint32) (*T, bool) {
	return d.Get(index)
}

func (d *denseBackend[T]) Grow(capacity int) {
	if capacity <= len(d.slots) {
		return
	}
	if capacity <= cap(d.slots) {
		d.slots = d.slots[:capacity]
		return
	}
	// Double like append would, so index-by-index growth stays amortized.
	next := make([]denseSlot[T], capacity, max(capacity, 2*cap(d.slots)))
	copy(next, d.slots)
	d.slots = next
}

func (d *denseBackend[T]) Clear() {
	clear(d.slots)
}

type hashBackend[T any] struct {
	values map[uint32]*T
}

func (h *hashBackend[T]) Insert(index uint32, v T) {
	h.values[index] = &v
}

func (h *hashBackend[T]) Remove(index uint32) (T, bool) {
	p, ok := h.values[index]
	if !ok {
		var zero T
		return zero, false
	}
	delete(h.values, index)
	return *p, true
}

func (h *hashBackend[T]) Get(index uint32) (*T, bool) {
	p, ok := h.values[index]
	return p, ok
}

func (h *hashBackend[T]) GetMut(index uint32) (*T, bool) {
	return h.Get(index)
}

func (h *hashBackend[T]) Grow(int) {}

func (h *hashBackend[T]) Clear() {
	clear(h.values)
}

type orderedItem[T any] struct {
	index uint32
	value *T
}

type orderedBackend[T any] struct {
	tree *btree.BTreeG[orderedItem[T]]
}

const orderedDegree = 32

func newOrderedBackend[T any]() *orderedBackend[T] {
	return &orderedBackend[T]{
		tree: btree.NewG(orderedDegree, func(a, b orderedItem[T]) bool {
			return a.index < b.index
		}),
	}
}

func (o *orderedBackend[T]) Insert(index uint32, v T) {
	o.tree.ReplaceOrInsert(orderedItem[T]{index: index, value: &v})
}

func (o *orderedBackend[T]) Remove(index uint32) (T, bool) {
	item, ok := o.tree.Delete(orderedItem[T]{index: index})
	if !ok {
		var zero T
		return zero, false
	}
	return *item.value, true
}

func (o *orderedBackend[T]) Get(index uint32) (*T, bool) {
	item, ok := o.tree.Get(orderedItem[T]{index: index})
	if !ok {
		return nil, false
	}
	return item.value, true
}

func (o *orderedBackend[T]) GetMut(index uint32) (*T, bool) {
	return o.Get(index)
}

func (o *orderedBackend[T]) Grow(int) {}

func (o *orderedBackend[T]) Clear() {
	o.tree.Clear(false)
}

// Ascend visits stored values in index order until fn returns false.
func (o *orderedBackend[T]) Ascend(fn func(index uint32, v *T) bool) {
	o.tree.Ascend(func(item orderedItem[T]) bool {
		return fn(item.index, item.value)
	})
}

const packedEmpty = -1

type packedBackend[T any] struct {
	sparse  []int32 // entity index -> row in dense, packedEmpty when absent
	dense   []T
	indices []uint32 // row -> entity index
}

func (p *packedBackend[T]) row(index uint32) int32 {
	if int(index) >= len(p.sparse) {
		return packedEmpty
	}
	return p.sparse[index]
}

func (p *packedBackend[T]) Insert(index uint32, v T) {
	if r := p.row(index); r != packedEmpty {
		p.dense[r] = v
		return
	}
	if int(index) >= len(p.sparse) {
		p.growSparse(int(index) + 1)
	}
	p.sparse[index] = int32(len(p.dense))
	p.dense = append(p.dense, v)
	p.indices = append(p.indices, index)
}

// Remove swaps the last row into the hole.
func (p *packedBackend[T]) Remove(index uint32) (T, bool) {
	r := p.row(index)
	if r == packedEmpty {
		var zero T
		return zero, false
	}
	v := p.dense[r]
	last := int32(len(p.dense) - 1)
	if r != last {
		moved := p.indices[last]
		p.dense[r] = p.dense[last]
		p.indices[r] = moved
		p.sparse[moved] = r
	}
	var zero T
	p.dense[last] = zero
	p.dense = p.dense[:last]
	p.indices = p.indices[:last]
	p.sparse[index] = packedEmpty
	return v, true
}

func (p *packedBackend[T]) Get(index uint32) (*T, bool) {
	r := p.row(index)
	if r == packedEmpty {
		return nil, false
	}
	return &p.dense[r], true
}

func (p *packedBackend[T]) GetMut(index uint32) (*T, bool) {
	return p.Get(index)
}

func (p *packedBackend[T]) Grow(capacity int) {
	p.growSparse(capacity)
	if capacity > cap(p.dense) {
		dense := make([]T, len(p.dense), capacity)
		copy(dense, p.dense)
		p.dense = dense
		indices := make([]uint32, len(p.indices), capacity)
		copy(indices, p.indices)
		p.indices = indices
	}
}

func (p *packedBackend[T]) growSparse(capacity int) {
	if capacity <= len(p.sparse) {
		return
	}
	old := len(p.sparse)
	if capacity <= cap(p.sparse) {
		p.sparse = p.sparse[:capacity]
	} else {
		next := make([]int32, capacity, max(capacity, 2*cap(p.sparse)))
		copy(next, p.sparse)
		p.sparse = next
	}
	for i := old; i < capacity; i++ {
		p.sparse[i] = packedEmpty
	}
}

func (p *packedBackend[T]) Clear() {
	for i := range p.sparse {
		p.sparse[i] = packedEmpty
	}
	clear(p.dense)
	p.dense = p.dense[:0]
	p.indices = p.indices[:0]
}

// Len returns the number of packed rows.
func (p *packedBackend[T]) Len() int {
	return len(p.dense)
}

// markerBackend backs components without payload. Get hands out a fresh zero value, so writes
// through it are discarded.
type markerBackend[T any] struct{}

func (markerBackend[T]) Insert(uint32, T) {}

func (markerBackend[T]) Remove(uint32) (T, bool) {
	var zero T
	return zero, true
}

func (markerBackend[T]) Get(uint32) (*T, bool) {
	return new(T), true
}

func (m markerBackend[T]) GetMut(index uint32) (*T, bool) {
	return m.Get(index)
}

func (markerBackend[T]) Grow(int) {}

func (markerBackend[T]) Clear() {}

// flaggedBackend wraps a payload backend and records every write in a change set.
type flaggedBackend[T any] struct {
	inner   Backend[T]
	changed *PresenceIndex
}

func newFlaggedBackend[T any](inner Backend[T], capacity int) *flaggedBackend[T] {
	return &flaggedBackend[T]{inner: inner, changed: newPresenceIndex(capacity)}
}

func (f *flaggedBackend[T]) Insert(index uint32, v T) {
	f.changed.Add(index)
	f.inner.Insert(index, v)
}

func (f *flaggedBackend[T]) Remove(index uint32) (T, bool) {
	v, ok := f.inner.Remove(index)
	if ok {
		f.changed.Add(index)
	}
	return v, ok
}

func (f *flaggedBackend[T]) Get(index uint32) (*T, bool) {
	return f.inner.Get(index)
}

// GetMut counts as a write whether or not the caller changes anything.
func (f *flaggedBackend[T]) GetMut(index uint32) (*T, bool) {
	v, ok := f.inner.GetMut(index)
	if ok {
		f.changed.Add(index)
	}
	return v, ok
}

func (f *flaggedBackend[T]) Grow(capacity int) {
	f.inner.Grow(capacity)
}

func (f *flaggedBackend[T]) Clear() {
	f.inner.Clear()
	f.changed.reset()
}

// Changed is the set of indices written since the last resetChanged.
func (f *flaggedBackend[T]) Changed() *PresenceIndex {
	return f.changed
}

func (f *flaggedBackend[T]) resetChanged() {
	f.changed.reset()
}
