package stockroom

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/TheBitDrifter/stockroom/internal/assert"
)

// Entity is an opaque index shared by every component storage of a store.
// Two entities are equal iff their indices are equal; a recycled index is
// indistinguishable from its previous owner.
type Entity uint32

// MaxEntityIndex is the highest index the allocator hands out.
const MaxEntityIndex = math.MaxUint32 - 1

// NewEntity wraps a raw index.
func NewEntity(index uint32) Entity {
	return Entity(index)
}

// Index returns the raw index of the entity.
func (e Entity) Index() uint32 {
	return uint32(e)
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d)", uint32(e))
}

// allocator hands out entity indices. It is shared by pointer between a store and every
// command buffer created from it, so reservations from either side never collide.
type allocator struct {
	next atomic.Uint32 // High-water mark: the next never-allocated index
	mu   sync.Mutex
	free []uint32 // FIFO of killed indices waiting for reuse
}

func newAllocator() *allocator {
	return &allocator{free: make([]uint32, 0)}
}

// reserve returns the oldest recycled index if there is one, else a fresh index.
func (a *allocator) reserve() Entity {
	a.mu.Lock()
	if len(a.free) > 0 {
		id := a.free[0]
		a.free = a.free[1:]
		a.mu.Unlock()
		return Entity(id)
	}
	a.mu.Unlock()

	id := a.next.Add(1) - 1
	assert.That(id <= MaxEntityIndex, "entity index space exhausted")
	return Entity(id)
}

// recycle queues a killed index for reuse.
func (a *allocator) recycle(index uint32) {
	assert.That(index < a.next.Load(), "recycled index %d was never allocated", index)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, index)
}

// release takes index off the recycling queue because it became alive again without being
// reserved. It reports whether the index was queued.
func (a *allocator) release(index uint32) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, id := range a.free {
		if id == index {
			a.free = append(a.free[:i], a.free[i+1:]...)
			return true
		}
	}
	return false
}

// highWater returns the number of indices ever handed out by the counter.
func (a *allocator) highWater() uint32 {
	return a.next.Load()
}

// freed returns a copy of the recycling queue in pop order.
func (a *allocator) freed() []uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]uint32, len(a.free))
	copy(out, a.free)
	return out
}

// restore replaces the allocator state, used when loading a snapshot.
func (a *allocator) restore(next uint32, free []uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next.Store(next)
	a.free = append(a.free[:0], free...)
}
