package stockroom

import (
	"iter"

	"github.com/kelindar/bitmap"
)

var _ Mask = &PresenceIndex{}

// PresenceIndex is a two-level bitset recording which entity indices carry a component (or are
// alive at all). Layer 0 holds one bit per index; layer 1 holds one bit per non-empty layer 0
// word so iteration can skip empty 4096-index regions.
//
// The index itself does not enforce that component bits are only set for alive entities; the
// store does.
type PresenceIndex struct {
	layer0 bitmap.Bitmap
	layer1 bitmap.Bitmap
}

func newPresenceIndex(capacity int) *PresenceIndex {
	p := &PresenceIndex{}
	p.grow(capacity)
	return p
}

// grow pre-sizes both layers for indices below capacity.
func (p *PresenceIndex) grow(capacity int) {
	if capacity <= 0 {
		return
	}
	last := uint32(capacity - 1)
	p.layer0.Grow(last)
	p.layer1.Grow(last >> 6)
}

// Add sets the bit for index. Returns true if the bit was not set before.
func (p *PresenceIndex) Add(index uint32) bool {
	if p.layer0.Contains(index) {
		return false
	}
	p.layer0.Set(index)
	p.layer1.Set(index >> 6)
	return true
}

// Remove clears the bit for index. Returns true if the bit was set.
func (p *PresenceIndex) Remove(index uint32) bool {
	if !p.layer0.Contains(index) {
		return false
	}
	p.layer0.Remove(index)
	if p.layer0[index>>6] == 0 {
		p.layer1.Remove(index >> 6)
	}
	return true
}

// Contains reports whether the bit for index is set.
func (p *PresenceIndex) Contains(index uint32) bool {
	return p.layer0.Contains(index)
}

// Len returns the number of set bits.
func (p *PresenceIndex) Len() int {
	return p.layer0.Count()
}

// Entities yields every set index in ascending order.
func (p *PresenceIndex) Entities() iter.Seq[Entity] {
	return maskEntities(p)
}

// reset zeroes both layers while keeping their capacity.
func (p *PresenceIndex) reset() {
	clear(p.layer0)
	clear(p.layer1)
}

func (p *PresenceIndex) joinMask() Mask {
	return p
}

func (p *PresenceIndex) word(i int) uint64 {
	if i < len(p.layer0) {
		return p.layer0[i]
	}
	return 0
}

func (p *PresenceIndex) summary(i int) uint64 {
	if i < len(p.layer1) {
		return p.layer1[i]
	}
	return 0
}

func (p *PresenceIndex) span() int {
	return len(p.layer0)
}
