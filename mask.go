package stockroom

import (
	"iter"
	"math/bits"

	"github.com/TheBitDrifter/stockroom/internal/assert"
)

// Mask is a read-only view over a (possibly composed) bitset of entity indices.
// It is implemented by PresenceIndex and by the results of And, Or and Not.
type Mask interface {
	// word returns the i-th 64-bit word of layer 0.
	word(i int) uint64
	// summary returns the i-th word of layer 1. A clear summary bit guarantees the matching
	// layer 0 word is zero; a set one is only a hint.
	summary(i int) uint64
	// span is the number of layer 0 words that may be non-zero, or -1 when unbounded.
	span() int
}

// And returns the intersection of masks, built as a balanced binary tree.
// With no arguments it returns the empty mask.
func And(masks ...Mask) Mask {
	switch len(masks) {
	case 0:
		return emptyMask{}
	case 1:
		return masks[0]
	}
	mid := len(masks) / 2
	return andMask{left: And(masks[:mid]...), right: And(masks[mid:]...)}
}

// Or returns the union of masks, built as a balanced binary tree.
func Or(masks ...Mask) Mask {
	switch len(masks) {
	case 0:
		return emptyMask{}
	case 1:
		return masks[0]
	}
	mid := len(masks) / 2
	return orMask{left: Or(masks[:mid]...), right: Or(masks[mid:]...)}
}

// Not returns the complement of m. The result is unbounded and can only be iterated once it is
// intersected with a bounded mask.
func Not(m Mask) Mask {
	if n, ok := m.(notMask); ok {
		return n.inner
	}
	return notMask{inner: m}
}

type emptyMask struct{}

func (emptyMask) word(int) uint64    { return 0 }
func (emptyMask) summary(int) uint64 { return 0 }
func (emptyMask) span() int          { return 0 }

type andMask struct {
	left, right Mask
}

func (m andMask) word(i int) uint64 {
	return m.left.word(i) & m.right.word(i)
}

func (m andMask) summary(i int) uint64 {
	return m.left.summary(i) & m.right.summary(i)
}

func (m andMask) span() int {
	l, r := m.left.span(), m.right.span()
	switch {
	case l < 0:
		return r
	case r < 0:
		return l
	}
	return min(l, r)
}

type orMask struct {
	left, right Mask
}

func (m orMask) word(i int) uint64 {
	return m.left.word(i) | m.right.word(i)
}

func (m orMask) summary(i int) uint64 {
	return m.left.summary(i) | m.right.summary(i)
}

func (m orMask) span() int {
	l, r := m.left.span(), m.right.span()
	if l < 0 || r < 0 {
		return -1
	}
	return max(l, r)
}

type notMask struct {
	inner Mask
}

func (m notMask) word(i int) uint64 {
	return ^m.inner.word(i)
}

// Any word of a complement may be non-zero.
func (m notMask) summary(int) uint64 {
	return ^uint64(0)
}

func (m notMask) span() int {
	return -1
}

// maskContains reports whether index is set in m.
func maskContains(m Mask, index uint32) bool {
	return m.word(int(index>>6))&(1<<(index&63)) != 0
}

// maskCount counts the set bits of a bounded mask.
func maskCount(m Mask) int {
	it := newBitIter(m)
	n := 0
	for it.nextWord() {
		n += bits.OnesCount64(it.bits)
	}
	return n
}

func maskEntities(m Mask) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		it := newBitIter(m)
		for {
			index, ok := it.next()
			if !ok {
				return
			}
			if !yield(Entity(index)) {
				return
			}
		}
	}
}

// bitIter walks a bounded mask in ascending order, consulting layer 1 first so that empty
// 64-word regions are skipped without touching layer 0.
type bitIter struct {
	mask    Mask
	span    int
	outer   int    // current layer 1 word
	pending uint64 // layer 1 bits not yet visited in outer
	inner   int    // current layer 0 word
	bits    uint64 // layer 0 bits not yet yielded in inner
	done    bool
}

func newBitIter(m Mask) *bitIter {
	span := m.span()
	assert.That(span >= 0, "cannot iterate an unbounded mask, intersect it with a bounded one")
	return &bitIter{mask: m, span: span, outer: -1}
}

// nextWord advances to the next non-zero layer 0 word.
func (it *bitIter) nextWord() bool {
	for !it.done {
		for it.pending == 0 {
			it.outer++
			if it.outer<<6 >= it.span {
				it.done = true
				return false
			}
			it.pending = it.mask.summary(it.outer)
		}
		low := bits.TrailingZeros64(it.pending)
		it.pending &= it.pending - 1
		it.inner = it.outer<<6 | low
		if it.inner >= it.span {
			it.done = true
			return false
		}
		if w := it.mask.word(it.inner); w != 0 {
			it.bits = w
			return true
		}
	}
	return false
}

func (it *bitIter) next() (uint32, bool) {
	for it.bits == 0 {
		if !it.nextWord() {
			return 0, false
		}
	}
	low := bits.TrailingZeros64(it.bits)
	it.bits &= it.bits - 1
	return uint32(it.inner<<6 | low), true
}
