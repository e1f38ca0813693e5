package stockroom

import (
	"iter"
)

var _ iCursor = &Cursor{}

func newCursor(query QueryNode, sto Store) *Cursor {
	return &Cursor{
		query: query,
		store: sto,
	}
}

// Next advances to the next matching entity. It returns false, and resets the cursor, once the
// matches are exhausted.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	index, ok := c.iter.next()
	if !ok {
		c.Reset()
		return false
	}
	c.current = Entity(index)
	c.visited++
	return true
}

// Entities yields every matching entity, leaving the cursor positioned on it so component
// accessors such as GetFromCursor work inside the loop.
func (c *Cursor) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		c.Reset()
		for c.Next() {
			if !yield(c.current) {
				c.Reset()
				return
			}
		}
	}
}

// Entity returns the entity the cursor is positioned on.
func (c *Cursor) Entity() Entity {
	return c.current
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.matched = And(asStore(c.store).alive, c.query.Mask(c.store))
	c.iter = newBitIter(c.matched)
	c.visited = 0
	c.initialized = true
}

func (c *Cursor) Reset() {
	c.iter = nil
	c.matched = nil
	c.current = 0
	c.visited = 0
	c.initialized = false
}

// Visited returns how many entities Next has yielded since the last reset.
func (c *Cursor) Visited() int {
	return c.visited
}

// TotalMatched counts the entities the query matches right now.
func (c *Cursor) TotalMatched() int {
	if !c.initialized {
		c.initialize()
	}
	return maskCount(c.matched)
}
