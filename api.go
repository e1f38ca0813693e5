package stockroom

import (
	"iter"
)

// Store owns the alive set, one column per component kind and the id allocator.
//
// Only Next and Reserve are safe to call concurrently (with each other and with command buffer
// reservations). Everything else needs exclusive access, which the scheduler provides per stage.
type Store interface {
	Next() Entity
	NewBuilder(Entity) *EntityBuilder
	Reserve() *EntityBuilder
	Build(*EntityBuilder) Entity
	Kill(Entity) bool
	Reset(Entity)
	Alive(Entity) bool
	AliveSet() *PresenceIndex
	Len() int
	Entities() iter.Seq[Entity]
	Join(parts ...Joinable) *JoinIter
	NewCommandBuffer() *CommandBuffer
	Components() []Component
	RowIndexFor(Component) uint32
	Grow(capacity int)
	MarshalJSON() ([]byte, error)
	UnmarshalJSON([]byte) error
}

type Query interface {
	QueryNode
	And(items ...any) QueryNode
	Or(items ...any) QueryNode
	Not(items ...any) QueryNode
}

type QueryNode interface {
	Mask(sto Store) Mask
}

type iCursor interface {
	Entities() iter.Seq[Entity]
	Next() bool
}

type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Lookup(string) (*T, bool)
	Keys() []string
	Len() int
	Register(string, T) (int, error)
}

// Warning: internal Dependencies abound!
type Cursor struct {
	// The query to filter entities
	query QueryNode

	// The store to iterate over
	store Store

	// Current iteration state
	iter    *bitIter
	current Entity
	visited int

	// Initialization state
	initialized bool
	matched     Mask
}

type SimpleCache[T any] struct {
	items       []T
	keys        []string
	itemIndices map[string]int
	maxCapacity int
}
