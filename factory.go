package stockroom

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

type factory struct{}

var Factory factory

// NewStore creates an empty store with the given component kinds.
func (f factory) NewStore(components ...Component) (Store, error) {
	return f.NewStoreWithCapacity(0, components...)
}

// NewStoreWithCapacity pre-sizes the alive set and every column for capacity entities.
func (f factory) NewStoreWithCapacity(capacity int, components ...Component) (Store, error) {
	sto, err := newStore(capacity, components...)
	if err != nil {
		return nil, err
	}
	return sto, nil
}

// NewStoreFromSettings is NewStoreWithCapacity with the capacity taken from settings.
func (f factory) NewStoreFromSettings(settings Settings, components ...Component) (Store, error) {
	return f.NewStoreWithCapacity(settings.Capacity, components...)
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func (f factory) NewCursor(query QueryNode, sto Store) *Cursor {
	return newCursor(query, sto)
}

// NewScheduler creates a scheduler for sto with the given stages, run in the given order.
func (f factory) NewScheduler(sto Store, stages []string, opts ...SchedulerOption) (*Scheduler, error) {
	return newScheduler(sto, stages, opts...)
}

// FactoryNewComponent declares a payload component stored in the given backend kind.
func FactoryNewComponent[T any](kind StorageKind, opts ...ComponentOption[T]) ComponentKind[T] {
	c := ComponentKind[T]{storage: kind}
	for _, opt := range opts {
		opt(&c)
	}
	backend := c.backend
	if backend == nil {
		backend = func(capacity int) Backend[T] {
			return newBackend[T](kind, capacity)
		}
	}
	typ := reflect.TypeFor[T]()
	flagged := c.flagged
	c.Component = componentIdentity[T]{
		ElementType: table.FactoryNewElementType[T](),
		typ:         typ,
		factory: func(capacity int) column {
			return newTypedColumn(typ.String(), backend(capacity), kind == Marker, flagged, capacity)
		},
	}
	return c
}

// FactoryNewMarker declares a component without payload.
func FactoryNewMarker[T any]() MarkerKind[T] {
	typ := reflect.TypeFor[T]()
	return MarkerKind[T]{
		Component: componentIdentity[T]{
			ElementType: table.FactoryNewElementType[T](),
			typ:         typ,
			factory: func(capacity int) column {
				return newTypedColumn[T](typ.String(), markerBackend[T]{}, true, false, capacity)
			},
		},
	}
}

func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}

// FactoryNewExecutor creates an executor sized from settings.
func FactoryNewExecutor[T Task](settings Settings) *Executor[T] {
	return NewExecutor[T](settings.ExecutorScratch)
}
