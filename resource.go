package stockroom

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// ErrMissingResource is returned when a resource type has never been set.
var ErrMissingResource = eris.New("resource not found")

// Resources holds at most one value per type. Systems reach it through Context.Resources.
type Resources struct {
	items map[reflect.Type]any
}

func newResources() *Resources {
	return &Resources{items: make(map[reflect.Type]any)}
}

// Len returns the number of stored resources.
func (r *Resources) Len() int {
	return len(r.items)
}

// SetResource stores v, replacing any previous resource of type T.
func SetResource[T any](r *Resources, v T) {
	r.items[reflect.TypeFor[T]()] = &v
}

// GetResource returns the stored resource of type T.
func GetResource[T any](r *Resources) (*T, error) {
	item, ok := r.items[reflect.TypeFor[T]()]
	if !ok {
		return nil, eris.Wrapf(ErrMissingResource, "resource %s", reflect.TypeFor[T]())
	}
	return item.(*T), nil
}

// MustResource is GetResource for resources the caller knows exist.
func MustResource[T any](r *Resources) *T {
	v, err := GetResource[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

// RemoveResource deletes the resource of type T. Returns false if there was none.
func RemoveResource[T any](r *Resources) bool {
	key := reflect.TypeFor[T]()
	if _, ok := r.items[key]; !ok {
		return false
	}
	delete(r.items, key)
	return true
}
