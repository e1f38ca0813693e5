package stockroom

import (
	iter_util "github.com/TheBitDrifter/util/iter"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// storeSnapshot is the JSON form of a store. Columns are keyed by component name, so a snapshot can
// be loaded into any store that registers the same component kinds, in any order.
type storeSnapshot struct {
	Next       uint32                     `json:"next"`
	Free       []uint32                   `json:"free"`
	Alive      []Entity                   `json:"alive"`
	Components map[string]json.RawMessage `json:"components"`
}

func (s *store) MarshalJSON() ([]byte, error) {
	snap := storeSnapshot{
		Next:       s.alloc.highWater(),
		Free:       s.alloc.freed(),
		Alive:      iter_util.Collect(s.alive.Entities()),
		Components: make(map[string]json.RawMessage, len(s.kinds)),
	}
	for _, col := range s.columns {
		if col == nil {
			continue
		}
		raw, err := col.snapshot()
		if err != nil {
			return nil, err
		}
		snap.Components[col.name()] = raw
	}
	out, err := json.Marshal(snap)
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode store snapshot")
	}
	return out, nil
}

// UnmarshalJSON replaces the whole store state. Every column is decoded and checked before
// anything is applied, so a rejected snapshot leaves the store untouched.
func (s *store) UnmarshalJSON(data []byte) error {
	var snap storeSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return eris.Wrap(err, "failed to decode store snapshot")
	}
	alive, err := s.validateSnapshot(&snap)
	if err != nil {
		return err
	}

	apply := make([]func(), 0, len(s.kinds))
	for _, col := range s.columns {
		if col == nil {
			continue
		}
		raw, ok := snap.Components[col.name()]
		if !ok {
			apply = append(apply, col.clear)
			continue
		}
		fn, err := col.decode(raw, alive)
		if err != nil {
			return err
		}
		apply = append(apply, fn)
	}

	s.alloc.restore(snap.Next, snap.Free)
	s.alive.reset()
	for index := range alive {
		s.alive.Add(index)
	}
	for _, fn := range apply {
		fn()
	}
	return nil
}

// validateSnapshot checks the allocator state against itself and returns the alive set.
func (s *store) validateSnapshot(snap *storeSnapshot) (map[uint32]struct{}, error) {
	for name := range snap.Components {
		if _, ok := s.names.GetIndex(name); !ok {
			return nil, eris.Wrapf(ErrUnknownComponent, "snapshot column %s", name)
		}
	}
	alive := make(map[uint32]struct{}, len(snap.Alive))
	for _, e := range snap.Alive {
		if e.Index() >= snap.Next {
			return nil, eris.Wrapf(ErrCorruptSnapshot, "alive %v above high-water mark %d", e, snap.Next)
		}
		alive[e.Index()] = struct{}{}
	}
	free := make(map[uint32]struct{}, len(snap.Free))
	for _, index := range snap.Free {
		if index >= snap.Next {
			return nil, eris.Wrapf(ErrCorruptSnapshot, "free index %d above high-water mark %d", index, snap.Next)
		}
		if _, ok := alive[index]; ok {
			return nil, eris.Wrapf(ErrCorruptSnapshot, "index %d is both alive and free", index)
		}
		if _, ok := free[index]; ok {
			return nil, eris.Wrapf(ErrCorruptSnapshot, "index %d is free twice", index)
		}
		free[index] = struct{}{}
	}
	return alive, nil
}
