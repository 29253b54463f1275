// Package objstore keeps track of live protocol objects by ID.
package objstore

import "deedles.dev/wlshell/wire"

type Store struct {
	objects map[uint32]wire.Object
	nextID  uint32
	free    []uint32
}

// New returns a store that allocates IDs starting at start. IDs that
// have been released are handed out again before new ones.
func New(start uint32) *Store {
	return &Store{
		objects: make(map[uint32]wire.Object),
		nextID:  start,
	}
}

// Add registers obj, allocating an ID for it if it doesn't already
// have one.
func (s *Store) Add(obj wire.Object) {
	id := obj.ID()
	if id == 0 {
		id = s.alloc()
		obj.SetID(id)
	}

	s.objects[id] = obj
}

func (s *Store) alloc() uint32 {
	if n := len(s.free); n > 0 {
		id := s.free[n-1]
		s.free = s.free[:n-1]
		return id
	}

	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) Get(id uint32) wire.Object {
	return s.objects[id]
}

// Len returns the number of live objects.
func (s *Store) Len() int {
	return len(s.objects)
}

// Delete removes the object with the given ID, notifies it, and makes
// the ID available for reuse.
func (s *Store) Delete(id uint32) {
	obj, ok := s.objects[id]
	if !ok {
		return
	}
	delete(s.objects, id)
	s.free = append(s.free, id)
	obj.Delete()
}
