package shell

// Registry maps live protocol objects to SurfaceIDs and back. It is
// owned by the dispatcher and is not safe for concurrent use.
type Registry struct {
	byObject map[ObjectID]entry
	byID     map[SurfaceID]ObjectID
}

type entry struct {
	id   SurfaceID
	kind Kind
}

func NewRegistry() *Registry {
	return &Registry{
		byObject: make(map[ObjectID]entry),
		byID:     make(map[SurfaceID]ObjectID),
	}
}

// Register maps obj to id. If id is NoSurface, a new SurfaceID is
// allocated. A mapping is never overwritten: if obj or id is already
// registered, a CollisionError is returned and the Registry is left
// unchanged.
func (r *Registry) Register(obj ObjectID, kind Kind, id SurfaceID) (SurfaceID, error) {
	if e, ok := r.byObject[obj]; ok {
		return NoSurface, CollisionError{Object: obj, ID: id, Existing: e.id}
	}
	if id == NoSurface {
		id = NewSurfaceID()
	}
	if _, ok := r.byID[id]; ok {
		return NoSurface, CollisionError{Object: obj, ID: id}
	}

	r.byObject[obj] = entry{id: id, kind: kind}
	r.byID[id] = obj
	return id, nil
}

func (r *Registry) Resolve(obj ObjectID) (SurfaceID, bool) {
	e, ok := r.byObject[obj]
	return e.id, ok
}

// Lookup is the reverse of Resolve.
func (r *Registry) Lookup(id SurfaceID) (ObjectID, Kind, bool) {
	obj, ok := r.byID[id]
	if !ok {
		return 0, 0, false
	}
	return obj, r.byObject[obj].kind, true
}

// Forget removes the mapping for obj, returning the SurfaceID that it
// had.
func (r *Registry) Forget(obj ObjectID) (SurfaceID, bool) {
	e, ok := r.byObject[obj]
	if !ok {
		return NoSurface, false
	}
	delete(r.byObject, obj)
	delete(r.byID, e.id)
	return e.id, true
}

func (r *Registry) Len() int {
	return len(r.byObject)
}
