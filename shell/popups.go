package shell

import (
	"golang.org/x/exp/slices"
)

// ParentRef is a weak reference to the parent of a popup.
type ParentRef struct {
	Kind Kind
	ID   ObjectID
}

type popupEntry struct {
	id     ObjectID
	parent ParentRef
}

// PopupStack tracks live popups in creation order. Because popups
// must be created on top of the topmost popup, every popup's parent
// is either a root surface or a popup that appears earlier in the
// stack.
type PopupStack struct {
	entries []popupEntry
}

func (s *PopupStack) Push(id ObjectID, parent ParentRef) {
	s.entries = append(s.entries, popupEntry{id: id, parent: parent})
}

// Top returns the most recently created live popup.
func (s *PopupStack) Top() (ObjectID, bool) {
	if len(s.entries) == 0 {
		return 0, false
	}
	return s.entries[len(s.entries)-1].id, true
}

func (s *PopupStack) Len() int {
	return len(s.entries)
}

func (s *PopupStack) Contains(id ObjectID) bool {
	return s.index(id) >= 0
}

// Parent returns the parent of the popup id.
func (s *PopupStack) Parent(id ObjectID) (ParentRef, bool) {
	i := s.index(id)
	if i < 0 {
		return ParentRef{}, false
	}
	return s.entries[i].parent, true
}

func (s *PopupStack) Remove(id ObjectID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

func (s *PopupStack) index(id ObjectID) int {
	return slices.IndexFunc(s.entries, func(e popupEntry) bool { return e.id == id })
}

// Cascade returns the order in which the popup id and every popup
// nested above it must be destroyed: the deepest child first and id
// itself last. It returns nil if id is not in the stack.
func (s *PopupStack) Cascade(id ObjectID) []ObjectID {
	if !s.Contains(id) {
		return nil
	}
	order := s.above([]ObjectID{id})
	slices.Reverse(order)
	return order
}

// CascadeRoot returns every popup rooted, directly or through other
// popups, on the non-popup surface root, deepest first.
func (s *PopupStack) CascadeRoot(root ParentRef) []ObjectID {
	var direct []ObjectID
	for _, e := range s.entries {
		if e.parent == root {
			direct = append(direct, e.id)
		}
	}
	if len(direct) == 0 {
		return nil
	}

	order := s.above(direct)
	slices.Reverse(order)
	return order
}

// above extends queued with every popup whose parent is already
// queued, in the order that they are found.
func (s *PopupStack) above(queued []ObjectID) []ObjectID {
	for {
		added := false
		for _, e := range s.entries {
			if (e.parent.Kind != KindPopup) || slices.Contains(queued, e.id) {
				continue
			}
			if slices.Contains(queued, e.parent.ID) {
				queued = append(queued, e.id)
				added = true
			}
		}
		if !added {
			return queued
		}
	}
}
