package objstore

import (
	"testing"

	"deedles.dev/wlshell/wire"
)

type object struct {
	id      uint32
	deleted bool
}

func (obj *object) ID() uint32 { return obj.id }
func (obj *object) SetID(id uint32) { obj.id = id }
func (obj *object) Interface() string { return "object" }
func (obj *object) Dispatch(*wire.MessageBuffer) error { return nil }
func (obj *object) Delete() { obj.deleted = true }

func TestStore(t *testing.T) {
	s := New(2)

	a, b := &object{}, &object{}
	s.Add(a)
	s.Add(b)
	if a.id != 2 || b.id != 3 {
		t.Fatalf("ids: got %v and %v, want 2 and 3", a.id, b.id)
	}
	if s.Get(3) != b {
		t.Errorf("get 3: got %v", s.Get(3))
	}

	s.Delete(2)
	if !a.deleted {
		t.Error("object was not notified of deletion")
	}
	if s.Get(2) != nil {
		t.Error("deleted object is still present")
	}

	c := &object{}
	s.Add(c)
	if c.id != 2 {
		t.Errorf("released id was not reused: got %v", c.id)
	}

	fixed := &object{id: 1}
	s.Add(fixed)
	if s.Get(1) != fixed || s.Len() != 3 {
		t.Errorf("object with preassigned id not stored")
	}
}
