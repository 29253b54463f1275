package shell

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// FrameStatus is the redraw state of a surface.
//
// A surface with no status has committed a frame and is waiting for
// its frame callback. A surface may only be committed by the throttle
// while it is Ready, which requires both a redraw request and a frame
// callback since the previous commit.
type FrameStatus int

const (
	// Received means that the frame callback for the last commit has
	// arrived, or that nothing has been committed yet, and that no
	// redraw has been requested.
	Received FrameStatus = iota + 1

	// RequestedRedraw means that a redraw is wanted but the last
	// commit's frame callback has not arrived.
	RequestedRedraw

	// Ready means that the surface should be committed.
	Ready
)

func (s FrameStatus) String() string {
	switch s {
	case Received:
		return "Received"
	case RequestedRedraw:
		return "RequestedRedraw"
	case Ready:
		return "Ready"
	}
	return fmt.Sprintf("FrameStatus(%d)", int(s))
}

// Throttle gates redraws on frame callbacks.
type Throttle struct {
	status map[ObjectID]FrameStatus
	live   map[ObjectID]struct{}
}

func NewThrottle() *Throttle {
	return &Throttle{
		status: make(map[ObjectID]FrameStatus),
		live:   make(map[ObjectID]struct{}),
	}
}

// Track starts tracking a new surface in the Received state.
func (t *Throttle) Track(obj ObjectID) {
	t.live[obj] = struct{}{}
	t.status[obj] = Received
}

func (t *Throttle) Forget(obj ObjectID) {
	delete(t.live, obj)
	delete(t.status, obj)
}

// Status returns the status of obj. ok is false if obj is waiting for
// a frame callback or is not tracked.
func (t *Throttle) Status(obj ObjectID) (s FrameStatus, ok bool) {
	s, ok = t.status[obj]
	return s, ok
}

// RequestRedraw records that obj wants to be redrawn. It reports
// whether obj is now Ready.
func (t *Throttle) RequestRedraw(obj ObjectID) bool {
	if _, ok := t.live[obj]; !ok {
		return false
	}

	switch t.status[obj] {
	case Received, Ready:
		t.status[obj] = Ready
		return true
	default:
		t.status[obj] = RequestedRedraw
		return false
	}
}

// FrameDone records a frame callback for obj. It reports whether obj
// is now Ready.
func (t *Throttle) FrameDone(obj ObjectID) bool {
	if _, ok := t.live[obj]; !ok {
		return false
	}

	switch t.status[obj] {
	case RequestedRedraw, Ready:
		t.status[obj] = Ready
		return true
	default:
		t.status[obj] = Received
		return false
	}
}

// TakeReady returns every Ready surface in ascending order and marks
// them as committed. The caller must commit each of them and request a
// new frame callback. Surfaces for which hold returns true are left
// Ready. hold may be nil.
func (t *Throttle) TakeReady(hold func(ObjectID) bool) []ObjectID {
	var ready []ObjectID
	for obj, s := range t.status {
		if (s == Ready) && ((hold == nil) || !hold(obj)) {
			ready = append(ready, obj)
		}
	}
	slices.Sort(ready)

	for _, obj := range ready {
		delete(t.status, obj)
	}
	return ready
}

// Tracked returns every tracked surface in ascending order.
func (t *Throttle) Tracked() []ObjectID {
	objs := make([]ObjectID, 0, len(t.live))
	for obj := range t.live {
		objs = append(objs, obj)
	}
	slices.Sort(objs)
	return objs
}
