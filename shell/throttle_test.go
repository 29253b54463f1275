package shell

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type throttleOp int

const (
	opRequest throttleOp = iota
	opFrame
	opScan
)

func (op throttleOp) String() string {
	return [...]string{"request", "frame", "scan"}[op]
}

// throttleModel tracks what has happened to a surface since it was
// last committed. A surface may only be committed once both a redraw
// has been requested and the compositor is ready for a frame.
type throttleModel struct {
	requested  bool
	frameReady bool
}

func (m *throttleModel) apply(op throttleOp) (committed bool) {
	switch op {
	case opRequest:
		m.requested = true
	case opFrame:
		m.frameReady = true
	case opScan:
		if m.requested && m.frameReady {
			*m = throttleModel{}
			return true
		}
	}
	return false
}

func sequences(n int) [][]throttleOp {
	if n == 0 {
		return [][]throttleOp{nil}
	}

	var all [][]throttleOp
	for _, seq := range sequences(n - 1) {
		for _, op := range []throttleOp{opRequest, opFrame, opScan} {
			all = append(all, append(seq[:len(seq):len(seq)], op))
		}
	}
	return all
}

func TestThrottleSequences(t *testing.T) {
	const obj ObjectID = 3

	for _, seq := range sequences(6) {
		name := fmt.Sprint(seq)
		name = strings.Trim(name, "[]")

		throttle := NewThrottle()
		throttle.Track(obj)
		model := throttleModel{frameReady: true}

		for i, op := range seq {
			var committed bool
			switch op {
			case opRequest:
				throttle.RequestRedraw(obj)
			case opFrame:
				throttle.FrameDone(obj)
			case opScan:
				ready := throttle.TakeReady(nil)
				if len(ready) > 1 {
					t.Fatalf("%v: step %v: too many ready surfaces: %v", name, i, ready)
				}
				committed = len(ready) == 1
			}

			want := model.apply(op)
			if committed != want {
				t.Fatalf("%v: step %v: committed = %v, want %v", name, i, committed, want)
			}
		}
	}
}

func TestThrottleStatus(t *testing.T) {
	throttle := NewThrottle()
	throttle.Track(1)

	status := func() string {
		s, ok := throttle.Status(1)
		if !ok {
			return "in flight"
		}
		return s.String()
	}

	steps := []struct {
		do   func() bool
		want string
		ret  bool
	}{
		{do: func() bool { return throttle.RequestRedraw(1) }, want: "Ready", ret: true},
		{do: func() bool { return throttle.RequestRedraw(1) }, want: "Ready", ret: true},
		{do: func() bool { return len(throttle.TakeReady(nil)) == 1 }, want: "in flight", ret: true},
		{do: func() bool { return throttle.RequestRedraw(1) }, want: "RequestedRedraw", ret: false},
		{do: func() bool { return throttle.FrameDone(1) }, want: "Ready", ret: true},
		{do: func() bool { return len(throttle.TakeReady(nil)) == 1 }, want: "in flight", ret: true},
		{do: func() bool { return throttle.FrameDone(1) }, want: "Received", ret: false},
		{do: func() bool { return throttle.FrameDone(1) }, want: "Received", ret: false},
	}
	for i, step := range steps {
		ret := step.do()
		if ret != step.ret {
			t.Errorf("step %v: returned %v", i, ret)
		}
		if s := status(); s != step.want {
			t.Errorf("step %v: status %q, want %q", i, s, step.want)
		}
	}
}

func TestThrottleUntracked(t *testing.T) {
	throttle := NewThrottle()
	throttle.Track(2)
	throttle.Track(1)
	throttle.Track(3)
	throttle.Forget(3)

	if throttle.RequestRedraw(3) || throttle.FrameDone(3) || throttle.RequestRedraw(4) {
		t.Error("untracked surface became ready")
	}
	if _, ok := throttle.Status(3); ok {
		t.Error("forgotten surface has a status")
	}

	throttle.RequestRedraw(2)
	throttle.RequestRedraw(1)
	if diff := cmp.Diff([]ObjectID{1, 2}, throttle.TakeReady(nil)); diff != "" {
		t.Errorf("ready (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ObjectID{1, 2}, throttle.Tracked()); diff != "" {
		t.Errorf("tracked (-want +got):\n%s", diff)
	}
}

func TestThrottleHold(t *testing.T) {
	throttle := NewThrottle()
	throttle.Track(1)
	throttle.Track(2)
	throttle.RequestRedraw(1)
	throttle.RequestRedraw(2)

	hold := func(obj ObjectID) bool { return obj == 1 }
	if diff := cmp.Diff([]ObjectID{2}, throttle.TakeReady(hold)); diff != "" {
		t.Errorf("ready (-want +got):\n%s", diff)
	}
	if s, ok := throttle.Status(1); !ok || (s != Ready) {
		t.Errorf("held surface: %v, %v", s, ok)
	}

	if diff := cmp.Diff([]ObjectID{1}, throttle.TakeReady(nil)); diff != "" {
		t.Errorf("ready after release (-want +got):\n%s", diff)
	}
}
