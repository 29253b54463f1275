package wl

import "deedles.dev/wlshell/wire"

const (
	surfaceInterface = "wl_surface"

	surfaceDestroy            = 0
	surfaceAttach             = 1
	surfaceDamage             = 2
	surfaceFrame              = 3
	surfaceSetOpaqueRegion    = 4
	surfaceSetInputRegion     = 5
	surfaceCommit             = 6
	surfaceSetBufferTransform = 7
	surfaceSetBufferScale     = 8
	surfaceDamageBuffer       = 9

	surfaceEventEnter                    = 0
	surfaceEventLeave                    = 1
	surfaceEventPreferredBufferScale     = 2
	surfaceEventPreferredBufferTransform = 3
)

type Surface struct {
	Proxy

	Enter                    func(output uint32)
	Leave                    func(output uint32)
	PreferredBufferScale     func(factor int32)
	PreferredBufferTransform func(transform OutputTransform)
}

func (s *Surface) Interface() string {
	return surfaceInterface
}

func (s *Surface) EventName(op uint16) string {
	switch op {
	case surfaceEventEnter:
		return "enter"
	case surfaceEventLeave:
		return "leave"
	case surfaceEventPreferredBufferScale:
		return "preferred_buffer_scale"
	case surfaceEventPreferredBufferTransform:
		return "preferred_buffer_transform"
	}
	return "unknown"
}

func (s *Surface) Destroy() {
	s.Enqueue(wire.NewMessage(s, surfaceDestroy, "destroy"))
	s.MarkDestroyed()
}

// Attach attaches buf as the surface's pending content. A nil buffer
// unmaps the surface.
func (s *Surface) Attach(buf *Buffer, x, y int32) {
	msg := wire.NewMessage(s, surfaceAttach, "attach")
	if buf == nil {
		msg.WriteObject(nil)
	} else {
		msg.WriteObject(buf)
	}
	msg.WriteInt(x)
	msg.WriteInt(y)
	s.Enqueue(msg)
}

// DamageBuffer marks a rectangle of the attached buffer, in buffer
// coordinates, as changed.
func (s *Surface) DamageBuffer(x, y, width, height int32) {
	msg := wire.NewMessage(s, surfaceDamageBuffer, "damage_buffer")
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	s.Enqueue(msg)
}

// Frame requests a callback for when the compositor would like the
// next frame to be drawn. It takes effect on the next commit.
func (s *Surface) Frame(done func(time uint32)) *Callback {
	callback := Callback{Done: done}
	s.display.AddObject(&callback)

	msg := wire.NewMessage(s, surfaceFrame, "frame")
	msg.WriteObject(&callback)
	s.Enqueue(msg)

	return &callback
}

// SetOpaqueRegion sets the part of the surface that is fully opaque.
// A nil region clears it.
func (s *Surface) SetOpaqueRegion(r *Region) {
	msg := wire.NewMessage(s, surfaceSetOpaqueRegion, "set_opaque_region")
	if r == nil {
		msg.WriteObject(nil)
	} else {
		msg.WriteObject(r)
	}
	s.Enqueue(msg)
}

func (s *Surface) Commit() {
	s.Enqueue(wire.NewMessage(s, surfaceCommit, "commit"))
}

func (s *Surface) SetBufferScale(scale int32) {
	msg := wire.NewMessage(s, surfaceSetBufferScale, "set_buffer_scale")
	msg.WriteInt(scale)
	s.Enqueue(msg)
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case surfaceEventEnter, surfaceEventLeave:
		output := msg.ReadObject()
		if msg.Err() != nil {
			return msg.Err()
		}
		f := s.Enter
		if msg.Op() == surfaceEventLeave {
			f = s.Leave
		}
		if f != nil {
			f(output)
		}
		return nil

	case surfaceEventPreferredBufferScale:
		factor := msg.ReadInt()
		if msg.Err() != nil {
			return msg.Err()
		}
		if s.PreferredBufferScale != nil {
			s.PreferredBufferScale(factor)
		}
		return nil

	case surfaceEventPreferredBufferTransform:
		transform := msg.ReadUint()
		if msg.Err() != nil {
			return msg.Err()
		}
		if s.PreferredBufferTransform != nil {
			s.PreferredBufferTransform(OutputTransform(transform))
		}
		return nil
	}

	return wire.UnknownOpError{Interface: surfaceInterface, Type: "event", Op: msg.Op()}
}
