package xdg

import (
	"image"

	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/wire"
)

const (
	surfaceInterface = "xdg_surface"

	surfaceDestroy           = 0
	surfaceGetToplevel       = 1
	surfaceGetPopup          = 2
	surfaceSetWindowGeometry = 3
	surfaceAckConfigure      = 4

	surfaceEventConfigure = 0
)

// Surface is an xdg_surface. Configure is called after the role
// object's own configure events, and must be acknowledged with
// AckConfigure before the next commit.
type Surface struct {
	wl.Proxy

	Configure func(serial uint32)

	surface *wl.Surface
}

func (s *Surface) Interface() string {
	return surfaceInterface
}

func (s *Surface) EventName(op uint16) string {
	if op == surfaceEventConfigure {
		return "configure"
	}
	return "unknown"
}

// Surface returns the wl_surface that this xdg_surface wraps.
func (s *Surface) Surface() *wl.Surface {
	return s.surface
}

func (s *Surface) Destroy() {
	s.Enqueue(wire.NewMessage(s, surfaceDestroy, "destroy"))
	s.MarkDestroyed()
}

func (s *Surface) GetToplevel() *Toplevel {
	var t Toplevel
	s.Display().AddObject(&t)

	msg := wire.NewMessage(s, surfaceGetToplevel, "get_toplevel")
	msg.WriteObject(&t)
	s.Enqueue(msg)

	return &t
}

// GetPopup creates a popup role for the surface. parent may be nil if
// the parent is set through another protocol, such as layer-shell.
func (s *Surface) GetPopup(parent *Surface, positioner *Positioner) *Popup {
	var p Popup
	s.Display().AddObject(&p)

	msg := wire.NewMessage(s, surfaceGetPopup, "get_popup")
	msg.WriteObject(&p)
	if parent == nil {
		msg.WriteObject(nil)
	} else {
		msg.WriteObject(parent)
	}
	msg.WriteObject(positioner)
	s.Enqueue(msg)

	return &p
}

func (s *Surface) SetWindowGeometry(r image.Rectangle) {
	msg := wire.NewMessage(s, surfaceSetWindowGeometry, "set_window_geometry")
	msg.WriteInt(int32(r.Min.X))
	msg.WriteInt(int32(r.Min.Y))
	msg.WriteInt(int32(r.Dx()))
	msg.WriteInt(int32(r.Dy()))
	s.Enqueue(msg)
}

func (s *Surface) AckConfigure(serial uint32) {
	msg := wire.NewMessage(s, surfaceAckConfigure, "ack_configure")
	msg.WriteUint(serial)
	s.Enqueue(msg)
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != surfaceEventConfigure {
		return wire.UnknownOpError{Interface: surfaceInterface, Type: "event", Op: msg.Op()}
	}

	serial := msg.ReadUint()
	if msg.Err() != nil {
		return msg.Err()
	}
	if s.Configure != nil {
		s.Configure(serial)
	}
	return nil
}
