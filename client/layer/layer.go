// Package layer implements the client side of the wlr-layer-shell
// protocol, used for panels, bars, and backgrounds that are anchored
// to the edges of an output.
package layer

import (
	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/client/xdg"
	"deedles.dev/wlshell/wire"
)

const (
	shellInterface = "zwlr_layer_shell_v1"
	shellVersion   = 4

	shellGetLayerSurface = 0
	shellDestroy         = 1
)

// Layer is the stacking layer that a surface is placed in.
type Layer uint32

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

type Anchor uint32

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

type KeyboardInteractivity uint32

const (
	KeyboardInteractivityNone KeyboardInteractivity = iota
	KeyboardInteractivityExclusive
	KeyboardInteractivityOnDemand
)

type Shell struct {
	wl.Proxy
}

func IsShell(i wl.Interface) bool {
	return i.Is(shellInterface, 1)
}

func BindShell(display *wl.Display, name uint32, i wl.Interface) *Shell {
	var s Shell
	display.GetRegistry().Bind(name, shellInterface, i.Clamp(shellVersion), &s)
	return &s
}

func (s *Shell) Interface() string {
	return shellInterface
}

func (s *Shell) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: shellInterface, Type: "event", Op: msg.Op()}
}

func (s *Shell) Destroy() {
	s.Enqueue(wire.NewMessage(s, shellDestroy, "destroy"))
	s.MarkDestroyed()
}

// GetLayerSurface gives surface the layer surface role. If output is
// nil the compositor picks one.
func (s *Shell) GetLayerSurface(surface *wl.Surface, output *wl.Output, layer Layer, namespace string) *Surface {
	var ls Surface
	s.Display().AddObject(&ls)

	msg := wire.NewMessage(s, shellGetLayerSurface, "get_layer_surface")
	msg.WriteObject(&ls)
	msg.WriteObject(surface)
	if output == nil {
		msg.WriteObject(nil)
	} else {
		msg.WriteObject(output)
	}
	msg.WriteUint(uint32(layer))
	msg.WriteString(namespace)
	s.Enqueue(msg)

	return &ls
}

const (
	surfaceInterface = "zwlr_layer_surface_v1"

	surfaceSetSize                  = 0
	surfaceSetAnchor                = 1
	surfaceSetExclusiveZone         = 2
	surfaceSetMargin                = 3
	surfaceSetKeyboardInteractivity = 4
	surfaceGetPopup                 = 5
	surfaceAckConfigure             = 6
	surfaceDestroy                  = 7
	surfaceSetLayer                 = 8

	surfaceEventConfigure = 0
	surfaceEventClosed    = 1
)

type Surface struct {
	wl.Proxy

	// Configure must be answered with AckConfigure. A width or height
	// of zero leaves that dimension to the client.
	Configure func(serial, width, height uint32)
	Closed    func()
}

func (s *Surface) Interface() string {
	return surfaceInterface
}

func (s *Surface) EventName(op uint16) string {
	switch op {
	case surfaceEventConfigure:
		return "configure"
	case surfaceEventClosed:
		return "closed"
	}
	return "unknown"
}

func (s *Surface) SetSize(width, height uint32) {
	msg := wire.NewMessage(s, surfaceSetSize, "set_size")
	msg.WriteUint(width)
	msg.WriteUint(height)
	s.Enqueue(msg)
}

func (s *Surface) SetAnchor(anchor Anchor) {
	msg := wire.NewMessage(s, surfaceSetAnchor, "set_anchor")
	msg.WriteUint(uint32(anchor))
	s.Enqueue(msg)
}

func (s *Surface) SetExclusiveZone(zone int32) {
	msg := wire.NewMessage(s, surfaceSetExclusiveZone, "set_exclusive_zone")
	msg.WriteInt(zone)
	s.Enqueue(msg)
}

func (s *Surface) SetMargin(top, right, bottom, left int32) {
	msg := wire.NewMessage(s, surfaceSetMargin, "set_margin")
	msg.WriteInt(top)
	msg.WriteInt(right)
	msg.WriteInt(bottom)
	msg.WriteInt(left)
	s.Enqueue(msg)
}

func (s *Surface) SetKeyboardInteractivity(ki KeyboardInteractivity) {
	msg := wire.NewMessage(s, surfaceSetKeyboardInteractivity, "set_keyboard_interactivity")
	msg.WriteUint(uint32(ki))
	s.Enqueue(msg)
}

// GetPopup makes the layer surface the parent of popup, which must
// have been created with a nil parent.
func (s *Surface) GetPopup(popup *xdg.Popup) {
	msg := wire.NewMessage(s, surfaceGetPopup, "get_popup")
	msg.WriteObject(popup)
	s.Enqueue(msg)
}

func (s *Surface) AckConfigure(serial uint32) {
	msg := wire.NewMessage(s, surfaceAckConfigure, "ack_configure")
	msg.WriteUint(serial)
	s.Enqueue(msg)
}

func (s *Surface) Destroy() {
	s.Enqueue(wire.NewMessage(s, surfaceDestroy, "destroy"))
	s.MarkDestroyed()
}

// SetLayer moves the surface to a different layer. It requires
// version 2.
func (s *Surface) SetLayer(layer Layer) {
	msg := wire.NewMessage(s, surfaceSetLayer, "set_layer")
	msg.WriteUint(uint32(layer))
	s.Enqueue(msg)
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case surfaceEventConfigure:
		serial := msg.ReadUint()
		w, h := msg.ReadUint(), msg.ReadUint()
		if msg.Err() != nil {
			return msg.Err()
		}
		if s.Configure != nil {
			s.Configure(serial, w, h)
		}
		return nil

	case surfaceEventClosed:
		if s.Closed != nil {
			s.Closed()
		}
		return nil
	}

	return wire.UnknownOpError{Interface: surfaceInterface, Type: "event", Op: msg.Op()}
}
