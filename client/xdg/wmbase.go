// Package xdg implements the client side of the xdg-shell and
// xdg-activation protocols.
package xdg

import (
	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/wire"
)

const (
	wmBaseInterface = "xdg_wm_base"
	wmBaseVersion   = 3

	wmBaseDestroy          = 0
	wmBaseCreatePositioner = 1
	wmBaseGetXdgSurface    = 2
	wmBasePong             = 3

	wmBaseEventPing = 0
)

// WmBase is the xdg_wm_base global. Pings are answered automatically.
type WmBase struct {
	wl.Proxy
}

func IsWmBase(i wl.Interface) bool {
	return i.Is(wmBaseInterface, 1)
}

func BindWmBase(display *wl.Display, name uint32, i wl.Interface) *WmBase {
	var wm WmBase
	display.GetRegistry().Bind(name, wmBaseInterface, i.Clamp(wmBaseVersion), &wm)
	return &wm
}

func (wm *WmBase) Interface() string {
	return wmBaseInterface
}

func (wm *WmBase) EventName(op uint16) string {
	if op == wmBaseEventPing {
		return "ping"
	}
	return "unknown"
}

func (wm *WmBase) Destroy() {
	wm.Enqueue(wire.NewMessage(wm, wmBaseDestroy, "destroy"))
	wm.MarkDestroyed()
}

func (wm *WmBase) CreatePositioner() *Positioner {
	var p Positioner
	wm.Display().AddObject(&p)

	msg := wire.NewMessage(wm, wmBaseCreatePositioner, "create_positioner")
	msg.WriteObject(&p)
	wm.Enqueue(msg)

	return &p
}

func (wm *WmBase) GetXdgSurface(surface *wl.Surface) *Surface {
	s := Surface{surface: surface}
	wm.Display().AddObject(&s)

	msg := wire.NewMessage(wm, wmBaseGetXdgSurface, "get_xdg_surface")
	msg.WriteObject(&s)
	msg.WriteObject(surface)
	wm.Enqueue(msg)

	return &s
}

func (wm *WmBase) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != wmBaseEventPing {
		return wire.UnknownOpError{Interface: wmBaseInterface, Type: "event", Op: msg.Op()}
	}

	serial := msg.ReadUint()
	if msg.Err() != nil {
		return msg.Err()
	}

	pong := wire.NewMessage(wm, wmBasePong, "pong")
	pong.WriteUint(serial)
	wm.Enqueue(pong)
	return nil
}
