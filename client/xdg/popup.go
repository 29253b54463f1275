package xdg

import (
	"image"

	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/wire"
)

const (
	popupInterface = "xdg_popup"

	popupDestroy    = 0
	popupGrab       = 1
	popupReposition = 2

	popupEventConfigure    = 0
	popupEventPopupDone    = 1
	popupEventRepositioned = 2
)

type Popup struct {
	wl.Proxy

	// Configure gives the popup's position relative to its parent
	// and its size.
	Configure    func(geometry image.Rectangle)
	Done         func()
	Repositioned func(token uint32)
}

func (p *Popup) Interface() string {
	return popupInterface
}

func (p *Popup) EventName(op uint16) string {
	switch op {
	case popupEventConfigure:
		return "configure"
	case popupEventPopupDone:
		return "popup_done"
	case popupEventRepositioned:
		return "repositioned"
	}
	return "unknown"
}

func (p *Popup) Destroy() {
	p.Enqueue(wire.NewMessage(p, popupDestroy, "destroy"))
	p.MarkDestroyed()
}

// Grab makes the popup take an explicit grab. serial must be the
// serial of the user input event that caused the popup to be opened.
func (p *Popup) Grab(seat *wl.Seat, serial uint32) {
	msg := wire.NewMessage(p, popupGrab, "grab")
	msg.WriteObject(seat)
	msg.WriteUint(serial)
	p.Enqueue(msg)
}

// Reposition applies a new positioner to the popup. It requires
// version 3.
func (p *Popup) Reposition(positioner *Positioner, token uint32) {
	msg := wire.NewMessage(p, popupReposition, "reposition")
	msg.WriteObject(positioner)
	msg.WriteUint(token)
	p.Enqueue(msg)
}

func (p *Popup) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case popupEventConfigure:
		x, y := msg.ReadInt(), msg.ReadInt()
		w, h := msg.ReadInt(), msg.ReadInt()
		if msg.Err() != nil {
			return msg.Err()
		}
		if p.Configure != nil {
			p.Configure(image.Rect(int(x), int(y), int(x+w), int(y+h)))
		}
		return nil

	case popupEventPopupDone:
		if p.Done != nil {
			p.Done()
		}
		return nil

	case popupEventRepositioned:
		token := msg.ReadUint()
		if msg.Err() != nil {
			return msg.Err()
		}
		if p.Repositioned != nil {
			p.Repositioned(token)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: popupInterface, Type: "event", Op: msg.Op()}
}
