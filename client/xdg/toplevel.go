package xdg

import (
	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/wire"
)

const (
	toplevelInterface = "xdg_toplevel"

	toplevelDestroy    = 0
	toplevelSetParent  = 1
	toplevelSetTitle   = 2
	toplevelSetAppID   = 3
	toplevelSetMaxSize = 7
	toplevelSetMinSize = 8

	toplevelEventConfigure       = 0
	toplevelEventClose           = 1
	toplevelEventConfigureBounds = 2
	toplevelEventWmCapabilities  = 3
)

type Toplevel struct {
	wl.Proxy

	// Configure suggests a size. A zero width or height means that
	// the client should decide.
	Configure func(width, height int32, states []byte)
	Close     func()
}

func (t *Toplevel) Interface() string {
	return toplevelInterface
}

func (t *Toplevel) EventName(op uint16) string {
	switch op {
	case toplevelEventConfigure:
		return "configure"
	case toplevelEventClose:
		return "close"
	case toplevelEventConfigureBounds:
		return "configure_bounds"
	case toplevelEventWmCapabilities:
		return "wm_capabilities"
	}
	return "unknown"
}

func (t *Toplevel) Destroy() {
	t.Enqueue(wire.NewMessage(t, toplevelDestroy, "destroy"))
	t.MarkDestroyed()
}

func (t *Toplevel) SetParent(parent *Toplevel) {
	msg := wire.NewMessage(t, toplevelSetParent, "set_parent")
	if parent == nil {
		msg.WriteObject(nil)
	} else {
		msg.WriteObject(parent)
	}
	t.Enqueue(msg)
}

func (t *Toplevel) SetTitle(title string) {
	msg := wire.NewMessage(t, toplevelSetTitle, "set_title")
	msg.WriteString(title)
	t.Enqueue(msg)
}

func (t *Toplevel) SetAppID(id string) {
	msg := wire.NewMessage(t, toplevelSetAppID, "set_app_id")
	msg.WriteString(id)
	t.Enqueue(msg)
}

func (t *Toplevel) SetMaxSize(width, height int32) {
	t.size(toplevelSetMaxSize, "set_max_size", width, height)
}

func (t *Toplevel) SetMinSize(width, height int32) {
	t.size(toplevelSetMinSize, "set_min_size", width, height)
}

func (t *Toplevel) size(op uint16, method string, width, height int32) {
	msg := wire.NewMessage(t, op, method)
	msg.WriteInt(width)
	msg.WriteInt(height)
	t.Enqueue(msg)
}

func (t *Toplevel) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case toplevelEventConfigure:
		w, h := msg.ReadInt(), msg.ReadInt()
		states := msg.ReadArray()
		if msg.Err() != nil {
			return msg.Err()
		}
		if t.Configure != nil {
			t.Configure(w, h, states)
		}
		return nil

	case toplevelEventClose:
		if t.Close != nil {
			t.Close()
		}
		return nil

	case toplevelEventConfigureBounds:
		msg.ReadInt()
		msg.ReadInt()
		return msg.Err()

	case toplevelEventWmCapabilities:
		msg.ReadArray()
		return msg.Err()
	}

	return wire.UnknownOpError{Interface: toplevelInterface, Type: "event", Op: msg.Op()}
}
