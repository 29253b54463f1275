package wl

import "deedles.dev/wlshell/wire"

const (
	callbackInterface = "wl_callback"

	callbackEventDone = 0
)

// Callback is a one-shot notification from the compositor.
type Callback struct {
	Proxy

	Done func(data uint32)
}

func (c *Callback) Interface() string {
	return callbackInterface
}

func (c *Callback) EventName(op uint16) string {
	if op == callbackEventDone {
		return "done"
	}
	return "unknown"
}

// Then sets the function to call when the callback fires.
func (c *Callback) Then(f func(uint32)) {
	c.Done = f
}

func (c *Callback) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != callbackEventDone {
		return wire.UnknownOpError{Interface: callbackInterface, Type: "event", Op: msg.Op()}
	}

	data := msg.ReadUint()
	if msg.Err() != nil {
		return msg.Err()
	}
	if c.Done != nil {
		c.Done(data)
	}
	return nil
}
