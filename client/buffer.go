package wl

import "deedles.dev/wlshell/wire"

const (
	bufferInterface = "wl_buffer"

	bufferDestroy = 0

	bufferEventRelease = 0
)

type Buffer struct {
	Proxy

	Release func()
}

func (buf *Buffer) Interface() string {
	return bufferInterface
}

func (buf *Buffer) EventName(op uint16) string {
	if op == bufferEventRelease {
		return "release"
	}
	return "unknown"
}

func (buf *Buffer) Destroy() {
	buf.Enqueue(wire.NewMessage(buf, bufferDestroy, "destroy"))
	buf.MarkDestroyed()
}

func (buf *Buffer) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != bufferEventRelease {
		return wire.UnknownOpError{Interface: bufferInterface, Type: "event", Op: msg.Op()}
	}

	if buf.Release != nil {
		buf.Release()
	}
	return nil
}
