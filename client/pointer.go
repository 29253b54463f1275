package wl

import "deedles.dev/wlshell/wire"

const (
	pointerInterface = "wl_pointer"

	pointerRelease = 1

	pointerEventEnter        = 0
	pointerEventLeave        = 1
	pointerEventMotion       = 2
	pointerEventButton       = 3
	pointerEventAxis         = 4
	pointerEventFrame        = 5
	pointerEventAxisSource   = 6
	pointerEventAxisStop     = 7
	pointerEventAxisDiscrete = 8
)

type PointerButtonState uint32

const (
	PointerButtonStateReleased PointerButtonState = iota
	PointerButtonStatePressed
)

// Pointer only reports the events needed to track input focus and
// serials. Motion and axis events are decoded and dropped.
type Pointer struct {
	Proxy

	Enter  func(serial, surface uint32, x, y wire.Fixed)
	Leave  func(serial, surface uint32)
	Button func(serial, time, button uint32, state PointerButtonState)
}

func (p *Pointer) Interface() string {
	return pointerInterface
}

func (p *Pointer) EventName(op uint16) string {
	switch op {
	case pointerEventEnter:
		return "enter"
	case pointerEventLeave:
		return "leave"
	case pointerEventMotion:
		return "motion"
	case pointerEventButton:
		return "button"
	case pointerEventAxis:
		return "axis"
	case pointerEventFrame:
		return "frame"
	case pointerEventAxisSource:
		return "axis_source"
	case pointerEventAxisStop:
		return "axis_stop"
	case pointerEventAxisDiscrete:
		return "axis_discrete"
	}
	return "unknown"
}

func (p *Pointer) Release() {
	p.Enqueue(wire.NewMessage(p, pointerRelease, "release"))
	p.MarkDestroyed()
}

func (p *Pointer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case pointerEventEnter:
		serial, surface := msg.ReadUint(), msg.ReadObject()
		x, y := msg.ReadFixed(), msg.ReadFixed()
		if msg.Err() != nil {
			return msg.Err()
		}
		if p.Enter != nil {
			p.Enter(serial, surface, x, y)
		}
		return nil

	case pointerEventLeave:
		serial, surface := msg.ReadUint(), msg.ReadObject()
		if msg.Err() != nil {
			return msg.Err()
		}
		if p.Leave != nil {
			p.Leave(serial, surface)
		}
		return nil

	case pointerEventButton:
		serial, time := msg.ReadUint(), msg.ReadUint()
		button, state := msg.ReadUint(), msg.ReadUint()
		if msg.Err() != nil {
			return msg.Err()
		}
		if p.Button != nil {
			p.Button(serial, time, button, PointerButtonState(state))
		}
		return nil

	case pointerEventMotion, pointerEventAxis, pointerEventFrame,
		pointerEventAxisSource, pointerEventAxisStop, pointerEventAxisDiscrete:
		return nil
	}

	return wire.UnknownOpError{Interface: pointerInterface, Type: "event", Op: msg.Op()}
}
