package wl

import "deedles.dev/wlshell/wire"

const (
	seatInterface = "wl_seat"
	seatVersion   = 5

	seatGetPointer  = 0
	seatGetKeyboard = 1
	seatGetTouch    = 2
	seatRelease     = 3

	seatEventCapabilities = 0
	seatEventName         = 1
)

type SeatCapability uint32

const (
	SeatCapabilityPointer SeatCapability = 1 << iota
	SeatCapabilityKeyboard
	SeatCapabilityTouch
)

func (c SeatCapability) Has(other SeatCapability) bool {
	return c&other == other
}

type Seat struct {
	Proxy

	Capabilities func(SeatCapability)
	Name         func(string)
}

func IsSeat(i Interface) bool {
	return i.Is(seatInterface, 1)
}

func BindSeat(display *Display, name uint32, i Interface) *Seat {
	var seat Seat
	display.GetRegistry().Bind(name, seatInterface, i.Clamp(seatVersion), &seat)
	return &seat
}

func (seat *Seat) Interface() string {
	return seatInterface
}

func (seat *Seat) EventName(op uint16) string {
	switch op {
	case seatEventCapabilities:
		return "capabilities"
	case seatEventName:
		return "name"
	}
	return "unknown"
}

func (seat *Seat) GetPointer() *Pointer {
	var p Pointer
	seat.display.AddObject(&p)

	msg := wire.NewMessage(seat, seatGetPointer, "get_pointer")
	msg.WriteObject(&p)
	seat.Enqueue(msg)

	return &p
}

func (seat *Seat) GetKeyboard() *Keyboard {
	var kb Keyboard
	seat.display.AddObject(&kb)

	msg := wire.NewMessage(seat, seatGetKeyboard, "get_keyboard")
	msg.WriteObject(&kb)
	seat.Enqueue(msg)

	return &kb
}

func (seat *Seat) Release() {
	seat.Enqueue(wire.NewMessage(seat, seatRelease, "release"))
	seat.MarkDestroyed()
}

func (seat *Seat) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case seatEventCapabilities:
		caps := msg.ReadUint()
		if msg.Err() != nil {
			return msg.Err()
		}
		if seat.Capabilities != nil {
			seat.Capabilities(SeatCapability(caps))
		}
		return nil

	case seatEventName:
		name := msg.ReadString()
		if msg.Err() != nil {
			return msg.Err()
		}
		if seat.Name != nil {
			seat.Name(name)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: seatInterface, Type: "event", Op: msg.Op()}
}
