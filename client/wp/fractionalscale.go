package wp

import (
	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/wire"
)

const (
	fractionalScaleManagerInterface = "wp_fractional_scale_manager_v1"
	fractionalScaleManagerVersion   = 1

	fractionalScaleManagerDestroy            = 0
	fractionalScaleManagerGetFractionalScale = 1
)

type FractionalScaleManager struct {
	wl.Proxy
}

func IsFractionalScaleManager(i wl.Interface) bool {
	return i.Is(fractionalScaleManagerInterface, 1)
}

func BindFractionalScaleManager(display *wl.Display, name uint32, i wl.Interface) *FractionalScaleManager {
	var m FractionalScaleManager
	display.GetRegistry().Bind(name, fractionalScaleManagerInterface, i.Clamp(fractionalScaleManagerVersion), &m)
	return &m
}

func (m *FractionalScaleManager) Interface() string {
	return fractionalScaleManagerInterface
}

func (m *FractionalScaleManager) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: fractionalScaleManagerInterface, Type: "event", Op: msg.Op()}
}

func (m *FractionalScaleManager) Destroy() {
	m.Enqueue(wire.NewMessage(m, fractionalScaleManagerDestroy, "destroy"))
	m.MarkDestroyed()
}

func (m *FractionalScaleManager) GetFractionalScale(surface *wl.Surface) *FractionalScale {
	var fs FractionalScale
	m.Display().AddObject(&fs)

	msg := wire.NewMessage(m, fractionalScaleManagerGetFractionalScale, "get_fractional_scale")
	msg.WriteObject(&fs)
	msg.WriteObject(surface)
	m.Enqueue(msg)

	return &fs
}

const (
	fractionalScaleInterface = "wp_fractional_scale_v1"

	fractionalScaleDestroy = 0

	fractionalScaleEventPreferredScale = 0
)

// ScaleDenominator is the denominator of the scale reported by
// FractionalScale.PreferredScale.
const ScaleDenominator = 120

type FractionalScale struct {
	wl.Proxy

	// PreferredScale reports the scale as a numerator over
	// ScaleDenominator.
	PreferredScale func(scale uint32)
}

func (fs *FractionalScale) Interface() string {
	return fractionalScaleInterface
}

func (fs *FractionalScale) EventName(op uint16) string {
	if op == fractionalScaleEventPreferredScale {
		return "preferred_scale"
	}
	return "unknown"
}

func (fs *FractionalScale) Destroy() {
	fs.Enqueue(wire.NewMessage(fs, fractionalScaleDestroy, "destroy"))
	fs.MarkDestroyed()
}

func (fs *FractionalScale) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != fractionalScaleEventPreferredScale {
		return wire.UnknownOpError{Interface: fractionalScaleInterface, Type: "event", Op: msg.Op()}
	}

	scale := msg.ReadUint()
	if msg.Err() != nil {
		return msg.Err()
	}
	if fs.PreferredScale != nil {
		fs.PreferredScale(scale)
	}
	return nil
}
