package xdg

import (
	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/wire"
)

const (
	activationInterface = "xdg_activation_v1"
	activationVersion   = 1

	activationDestroy            = 0
	activationGetActivationToken = 1
	activationActivate           = 2
)

// Activation is the xdg_activation_v1 global, used to pass focus
// between surfaces and applications.
type Activation struct {
	wl.Proxy
}

func IsActivation(i wl.Interface) bool {
	return i.Is(activationInterface, 1)
}

func BindActivation(display *wl.Display, name uint32, i wl.Interface) *Activation {
	var a Activation
	display.GetRegistry().Bind(name, activationInterface, i.Clamp(activationVersion), &a)
	return &a
}

func (a *Activation) Interface() string {
	return activationInterface
}

func (a *Activation) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: activationInterface, Type: "event", Op: msg.Op()}
}

func (a *Activation) Destroy() {
	a.Enqueue(wire.NewMessage(a, activationDestroy, "destroy"))
	a.MarkDestroyed()
}

func (a *Activation) GetActivationToken() *ActivationToken {
	var t ActivationToken
	a.Display().AddObject(&t)

	msg := wire.NewMessage(a, activationGetActivationToken, "get_activation_token")
	msg.WriteObject(&t)
	a.Enqueue(msg)

	return &t
}

// Activate asks the compositor to focus surface using a token
// obtained from an ActivationToken.
func (a *Activation) Activate(token string, surface *wl.Surface) {
	msg := wire.NewMessage(a, activationActivate, "activate")
	msg.WriteString(token)
	msg.WriteObject(surface)
	a.Enqueue(msg)
}

const (
	activationTokenInterface = "xdg_activation_token_v1"

	activationTokenSetSerial  = 0
	activationTokenSetAppID   = 1
	activationTokenSetSurface = 2
	activationTokenCommit     = 3
	activationTokenDestroy    = 4

	activationTokenEventDone = 0
)

type ActivationToken struct {
	wl.Proxy

	Done func(token string)
}

func (t *ActivationToken) Interface() string {
	return activationTokenInterface
}

func (t *ActivationToken) EventName(op uint16) string {
	if op == activationTokenEventDone {
		return "done"
	}
	return "unknown"
}

func (t *ActivationToken) SetSerial(serial uint32, seat *wl.Seat) {
	msg := wire.NewMessage(t, activationTokenSetSerial, "set_serial")
	msg.WriteUint(serial)
	msg.WriteObject(seat)
	t.Enqueue(msg)
}

func (t *ActivationToken) SetAppID(id string) {
	msg := wire.NewMessage(t, activationTokenSetAppID, "set_app_id")
	msg.WriteString(id)
	t.Enqueue(msg)
}

func (t *ActivationToken) SetSurface(surface *wl.Surface) {
	msg := wire.NewMessage(t, activationTokenSetSurface, "set_surface")
	msg.WriteObject(surface)
	t.Enqueue(msg)
}

func (t *ActivationToken) Commit() {
	t.Enqueue(wire.NewMessage(t, activationTokenCommit, "commit"))
}

func (t *ActivationToken) Destroy() {
	t.Enqueue(wire.NewMessage(t, activationTokenDestroy, "destroy"))
	t.MarkDestroyed()
}

func (t *ActivationToken) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != activationTokenEventDone {
		return wire.UnknownOpError{Interface: activationTokenInterface, Type: "event", Op: msg.Op()}
	}

	token := msg.ReadString()
	if msg.Err() != nil {
		return msg.Err()
	}
	if t.Done != nil {
		t.Done(token)
	}
	return nil
}
