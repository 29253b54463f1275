// Package sessionlock implements the client side of the
// ext-session-lock protocol.
package sessionlock

import (
	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/wire"
)

const (
	managerInterface = "ext_session_lock_manager_v1"
	managerVersion   = 1

	managerDestroy = 0
	managerLock    = 1
)

type Manager struct {
	wl.Proxy
}

func IsManager(i wl.Interface) bool {
	return i.Is(managerInterface, 1)
}

func BindManager(display *wl.Display, name uint32, i wl.Interface) *Manager {
	var m Manager
	display.GetRegistry().Bind(name, managerInterface, i.Clamp(managerVersion), &m)
	return &m
}

func (m *Manager) Interface() string {
	return managerInterface
}

func (m *Manager) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: managerInterface, Type: "event", Op: msg.Op()}
}

func (m *Manager) Destroy() {
	m.Enqueue(wire.NewMessage(m, managerDestroy, "destroy"))
	m.MarkDestroyed()
}

// Lock requests that the session be locked. The result is reported by
// the returned Lock's Locked or Finished event.
func (m *Manager) Lock() *Lock {
	var l Lock
	m.Display().AddObject(&l)

	msg := wire.NewMessage(m, managerLock, "lock")
	msg.WriteObject(&l)
	m.Enqueue(msg)

	return &l
}

const (
	lockInterface = "ext_session_lock_v1"

	lockDestroy          = 0
	lockGetLockSurface   = 1
	lockUnlockAndDestroy = 2

	lockEventLocked   = 0
	lockEventFinished = 1
)

type Lock struct {
	wl.Proxy

	Locked   func()
	Finished func()
}

func (l *Lock) Interface() string {
	return lockInterface
}

func (l *Lock) EventName(op uint16) string {
	switch op {
	case lockEventLocked:
		return "locked"
	case lockEventFinished:
		return "finished"
	}
	return "unknown"
}

// Destroy abandons the lock. It is a protocol error to call it after
// the session has been locked.
func (l *Lock) Destroy() {
	l.Enqueue(wire.NewMessage(l, lockDestroy, "destroy"))
	l.MarkDestroyed()
}

func (l *Lock) GetLockSurface(surface *wl.Surface, output *wl.Output) *Surface {
	var s Surface
	l.Display().AddObject(&s)

	msg := wire.NewMessage(l, lockGetLockSurface, "get_lock_surface")
	msg.WriteObject(&s)
	msg.WriteObject(surface)
	msg.WriteObject(output)
	l.Enqueue(msg)

	return &s
}

func (l *Lock) UnlockAndDestroy() {
	l.Enqueue(wire.NewMessage(l, lockUnlockAndDestroy, "unlock_and_destroy"))
	l.MarkDestroyed()
}

func (l *Lock) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case lockEventLocked:
		if l.Locked != nil {
			l.Locked()
		}
		return nil

	case lockEventFinished:
		if l.Finished != nil {
			l.Finished()
		}
		return nil
	}

	return wire.UnknownOpError{Interface: lockInterface, Type: "event", Op: msg.Op()}
}

const (
	surfaceInterface = "ext_session_lock_surface_v1"

	surfaceDestroy      = 0
	surfaceAckConfigure = 1

	surfaceEventConfigure = 0
)

type Surface struct {
	wl.Proxy

	Configure func(serial, width, height uint32)
}

func (s *Surface) Interface() string {
	return surfaceInterface
}

func (s *Surface) EventName(op uint16) string {
	if op == surfaceEventConfigure {
		return "configure"
	}
	return "unknown"
}

func (s *Surface) Destroy() {
	s.Enqueue(wire.NewMessage(s, surfaceDestroy, "destroy"))
	s.MarkDestroyed()
}

func (s *Surface) AckConfigure(serial uint32) {
	msg := wire.NewMessage(s, surfaceAckConfigure, "ack_configure")
	msg.WriteUint(serial)
	s.Enqueue(msg)
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != surfaceEventConfigure {
		return wire.UnknownOpError{Interface: surfaceInterface, Type: "event", Op: msg.Op()}
	}

	serial := msg.ReadUint()
	w, h := msg.ReadUint(), msg.ReadUint()
	if msg.Err() != nil {
		return msg.Err()
	}
	if s.Configure != nil {
		s.Configure(serial, w, h)
	}
	return nil
}
