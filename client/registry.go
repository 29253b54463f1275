package wl

import (
	"deedles.dev/wlshell/wire"
	"golang.org/x/exp/maps"
)

const (
	registryInterface = "wl_registry"

	registryBind = 0

	registryEventGlobal       = 0
	registryEventGlobalRemove = 1
)

type Registry struct {
	Proxy

	Global       func(name uint32, inter Interface)
	GlobalRemove func(name uint32)

	globals map[uint32]Interface
}

func (registry *Registry) Interface() string {
	return registryInterface
}

func (registry *Registry) EventName(op uint16) string {
	switch op {
	case registryEventGlobal:
		return "global"
	case registryEventGlobalRemove:
		return "global_remove"
	}
	return "unknown"
}

// Globals returns a snapshot of the currently advertised globals,
// keyed by name.
func (registry *Registry) Globals() map[uint32]Interface {
	return maps.Clone(registry.globals)
}

// Bind binds obj to the global with the given name. obj must not
// already belong to a display.
func (registry *Registry) Bind(name uint32, inter string, version uint32, obj Object) {
	registry.display.AddObject(obj)

	msg := wire.NewMessage(registry, registryBind, "bind")
	msg.WriteUint(name)
	msg.WriteNewID(wire.NewID{Interface: inter, Version: version, ID: obj.ID()})
	registry.Enqueue(msg)
}

func (registry *Registry) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case registryEventGlobal:
		name := msg.ReadUint()
		inter := Interface{Name: msg.ReadString(), Version: msg.ReadUint()}
		if msg.Err() != nil {
			return msg.Err()
		}
		registry.globals[name] = inter
		if registry.Global != nil {
			registry.Global(name, inter)
		}
		return nil

	case registryEventGlobalRemove:
		name := msg.ReadUint()
		if msg.Err() != nil {
			return msg.Err()
		}
		delete(registry.globals, name)
		if registry.GlobalRemove != nil {
			registry.GlobalRemove(name)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: registryInterface, Type: "event", Op: msg.Op()}
}
