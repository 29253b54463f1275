package wl

import (
	"os"

	"deedles.dev/wlshell/wire"
)

const (
	keyboardInterface = "wl_keyboard"

	keyboardRelease = 0

	keyboardEventKeymap     = 0
	keyboardEventEnter      = 1
	keyboardEventLeave      = 2
	keyboardEventKey        = 3
	keyboardEventModifiers  = 4
	keyboardEventRepeatInfo = 5
)

type KeyboardKeymapFormat uint32

const (
	KeyboardKeymapFormatNoKeymap KeyboardKeymapFormat = iota
	KeyboardKeymapFormatXKBV1
)

type KeyState uint32

const (
	KeyStateReleased KeyState = iota
	KeyStatePressed
)

type Keyboard struct {
	Proxy

	// Keymap receives ownership of file. If Keymap is nil, the file is
	// closed.
	Keymap     func(format KeyboardKeymapFormat, file *os.File, size uint32)
	Enter      func(serial, surface uint32)
	Leave      func(serial, surface uint32)
	Key        func(serial, time, key uint32, state KeyState)
	RepeatInfo func(rate, delay int32)
}

func (kb *Keyboard) Interface() string {
	return keyboardInterface
}

func (kb *Keyboard) EventName(op uint16) string {
	switch op {
	case keyboardEventKeymap:
		return "keymap"
	case keyboardEventEnter:
		return "enter"
	case keyboardEventLeave:
		return "leave"
	case keyboardEventKey:
		return "key"
	case keyboardEventModifiers:
		return "modifiers"
	case keyboardEventRepeatInfo:
		return "repeat_info"
	}
	return "unknown"
}

func (kb *Keyboard) Release() {
	kb.Enqueue(wire.NewMessage(kb, keyboardRelease, "release"))
	kb.MarkDestroyed()
}

func (kb *Keyboard) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case keyboardEventKeymap:
		format := msg.ReadUint()
		file := msg.ReadFile()
		size := msg.ReadUint()
		if msg.Err() != nil {
			if file != nil {
				file.Close()
			}
			return msg.Err()
		}
		if kb.Keymap == nil {
			return file.Close()
		}
		kb.Keymap(KeyboardKeymapFormat(format), file, size)
		return nil

	case keyboardEventEnter:
		serial, surface := msg.ReadUint(), msg.ReadObject()
		msg.ReadArray()
		if msg.Err() != nil {
			return msg.Err()
		}
		if kb.Enter != nil {
			kb.Enter(serial, surface)
		}
		return nil

	case keyboardEventLeave:
		serial, surface := msg.ReadUint(), msg.ReadObject()
		if msg.Err() != nil {
			return msg.Err()
		}
		if kb.Leave != nil {
			kb.Leave(serial, surface)
		}
		return nil

	case keyboardEventKey:
		serial, time := msg.ReadUint(), msg.ReadUint()
		key, state := msg.ReadUint(), msg.ReadUint()
		if msg.Err() != nil {
			return msg.Err()
		}
		if kb.Key != nil {
			kb.Key(serial, time, key, KeyState(state))
		}
		return nil

	case keyboardEventModifiers:
		return nil

	case keyboardEventRepeatInfo:
		rate, delay := msg.ReadInt(), msg.ReadInt()
		if msg.Err() != nil {
			return msg.Err()
		}
		if kb.RepeatInfo != nil {
			kb.RepeatInfo(rate, delay)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: keyboardInterface, Type: "event", Op: msg.Op()}
}
