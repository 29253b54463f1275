package wl

import "deedles.dev/wlshell/wire"

const (
	outputInterface = "wl_output"
	outputVersion   = 4

	outputRelease = 0

	outputEventGeometry    = 0
	outputEventMode        = 1
	outputEventDone        = 2
	outputEventScale       = 3
	outputEventName        = 4
	outputEventDescription = 5
)

type OutputTransform int32

const (
	OutputTransformNormal OutputTransform = iota
	OutputTransform90
	OutputTransform180
	OutputTransform270
	OutputTransformFlipped
	OutputTransformFlipped90
	OutputTransformFlipped180
	OutputTransformFlipped270
)

type OutputMode uint32

const (
	OutputModeCurrent   OutputMode = 0x1
	OutputModePreferred OutputMode = 0x2
)

type Output struct {
	Proxy

	Geometry    func(x, y, physicalWidth, physicalHeight, subpixel int32, make, model string, transform OutputTransform)
	Mode        func(flags OutputMode, width, height, refresh int32)
	Done        func()
	Scale       func(factor int32)
	Name        func(name string)
	Description func(description string)
}

func IsOutput(i Interface) bool {
	return i.Is(outputInterface, 1)
}

func BindOutput(display *Display, name uint32, i Interface) *Output {
	var output Output
	display.GetRegistry().Bind(name, outputInterface, i.Clamp(outputVersion), &output)
	return &output
}

func (out *Output) Interface() string {
	return outputInterface
}

func (out *Output) EventName(op uint16) string {
	switch op {
	case outputEventGeometry:
		return "geometry"
	case outputEventMode:
		return "mode"
	case outputEventDone:
		return "done"
	case outputEventScale:
		return "scale"
	case outputEventName:
		return "name"
	case outputEventDescription:
		return "description"
	}
	return "unknown"
}

func (out *Output) Release() {
	out.Enqueue(wire.NewMessage(out, outputRelease, "release"))
	out.MarkDestroyed()
}

func (out *Output) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case outputEventGeometry:
		x, y := msg.ReadInt(), msg.ReadInt()
		pw, ph := msg.ReadInt(), msg.ReadInt()
		subpixel := msg.ReadInt()
		make, model := msg.ReadString(), msg.ReadString()
		transform := msg.ReadInt()
		if msg.Err() != nil {
			return msg.Err()
		}
		if out.Geometry != nil {
			out.Geometry(x, y, pw, ph, subpixel, make, model, OutputTransform(transform))
		}
		return nil

	case outputEventMode:
		flags := msg.ReadUint()
		w, h, refresh := msg.ReadInt(), msg.ReadInt(), msg.ReadInt()
		if msg.Err() != nil {
			return msg.Err()
		}
		if out.Mode != nil {
			out.Mode(OutputMode(flags), w, h, refresh)
		}
		return nil

	case outputEventDone:
		if out.Done != nil {
			out.Done()
		}
		return nil

	case outputEventScale:
		factor := msg.ReadInt()
		if msg.Err() != nil {
			return msg.Err()
		}
		if out.Scale != nil {
			out.Scale(factor)
		}
		return nil

	case outputEventName, outputEventDescription:
		str := msg.ReadString()
		if msg.Err() != nil {
			return msg.Err()
		}
		f := out.Name
		if msg.Op() == outputEventDescription {
			f = out.Description
		}
		if f != nil {
			f(str)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: outputInterface, Type: "event", Op: msg.Op()}
}
