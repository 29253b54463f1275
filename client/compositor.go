package wl

import "deedles.dev/wlshell/wire"

const (
	compositorInterface = "wl_compositor"
	compositorVersion   = 6

	compositorCreateSurface = 0
	compositorCreateRegion  = 1
)

type Compositor struct {
	Proxy
}

func IsCompositor(i Interface) bool {
	return i.Is(compositorInterface, 1)
}

func BindCompositor(display *Display, name uint32, i Interface) *Compositor {
	var compositor Compositor
	display.GetRegistry().Bind(name, compositorInterface, i.Clamp(compositorVersion), &compositor)
	return &compositor
}

func (c *Compositor) Interface() string {
	return compositorInterface
}

func (c *Compositor) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: compositorInterface, Type: "event", Op: msg.Op()}
}

func (c *Compositor) CreateSurface() *Surface {
	var s Surface
	c.display.AddObject(&s)

	msg := wire.NewMessage(c, compositorCreateSurface, "create_surface")
	msg.WriteObject(&s)
	c.Enqueue(msg)

	return &s
}

func (c *Compositor) CreateRegion() *Region {
	var r Region
	c.display.AddObject(&r)

	msg := wire.NewMessage(c, compositorCreateRegion, "create_region")
	msg.WriteObject(&r)
	c.Enqueue(msg)

	return &r
}

const (
	regionInterface = "wl_region"

	regionDestroy  = 0
	regionAdd      = 1
	regionSubtract = 2
)

type Region struct {
	Proxy
}

func (r *Region) Interface() string {
	return regionInterface
}

func (r *Region) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: regionInterface, Type: "event", Op: msg.Op()}
}

func (r *Region) Add(x, y, width, height int32) {
	msg := wire.NewMessage(r, regionAdd, "add")
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	r.Enqueue(msg)
}

func (r *Region) Destroy() {
	r.Enqueue(wire.NewMessage(r, regionDestroy, "destroy"))
	r.MarkDestroyed()
}
