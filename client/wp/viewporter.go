// Package wp implements the client side of the viewporter and
// fractional-scale protocols.
package wp

import (
	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/wire"
)

const (
	viewporterInterface = "wp_viewporter"
	viewporterVersion   = 1

	viewporterDestroy     = 0
	viewporterGetViewport = 1
)

type Viewporter struct {
	wl.Proxy
}

func IsViewporter(i wl.Interface) bool {
	return i.Is(viewporterInterface, 1)
}

func BindViewporter(display *wl.Display, name uint32, i wl.Interface) *Viewporter {
	var v Viewporter
	display.GetRegistry().Bind(name, viewporterInterface, i.Clamp(viewporterVersion), &v)
	return &v
}

func (v *Viewporter) Interface() string {
	return viewporterInterface
}

func (v *Viewporter) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: viewporterInterface, Type: "event", Op: msg.Op()}
}

func (v *Viewporter) Destroy() {
	v.Enqueue(wire.NewMessage(v, viewporterDestroy, "destroy"))
	v.MarkDestroyed()
}

func (v *Viewporter) GetViewport(surface *wl.Surface) *Viewport {
	var vp Viewport
	v.Display().AddObject(&vp)

	msg := wire.NewMessage(v, viewporterGetViewport, "get_viewport")
	msg.WriteObject(&vp)
	msg.WriteObject(surface)
	v.Enqueue(msg)

	return &vp
}

const (
	viewportInterface = "wp_viewport"

	viewportDestroy        = 0
	viewportSetSource      = 1
	viewportSetDestination = 2
)

// Viewport crops and scales a surface's buffer independently of its
// buffer scale.
type Viewport struct {
	wl.Proxy
}

func (vp *Viewport) Interface() string {
	return viewportInterface
}

func (vp *Viewport) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: viewportInterface, Type: "event", Op: msg.Op()}
}

func (vp *Viewport) Destroy() {
	vp.Enqueue(wire.NewMessage(vp, viewportDestroy, "destroy"))
	vp.MarkDestroyed()
}

// SetSource selects the region of the buffer to show. Passing -1 for
// every argument unsets it.
func (vp *Viewport) SetSource(x, y, width, height wire.Fixed) {
	msg := wire.NewMessage(vp, viewportSetSource, "set_source")
	msg.WriteFixed(x)
	msg.WriteFixed(y)
	msg.WriteFixed(width)
	msg.WriteFixed(height)
	vp.Enqueue(msg)
}

// SetDestination sets the surface size in logical coordinates.
// Passing -1 for both arguments unsets it.
func (vp *Viewport) SetDestination(width, height int32) {
	msg := wire.NewMessage(vp, viewportSetDestination, "set_destination")
	msg.WriteInt(width)
	msg.WriteInt(height)
	vp.Enqueue(msg)
}
