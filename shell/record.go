package shell

import (
	"image"
	"sync"
)

// Common is the negotiated state of a surface. It is written by the
// dispatcher and may be read from any goroutine.
type Common struct {
	m               sync.Mutex
	fractionalScale float64
	bufferScale     int32
	logicalSize     image.Point
	requested       Size
	viewport        bool
}

func newCommon(requested Size, viewport bool) *Common {
	return &Common{
		bufferScale: 1,
		requested:   requested,
		viewport:    viewport,
	}
}

// CommonSnapshot is a copy of a Common.
type CommonSnapshot struct {
	// FractionalScale is zero until the compositor sends one.
	FractionalScale float64
	BufferScale     int32
	LogicalSize     image.Point
	Requested       Size
	Viewport        bool
}

func (c *Common) Snapshot() CommonSnapshot {
	c.m.Lock()
	defer c.m.Unlock()

	return CommonSnapshot{
		FractionalScale: c.fractionalScale,
		BufferScale:     c.bufferScale,
		LogicalSize:     c.logicalSize,
		Requested:       c.requested,
		Viewport:        c.viewport,
	}
}

// Scale returns the fractional scale if there is one, and the buffer
// scale otherwise.
func (c *Common) Scale() float64 {
	c.m.Lock()
	defer c.m.Unlock()

	return c.scale()
}

func (c *Common) scale() float64 {
	if c.fractionalScale > 0 {
		return c.fractionalScale
	}
	return float64(c.bufferScale)
}

func (c *Common) LogicalSize() image.Point {
	c.m.Lock()
	defer c.m.Unlock()

	return c.logicalSize
}

// PhysicalSize is the logical size multiplied by the scale, rounded
// up.
func (c *Common) PhysicalSize() image.Point {
	c.m.Lock()
	defer c.m.Unlock()

	s := c.scale()
	return image.Pt(ceil(float64(c.logicalSize.X)*s), ceil(float64(c.logicalSize.Y)*s))
}

func ceil(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	return i
}

func (c *Common) setLogicalSize(size image.Point) {
	c.m.Lock()
	defer c.m.Unlock()

	c.logicalSize = size
}

// setRequested reports whether the request changed.
func (c *Common) setRequested(size Size) bool {
	c.m.Lock()
	defer c.m.Unlock()

	if c.requested == size {
		return false
	}
	c.requested = size
	return true
}

func (c *Common) requestedSize() Size {
	c.m.Lock()
	defer c.m.Unlock()

	return c.requested
}

func (c *Common) setFractionalScale(scale float64) bool {
	c.m.Lock()
	defer c.m.Unlock()

	if c.fractionalScale == scale {
		return false
	}
	c.fractionalScale = scale
	return true
}

func (c *Common) setBufferScale(scale int32) bool {
	c.m.Lock()
	defer c.m.Unlock()

	if c.bufferScale == scale {
		return false
	}
	c.bufferScale = scale
	return true
}

// record is the dispatcher's view of a live surface. Exactly one of
// the role fields is set, matching kind.
type record struct {
	id     SurfaceID
	obj    ObjectID
	kind   Kind
	common *Common
	handle Surface

	configured bool
	mapped     bool
	frame      image.Image

	layer  *layerRecord
	popup  *popupRecord
	lock   *lockRecord
	window *windowRecord
}

type layerRecord struct {
	handle                LayerSurface
	anchor                Anchor
	layer                 Layer
	keyboardInteractivity KeyboardInteractivity
	margin                Margin
	exclusiveZone         int32
	lastConfigure         Size
}

type popupRecord struct {
	handle        Popup
	parent        ParentRef
	positioner    PositionerParams
	lastConfigure image.Rectangle
}

type lockRecord struct {
	output        OutputID
	lastConfigure Size
}

type windowRecord struct {
	handle        Window
	lastConfigure image.Point
}

// layerRequestSize returns the size to send with set_size. A
// dimension that is stretched between two anchored edges and has not
// been requested is left to the compositor.
func layerRequestSize(anchor Anchor, req Size) Size {
	size := Size{Width: max(req.Width, 1), Height: max(req.Height, 1)}
	if (req.Width == 0) && anchor.Has(AnchorLeft|AnchorRight) {
		size.Width = 0
	}
	if (req.Height == 0) && anchor.Has(AnchorTop|AnchorBottom) {
		size.Height = 0
	}
	return size
}

// layerConfiguredSize returns the logical size of a layer surface
// after the compositor configures it to conf.
func layerConfiguredSize(req, conf Size) image.Point {
	w, h := req.Width, req.Height
	if w == 0 {
		w = max(conf.Width, 1)
	}
	if h == 0 {
		h = max(conf.Height, 1)
	}
	return image.Pt(int(w), int(h))
}
