package shell

import (
	"errors"
	"fmt"
	"image"

	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/client/layer"
	"deedles.dev/wlshell/client/sessionlock"
	"deedles.dev/wlshell/client/wp"
	"deedles.dev/wlshell/client/xdg"
	"go.uber.org/zap"
)

// maxBuffers is the most shm buffers kept per surface.
const maxBuffers = 3

type baseSurface interface {
	base() *surface
}

type surface struct {
	w          *Wayland
	surf       *wl.Surface
	viewport   *wp.Viewport
	fractional *wp.FractionalScale
	buffers    []*wl.ImageBuffer

	scale  int32
	dest   image.Point
	opaque image.Point
}

func (w *Wayland) newSurface() *surface {
	s := surface{
		w:     w,
		surf:  w.compositor.CreateSurface(),
		scale: 1,
	}

	obj := s.ObjectID()
	s.surf.PreferredBufferScale = func(scale int32) {
		w.emit(PreferredBufferScale{Object: obj, Scale: scale})
	}

	if (w.viewporter != nil) && (w.fractional != nil) {
		s.viewport = w.viewporter.GetViewport(s.surf)
		s.fractional = w.fractional.GetFractionalScale(s.surf)
		s.fractional.PreferredScale = func(scale uint32) {
			w.emit(PreferredScale{Object: obj, Scale120: scale})
		}
	}

	return &s
}

func (s *surface) base() *surface {
	return s
}

func (s *surface) ObjectID() ObjectID {
	return ObjectID(s.surf.ID())
}

func (s *surface) Frame() {
	obj := s.ObjectID()
	s.surf.Frame(func(uint32) {
		s.w.emit(FrameDone{Object: obj})
	})
}

func (s *surface) Commit() {
	s.surf.Commit()
}

func (s *surface) Attach(img image.Image) error {
	size := img.Bounds().Size()
	if (size.X <= 0) || (size.Y <= 0) {
		return fmt.Errorf("empty image: %v", img.Bounds())
	}

	buf, err := s.buffer(int32(size.X), int32(size.Y))
	if err != nil {
		return err
	}

	buf.Draw(img)
	buf.Attach(s.surf)
	s.setOpaque(img, size)
	return nil
}

// setOpaque marks the whole surface as opaque if img reports that it
// is, and clears the opaque region otherwise.
func (s *surface) setOpaque(img image.Image, size image.Point) {
	var region image.Point
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		region = s.surfaceSize(size)
	}
	if region == s.opaque {
		return
	}
	s.opaque = region

	if region == (image.Point{}) {
		s.surf.SetOpaqueRegion(nil)
		return
	}

	r := s.w.compositor.CreateRegion()
	r.Add(0, 0, int32(region.X), int32(region.Y))
	s.surf.SetOpaqueRegion(r)
	r.Destroy()
}

// surfaceSize converts a buffer size to surface coordinates.
func (s *surface) surfaceSize(buf image.Point) image.Point {
	if s.dest != (image.Point{}) {
		return s.dest
	}
	return buf.Div(int(s.scale))
}

// buffer returns a buffer of the given size that the compositor is
// not reading from.
func (s *surface) buffer(width, height int32) (*wl.ImageBuffer, error) {
	for _, buf := range s.buffers {
		if !buf.Busy() {
			err := buf.Resize(width, height)
			if err != nil {
				return nil, fmt.Errorf("resize buffer: %w", err)
			}
			return buf, nil
		}
	}

	if len(s.buffers) >= maxBuffers {
		return nil, errors.New("all buffers are busy")
	}

	buf, err := wl.NewImageBuffer(s.w.shm, width, height)
	if err != nil {
		return nil, fmt.Errorf("create buffer: %w", err)
	}
	s.buffers = append(s.buffers, buf)
	return buf, nil
}

func (s *surface) SetBufferScale(scale int32) {
	s.scale = max(scale, 1)
	s.surf.SetBufferScale(scale)
}

func (s *surface) SetViewportDestination(width, height int32) {
	if s.viewport != nil {
		s.dest = image.Pt(int(width), int(height))
		s.viewport.SetDestination(width, height)
	}
}

func (s *surface) HasFractionalScale() bool {
	return s.fractional != nil
}

func (s *surface) Destroy() {
	for _, buf := range s.buffers {
		buf.Destroy()
	}
	s.buffers = nil

	if s.fractional != nil {
		s.fractional.Destroy()
	}
	if s.viewport != nil {
		s.viewport.Destroy()
	}
	s.surf.Destroy()
}

type layerSurface struct {
	*surface
	role *layer.Surface
}

func (s *layerSurface) SetSize(size Size) {
	s.role.SetSize(size.Width, size.Height)
}

func (s *layerSurface) SetAnchor(anchor Anchor) {
	s.role.SetAnchor(layer.Anchor(anchor))
}

func (s *layerSurface) SetExclusiveZone(zone int32) {
	s.role.SetExclusiveZone(zone)
}

func (s *layerSurface) SetMargin(m Margin) {
	s.role.SetMargin(m.Top, m.Right, m.Bottom, m.Left)
}

func (s *layerSurface) SetKeyboardInteractivity(ki KeyboardInteractivity) {
	s.role.SetKeyboardInteractivity(layer.KeyboardInteractivity(ki))
}

func (s *layerSurface) SetLayer(l Layer) {
	if s.w.layerShellVersion < 2 {
		s.w.log.Debug("compositor cannot change layers", zap.Uint32("version", s.w.layerShellVersion))
		return
	}
	s.role.SetLayer(layer.Layer(l))
}

func (s *layerSurface) Destroy() {
	s.role.Destroy()
	s.surface.Destroy()
}

type popupSurface struct {
	*surface
	xdg  *xdg.Surface
	role *xdg.Popup
}

func (s *popupSurface) Reposition(p PositionerParams, token uint32) {
	if s.w.wmBaseVersion < 3 {
		s.w.log.Debug("compositor cannot reposition popups", zap.Uint32("version", s.w.wmBaseVersion))
		return
	}

	pos := s.w.positioner(p)
	s.role.Reposition(pos, token)
	pos.Destroy()
}

func (s *popupSurface) SetWindowGeometry(r image.Rectangle) {
	s.xdg.SetWindowGeometry(r)
}

func (s *popupSurface) Destroy() {
	s.role.Destroy()
	s.xdg.Destroy()
	s.surface.Destroy()
}

type windowSurface struct {
	*surface
	xdg  *xdg.Surface
	role *xdg.Toplevel
}

func (s *windowSurface) SetTitle(title string) {
	s.role.SetTitle(title)
}

func (s *windowSurface) Destroy() {
	s.role.Destroy()
	s.xdg.Destroy()
	s.surface.Destroy()
}

type lockSurface struct {
	*surface
	role *sessionlock.Surface
}

func (s *lockSurface) Destroy() {
	s.role.Destroy()
	s.surface.Destroy()
}
