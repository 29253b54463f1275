package shell

import (
	"errors"
	"fmt"
	"image"
	"strings"

	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/client/layer"
	"deedles.dev/wlshell/client/sessionlock"
	"deedles.dev/wlshell/client/wp"
	"deedles.dev/wlshell/client/xdg"
	"deedles.dev/wlshell/wire"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Wayland is a Backend that speaks to a real compositor.
type Wayland struct {
	log      *zap.Logger
	display  *wl.Display
	registry *wl.Registry
	sink     func(Event)

	compositor  *wl.Compositor
	shm         *wl.Shm
	wmBase      *xdg.WmBase
	layerShell  *layer.Shell
	lockManager *sessionlock.Manager
	viewporter  *wp.Viewporter
	fractional  *wp.FractionalScaleManager
	activation  *xdg.Activation

	wmBaseVersion     uint32
	layerShellVersion uint32

	seat     *wl.Seat
	pointer  *wl.Pointer
	keyboard *wl.Keyboard
	serial   uint32

	outputs map[uint32]*output

	lock   *sessionlock.Lock
	locked bool
}

type output struct {
	obj     *wl.Output
	version uint32
	info    OutputInfo
	done    bool
}

var _ Backend = (*Wayland)(nil)

// DialWayland connects to the compositor described by the environment.
func DialWayland(log *zap.Logger) (*Wayland, error) {
	display, err := wl.DialDisplay()
	if err != nil {
		return nil, fmt.Errorf("connect to compositor: %w", err)
	}

	w, err := NewWayland(display, log)
	if err != nil {
		display.Close()
		return nil, err
	}
	return w, nil
}

// NewWayland binds the globals that the shell uses. It fails if the
// compositor lacks wl_compositor, wl_shm, or xdg_wm_base. Every other
// protocol is optional.
func NewWayland(display *wl.Display, log *zap.Logger) (*Wayland, error) {
	w := Wayland{
		log:     log,
		display: display,
		outputs: make(map[uint32]*output),
	}
	display.Error = func(err wl.ProtocolError) {
		log.Error("protocol error", zap.Error(err))
	}

	w.registry = display.GetRegistry()
	w.registry.Global = w.global
	w.registry.GlobalRemove = w.globalRemove

	// The second round trip collects the initial events of the
	// globals bound by the first.
	for i := 0; i < 2; i++ {
		err := display.RoundTrip()
		if err != nil {
			return nil, fmt.Errorf("initial roundtrip: %w", err)
		}
	}

	var missing []string
	if w.compositor == nil {
		missing = append(missing, "wl_compositor")
	}
	if w.shm == nil {
		missing = append(missing, "wl_shm")
	}
	if w.wmBase == nil {
		missing = append(missing, "xdg_wm_base")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrExtensionUnavailable, strings.Join(missing, ", "))
	}

	log.Debug("bound globals",
		zap.Bool("layer_shell", w.layerShell != nil),
		zap.Bool("session_lock", w.lockManager != nil),
		zap.Bool("fractional_scale", w.fractional != nil),
		zap.Bool("activation", w.activation != nil),
		zap.Int("outputs", len(w.outputs)),
	)

	return &w, nil
}

func (w *Wayland) global(name uint32, i wl.Interface) {
	switch {
	case wl.IsCompositor(i) && (w.compositor == nil):
		w.compositor = wl.BindCompositor(w.display, name, i)
	case wl.IsShm(i) && (w.shm == nil):
		w.shm = wl.BindShm(w.display, name, i)
	case xdg.IsWmBase(i) && (w.wmBase == nil):
		w.wmBase = xdg.BindWmBase(w.display, name, i)
		w.wmBaseVersion = i.Version
	case layer.IsShell(i) && (w.layerShell == nil):
		w.layerShell = layer.BindShell(w.display, name, i)
		w.layerShellVersion = i.Version
	case sessionlock.IsManager(i) && (w.lockManager == nil):
		w.lockManager = sessionlock.BindManager(w.display, name, i)
	case wp.IsViewporter(i) && (w.viewporter == nil):
		w.viewporter = wp.BindViewporter(w.display, name, i)
	case wp.IsFractionalScaleManager(i) && (w.fractional == nil):
		w.fractional = wp.BindFractionalScaleManager(w.display, name, i)
	case xdg.IsActivation(i) && (w.activation == nil):
		w.activation = xdg.BindActivation(w.display, name, i)
	case wl.IsSeat(i) && (w.seat == nil):
		w.bindSeat(name, i)
	case wl.IsOutput(i):
		w.bindOutput(name, i)
	}
}

func (w *Wayland) globalRemove(name uint32) {
	o, ok := w.outputs[name]
	if !ok {
		return
	}
	delete(w.outputs, name)

	if o.version >= 3 {
		o.obj.Release()
	}
	w.emit(OutputGlobalRemoved{ID: OutputID(name)})
}

func (w *Wayland) bindSeat(name uint32, i wl.Interface) {
	w.seat = wl.BindSeat(w.display, name, i)
	w.seat.Capabilities = func(caps wl.SeatCapability) {
		if caps.Has(wl.SeatCapabilityPointer) && (w.pointer == nil) {
			w.pointer = w.seat.GetPointer()
			w.pointer.Enter = func(serial, surface uint32, x, y wire.Fixed) { w.serial = serial }
			w.pointer.Button = func(serial, time, button uint32, state wl.PointerButtonState) { w.serial = serial }
		}
		if caps.Has(wl.SeatCapabilityKeyboard) && (w.keyboard == nil) {
			w.keyboard = w.seat.GetKeyboard()
			w.keyboard.Enter = func(serial, surface uint32) { w.serial = serial }
			w.keyboard.Key = func(serial, time, key uint32, state wl.KeyState) { w.serial = serial }
		}
	}
}

func (w *Wayland) bindOutput(name uint32, i wl.Interface) {
	o := output{
		obj:     wl.BindOutput(w.display, name, i),
		version: i.Version,
		info:    OutputInfo{ID: OutputID(name), Scale: 1},
	}

	o.obj.Geometry = func(x, y, physicalWidth, physicalHeight, subpixel int32, make, model string, transform wl.OutputTransform) {
		o.info.Position = image.Pt(int(x), int(y))
		o.info.PhysicalSize = image.Pt(int(physicalWidth), int(physicalHeight))
		o.info.Make = make
		o.info.Model = model
	}
	o.obj.Mode = func(flags wl.OutputMode, width, height, refresh int32) {
		if flags&wl.OutputModeCurrent != 0 {
			o.info.Mode = image.Pt(int(width), int(height))
			o.info.RefreshMHz = refresh
		}
	}
	o.obj.Scale = func(factor int32) { o.info.Scale = factor }
	o.obj.Name = func(name string) { o.info.Name = name }
	o.obj.Description = func(description string) { o.info.Description = description }
	o.obj.Done = func() {
		o.done = true
		w.emit(OutputDone{Output: o.info})
	}

	w.outputs[name] = &o
}

func (w *Wayland) emit(ev Event) {
	if w.sink != nil {
		w.sink(ev)
	}
}

// SetSink sets the event sink and reports every output that is
// already known.
func (w *Wayland) SetSink(sink func(Event)) {
	w.sink = sink

	names := make([]uint32, 0, len(w.outputs))
	for name, o := range w.outputs {
		if o.done {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		w.emit(OutputDone{Output: w.outputs[name].info})
	}
}

func (w *Wayland) Events() <-chan []func() error {
	return w.display.Events()
}

func (w *Wayland) Dispatch(batch []func() error) error {
	return w.closed(w.display.HandleEvents(batch))
}

func (w *Wayland) Flush() error {
	return w.display.Flush()
}

func (w *Wayland) Roundtrip() error {
	return w.closed(w.display.RoundTrip())
}

func (w *Wayland) closed(err error) error {
	if errors.Is(err, wl.ErrDisconnected) {
		return fmt.Errorf("%w: %w", ErrChannelClosed, err)
	}
	return err
}

func (w *Wayland) Close() error {
	return w.display.Close()
}

func (w *Wayland) output(id OutputID) (*wl.Output, error) {
	o, ok := w.outputs[uint32(id)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown output %v", ErrObjectCreationRejected, id)
	}
	return o.obj, nil
}

func (w *Wayland) CreateLayerSurface(p LayerParams, size Size) (LayerSurface, error) {
	if w.layerShell == nil {
		return nil, fmt.Errorf("%w: zwlr_layer_shell_v1", ErrExtensionUnavailable)
	}

	var out *wl.Output
	if p.Output != 0 {
		o, err := w.output(p.Output)
		if err != nil {
			return nil, err
		}
		out = o
	}

	s := w.newSurface()
	role := w.layerShell.GetLayerSurface(s.surf, out, layer.Layer(p.Layer), p.Namespace)
	ls := layerSurface{surface: s, role: role}
	ls.SetSize(size)
	ls.SetAnchor(p.Anchor)
	ls.SetExclusiveZone(p.ExclusiveZone)
	ls.SetMargin(p.Margin)
	ls.SetKeyboardInteractivity(p.KeyboardInteractivity)

	obj := s.ObjectID()
	role.Configure = func(serial, width, height uint32) {
		role.AckConfigure(serial)
		w.emit(LayerConfigure{Object: obj, Size: Size{Width: width, Height: height}})
	}
	role.Closed = func() {
		w.emit(LayerClosed{Object: obj})
	}

	s.surf.Commit()
	return &ls, nil
}

func (w *Wayland) positioner(p PositionerParams) *xdg.Positioner {
	pos := w.wmBase.CreatePositioner()
	pos.SetSize(int32(p.Size.X), int32(p.Size.Y))
	pos.SetAnchorRect(p.AnchorRect)
	pos.SetAnchor(xdg.Anchor(p.Anchor))
	pos.SetGravity(xdg.Anchor(p.Gravity))
	pos.SetConstraintAdjustment(xdg.ConstraintAdjustment(p.ConstraintAdjustment))
	pos.SetOffset(int32(p.Offset.X), int32(p.Offset.Y))
	if p.Reactive && (w.wmBaseVersion >= 3) {
		pos.SetReactive()
	}
	return pos
}

func (w *Wayland) CreatePopup(parent Surface, p PopupParams) (Popup, error) {
	if !p.Positioner.Valid() {
		return nil, fmt.Errorf("%w: size %v, anchor rectangle %v", ErrPositionerCreationFailed, p.Positioner.Size, p.Positioner.AnchorRect)
	}

	var getPopup func(xs *xdg.Surface, pos *xdg.Positioner) *xdg.Popup
	switch parent := parent.(type) {
	case *layerSurface:
		getPopup = func(xs *xdg.Surface, pos *xdg.Positioner) *xdg.Popup {
			popup := xs.GetPopup(nil, pos)
			parent.role.GetPopup(popup)
			return popup
		}
	case *popupSurface:
		getPopup = func(xs *xdg.Surface, pos *xdg.Positioner) *xdg.Popup {
			return xs.GetPopup(parent.xdg, pos)
		}
	case *windowSurface:
		getPopup = func(xs *xdg.Surface, pos *xdg.Positioner) *xdg.Popup {
			return xs.GetPopup(parent.xdg, pos)
		}
	default:
		return nil, fmt.Errorf("%w: %T cannot parent a popup", ErrParentMissing, parent)
	}

	s := w.newSurface()
	xs := w.wmBase.GetXdgSurface(s.surf)
	pos := w.positioner(p.Positioner)
	role := getPopup(xs, pos)
	pos.Destroy()

	obj := s.ObjectID()
	var geometry image.Rectangle
	role.Configure = func(r image.Rectangle) { geometry = r }
	role.Done = func() { w.emit(PopupDone{Object: obj}) }
	xs.Configure = func(serial uint32) {
		xs.AckConfigure(serial)
		w.emit(PopupConfigure{Object: obj, Geometry: geometry})
	}

	if p.Grab {
		if (w.seat != nil) && (w.serial != 0) {
			role.Grab(w.seat, w.serial)
		} else {
			w.log.Debug("popup grab requested without input serial", zap.Uint32("object", uint32(obj)))
		}
	}

	s.surf.Commit()
	return &popupSurface{surface: s, xdg: xs, role: role}, nil
}

func (w *Wayland) CreateWindow(p WindowParams) (Window, error) {
	s := w.newSurface()
	xs := w.wmBase.GetXdgSurface(s.surf)
	role := xs.GetToplevel()
	if p.Title != "" {
		role.SetTitle(p.Title)
	}
	if p.AppID != "" {
		role.SetAppID(p.AppID)
	}

	obj := s.ObjectID()
	var size Size
	role.Configure = func(width, height int32, states []byte) {
		size = Size{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))}
	}
	role.Close = func() { w.emit(WindowClose{Object: obj}) }
	xs.Configure = func(serial uint32) {
		xs.AckConfigure(serial)
		w.emit(WindowConfigure{Object: obj, Size: size})
	}

	s.surf.Commit()
	return &windowSurface{surface: s, xdg: xs, role: role}, nil
}

func (w *Wayland) CreateLockSurface(id OutputID) (LockSurface, error) {
	if w.lock == nil {
		return nil, fmt.Errorf("%w: no session lock", ErrObjectCreationRejected)
	}
	out, err := w.output(id)
	if err != nil {
		return nil, err
	}

	s := w.newSurface()
	role := w.lock.GetLockSurface(s.surf, out)

	obj := s.ObjectID()
	role.Configure = func(serial, width, height uint32) {
		role.AckConfigure(serial)
		w.emit(LockConfigure{Object: obj, Size: Size{Width: width, Height: height}})
	}

	return &lockSurface{surface: s, role: role}, nil
}

func (w *Wayland) Lock() error {
	if w.lockManager == nil {
		return fmt.Errorf("%w: ext_session_lock_manager_v1", ErrExtensionUnavailable)
	}
	if w.lock != nil {
		return errors.New("session lock already requested")
	}

	l := w.lockManager.Lock()
	l.Locked = func() {
		w.locked = true
		w.emit(Locked{})
	}
	l.Finished = func() {
		w.emit(LockFinished{})
	}
	w.lock = l
	return nil
}

func (w *Wayland) Unlock() error {
	if w.lock == nil {
		return nil
	}

	if w.locked {
		w.lock.UnlockAndDestroy()
	} else {
		w.lock.Destroy()
	}
	w.lock = nil
	w.locked = false
	return nil
}

func (w *Wayland) RequestActivationToken(appID string, window Surface, done func(string)) error {
	if w.activation == nil {
		return fmt.Errorf("%w: xdg_activation_v1", ErrExtensionUnavailable)
	}

	token := w.activation.GetActivationToken()
	if appID != "" {
		token.SetAppID(appID)
	}
	if s, ok := window.(baseSurface); ok {
		token.SetSurface(s.base().surf)
	}
	if (w.seat != nil) && (w.serial != 0) {
		token.SetSerial(w.serial, w.seat)
	}
	token.Done = func(t string) {
		token.Destroy()
		done(t)
	}
	token.Commit()
	return nil
}

func (w *Wayland) Activate(token string, window Surface) error {
	if w.activation == nil {
		return fmt.Errorf("%w: xdg_activation_v1", ErrExtensionUnavailable)
	}
	s, ok := window.(baseSurface)
	if !ok {
		return fmt.Errorf("%w: %T cannot be activated", ErrObjectCreationRejected, window)
	}

	w.activation.Activate(token, s.base().surf)
	return nil
}
