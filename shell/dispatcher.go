package shell

import (
	"errors"
	"fmt"
	"image"

	"deedles.dev/wlshell/internal/set"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type lockState int

const (
	lockNone lockState = iota
	lockRequested
	lockActive
)

// pendingPopup is a popup creation that is waiting for its parent to
// become the topmost surface.
type pendingPopup struct {
	cmd               createPopup
	attemptsRemaining int
}

// dispatcher owns all surface state. It is driven by exactly one
// goroutine, either through run or, in tests, by calling its handle
// methods directly.
type dispatcher struct {
	backend Backend
	config  Config
	log     *zap.Logger
	emit    func(Notification)

	registry  *Registry
	throttle  *Throttle
	popups    PopupStack
	records   map[SurfaceID]*record
	destroyed set.Set[SurfaceID]
	dirty     set.Set[SurfaceID]
	outputs   set.Set[OutputID]
	pending   *pendingPopup

	lock            lockState
	repositionToken uint32
}

func newDispatcher(backend Backend, config Config, log *zap.Logger, emit func(Notification)) *dispatcher {
	d := dispatcher{
		backend:   backend,
		config:    config,
		log:       log,
		emit:      emit,
		registry:  NewRegistry(),
		throttle:  NewThrottle(),
		records:   make(map[SurfaceID]*record),
		destroyed: set.New[SurfaceID](),
		dirty:     set.New[SurfaceID](),
		outputs:   set.New[OutputID](),
	}
	backend.SetSink(d.handleEvent)
	return &d
}

func (d *dispatcher) fail(id SurfaceID, err error) {
	d.log.Warn("command failed", zap.Stringer("surface", id), zap.Error(err))
	d.emit(Failed{ID: id, Err: err})
}

func (d *dispatcher) handleCommand(cmd command) {
	switch cmd := cmd.(type) {
	case createLayerSurface:
		d.createLayerSurface(cmd)
	case createPopup:
		d.createPopup(cmd)
	case createLockSurface:
		d.createLockSurface(cmd)
	case createWindow:
		d.createWindow(cmd)
	case resize:
		d.resize(cmd)
	case setAnchor:
		d.updateLayer(cmd.ID, func(rec *layerRecord) bool {
			if rec.anchor == cmd.Anchor {
				return false
			}
			rec.anchor = cmd.Anchor
			rec.handle.SetAnchor(cmd.Anchor)
			return true
		})
	case setMargin:
		d.updateLayer(cmd.ID, func(rec *layerRecord) bool {
			if rec.margin == cmd.Margin {
				return false
			}
			rec.margin = cmd.Margin
			rec.handle.SetMargin(cmd.Margin)
			return true
		})
	case setExclusiveZone:
		d.updateLayer(cmd.ID, func(rec *layerRecord) bool {
			if rec.exclusiveZone == cmd.Zone {
				return false
			}
			rec.exclusiveZone = cmd.Zone
			rec.handle.SetExclusiveZone(cmd.Zone)
			return true
		})
	case setKeyboardInteractivity:
		d.updateLayer(cmd.ID, func(rec *layerRecord) bool {
			if rec.keyboardInteractivity == cmd.Value {
				return false
			}
			rec.keyboardInteractivity = cmd.Value
			rec.handle.SetKeyboardInteractivity(cmd.Value)
			return true
		})
	case setLayer:
		d.updateLayer(cmd.ID, func(rec *layerRecord) bool {
			if rec.layer == cmd.Layer {
				return false
			}
			rec.layer = cmd.Layer
			rec.handle.SetLayer(cmd.Layer)
			return true
		})
	case destroy:
		rec, ok := d.records[cmd.ID]
		if !ok {
			d.log.Debug("destroy of unknown surface", zap.Stringer("surface", cmd.ID))
			return
		}
		d.destroy(rec)
	case dropped:
		d.destroyed.Remove(cmd.ID)
		d.retryPending()
	case requestRedraw:
		if rec, ok := d.records[cmd.ID]; ok {
			d.throttle.RequestRedraw(rec.obj)
		}
	case present:
		if rec, ok := d.records[cmd.ID]; ok {
			rec.frame = cmd.Image
			d.throttle.RequestRedraw(rec.obj)
		}
	case lock:
		d.requestLock()
	case unlock:
		d.unlock()
	case requestActivationToken:
		d.requestActivationToken(cmd)
	case activate:
		d.activate(cmd)
	default:
		d.log.Error("unknown command", zap.String("type", fmt.Sprintf("%T", cmd)))
	}
}

// register adds a newly created surface. On failure the handle is
// destroyed and a Failed notification is sent.
func (d *dispatcher) register(rec *record) bool {
	rec.obj = rec.handle.ObjectID()
	_, err := d.registry.Register(rec.obj, rec.kind, rec.id)
	if err != nil {
		rec.handle.Destroy()
		d.fail(rec.id, err)
		return false
	}

	d.records[rec.id] = rec
	d.throttle.Track(rec.obj)
	d.emit(Created{ID: rec.id, Kind: rec.kind, Common: rec.common})
	return true
}

func (d *dispatcher) exists(id SurfaceID) bool {
	if _, ok := d.records[id]; ok {
		d.fail(id, CollisionError{ID: id})
		return true
	}
	return false
}

func (d *dispatcher) createLayerSurface(cmd createLayerSurface) {
	if d.exists(cmd.ID) {
		return
	}

	p := cmd.Params
	if p.Namespace == "" {
		p.Namespace = d.config.Layer.Namespace
	}

	handle, err := d.backend.CreateLayerSurface(p, layerRequestSize(p.Anchor, p.Size))
	if err != nil {
		d.fail(cmd.ID, fmt.Errorf("create layer surface: %w", err))
		return
	}

	d.register(&record{
		id:     cmd.ID,
		kind:   KindLayer,
		common: newCommon(p.Size, handle.HasFractionalScale()),
		handle: handle,
		layer: &layerRecord{
			handle:                handle,
			anchor:                p.Anchor,
			layer:                 p.Layer,
			keyboardInteractivity: p.KeyboardInteractivity,
			margin:                p.Margin,
			exclusiveZone:         p.ExclusiveZone,
		},
	})
}

func (d *dispatcher) createWindow(cmd createWindow) {
	if d.exists(cmd.ID) {
		return
	}

	handle, err := d.backend.CreateWindow(cmd.Params)
	if err != nil {
		d.fail(cmd.ID, fmt.Errorf("create window: %w", err))
		return
	}

	d.register(&record{
		id:     cmd.ID,
		kind:   KindWindow,
		common: newCommon(cmd.Params.Size, handle.HasFractionalScale()),
		handle: handle,
		window: &windowRecord{handle: handle},
	})
}

func (d *dispatcher) createLockSurface(cmd createLockSurface) {
	if d.lock == lockNone {
		d.log.Info("lock surface requested without a session lock", zap.Stringer("surface", cmd.ID))
		return
	}
	if d.exists(cmd.ID) {
		return
	}

	handle, err := d.backend.CreateLockSurface(cmd.Output)
	if err != nil {
		d.fail(cmd.ID, fmt.Errorf("create lock surface: %w", err))
		return
	}

	d.register(&record{
		id:     cmd.ID,
		kind:   KindLock,
		common: newCommon(Size{}, handle.HasFractionalScale()),
		handle: handle,
		lock:   &lockRecord{output: cmd.Output},
	})
}

func (d *dispatcher) createPopup(cmd createPopup) {
	if d.exists(cmd.ID) {
		return
	}

	parent, err := d.popupParent(cmd.Params.Parent)
	if err != nil {
		d.fail(cmd.ID, err)
		return
	}

	if !d.popupBlocked(parent) {
		d.finishPopup(cmd, parent)
		return
	}

	d.destroyMismatched(parent)
	if d.pending != nil {
		d.fail(d.pending.cmd.ID, ErrPopupSuperseded)
	}
	d.pending = &pendingPopup{
		cmd:               cmd,
		attemptsRemaining: d.config.Popup.RetryAttempts,
	}
	d.log.Debug("popup deferred",
		zap.Stringer("surface", cmd.ID),
		zap.Stringer("parent", parent.id),
		zap.Int("destroyed", len(d.destroyed)),
	)
}

func (d *dispatcher) popupParent(id SurfaceID) (*record, error) {
	parent, ok := d.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrParentMissing, id)
	}
	if parent.kind == KindLock {
		return nil, fmt.Errorf("%w: %v is a lock surface", ErrParentMissing, id)
	}
	return parent, nil
}

// popupBlocked reports whether a popup cannot yet be created on
// parent, either because a destruction is still in flight or because
// parent is not the topmost popup.
func (d *dispatcher) popupBlocked(parent *record) bool {
	if len(d.destroyed) > 0 {
		return true
	}
	top, ok := d.popups.Top()
	return ok && (top != parent.obj)
}

// destroyMismatched destroys popups from the top of the stack until
// parent is the topmost popup or no popups remain.
func (d *dispatcher) destroyMismatched(parent *record) {
	for {
		top, ok := d.popups.Top()
		if !ok || (top == parent.obj) {
			return
		}

		sid, _ := d.registry.Resolve(top)
		rec, ok := d.records[sid]
		if !ok {
			d.log.Error("popup stack out of sync with registry", zap.Uint32("object", uint32(top)))
			d.popups.Remove(top)
			continue
		}
		d.log.Debug("destroying mismatched popup", zap.Stringer("surface", sid))
		d.destroy(rec)
	}
}

func (d *dispatcher) finishPopup(cmd createPopup, parent *record) {
	handle, err := d.backend.CreatePopup(parent.handle, cmd.Params)
	if err != nil {
		d.fail(cmd.ID, fmt.Errorf("create popup: %w", err))
		return
	}

	ref := ParentRef{Kind: parent.kind, ID: parent.obj}
	rec := record{
		id:     cmd.ID,
		kind:   KindPopup,
		common: newCommon(Size{}, handle.HasFractionalScale()),
		handle: handle,
		popup: &popupRecord{
			handle:     handle,
			parent:     ref,
			positioner: cmd.Params.Positioner,
		},
	}
	if d.register(&rec) {
		d.popups.Push(rec.obj, ref)
	}
}

// retryPending creates the pending popup if nothing blocks it any
// more. It reports whether the pending popup was resolved, either by
// being created or by failing.
func (d *dispatcher) retryPending() bool {
	if d.pending == nil {
		return false
	}
	cmd := d.pending.cmd

	parent, err := d.popupParent(cmd.Params.Parent)
	if err != nil {
		d.pending = nil
		d.fail(cmd.ID, err)
		return true
	}
	if d.popupBlocked(parent) {
		d.destroyMismatched(parent)
		return false
	}

	d.pending = nil
	d.finishPopup(cmd, parent)
	return true
}

// tick is called every retry delay while a popup is pending.
func (d *dispatcher) tick() {
	if d.pending == nil {
		return
	}
	if d.retryPending() {
		return
	}

	d.pending.attemptsRemaining--
	if d.pending.attemptsRemaining <= 0 {
		cmd := d.pending.cmd
		d.pending = nil
		d.fail(cmd.ID, fmt.Errorf("%w: parent %v did not become topmost after %v retries", ErrParentMissing, cmd.Params.Parent, d.config.Popup.RetryAttempts))
	}
}

// destroy destroys rec along with every popup nested on it, deepest
// first.
func (d *dispatcher) destroy(rec *record) {
	var order []ObjectID
	if rec.kind == KindPopup {
		order = d.popups.Cascade(rec.obj)
		if len(order) == 0 {
			order = []ObjectID{rec.obj}
		}
	} else {
		order = append(d.popups.CascadeRoot(ParentRef{Kind: rec.kind, ID: rec.obj}), rec.obj)
	}

	for _, obj := range order {
		d.remove(obj)
	}
}

func (d *dispatcher) remove(obj ObjectID) {
	sid, ok := d.registry.Forget(obj)
	if !ok {
		return
	}
	rec := d.records[sid]
	delete(d.records, sid)

	d.popups.Remove(obj)
	d.throttle.Forget(obj)
	d.dirty.Remove(sid)
	d.destroyed.Add(sid)
	if rec != nil {
		rec.handle.Destroy()
	}

	d.emit(Closed{ID: sid})
}

func (d *dispatcher) updateLayer(id SurfaceID, update func(*layerRecord) bool) {
	rec, ok := d.records[id]
	if !ok {
		d.log.Debug("update of unknown surface", zap.Stringer("surface", id))
		return
	}
	if rec.layer == nil {
		d.log.Warn("layer property set on non-layer surface", zap.Stringer("surface", id), zap.Stringer("kind", rec.kind))
		return
	}

	if update(rec.layer) {
		d.dirty.Add(id)
	}
}

func (d *dispatcher) resize(cmd resize) {
	rec, ok := d.records[cmd.ID]
	if !ok {
		d.log.Debug("resize of unknown surface", zap.Stringer("surface", cmd.ID))
		return
	}
	if rec.kind == KindLock {
		d.log.Debug("ignoring resize of lock surface", zap.Stringer("surface", cmd.ID))
		return
	}
	if !rec.common.setRequested(cmd.Size) {
		return
	}

	switch rec.kind {
	case KindLayer:
		rec.layer.handle.SetSize(layerRequestSize(rec.layer.anchor, cmd.Size))
		if rec.configured {
			d.configured(rec, layerConfiguredSize(cmd.Size, rec.layer.lastConfigure), false)
		}

	case KindPopup:
		size := image.Pt(int(max(cmd.Size.Width, 1)), int(max(cmd.Size.Height, 1)))
		rec.popup.positioner.Size = size
		rec.popup.handle.SetWindowGeometry(image.Rectangle{Max: size})
		d.repositionToken++
		rec.popup.handle.Reposition(rec.popup.positioner, d.repositionToken)

	case KindWindow:
		size := windowConfiguredSize(cmd.Size, Size{}, rec.common.LogicalSize())
		if rec.configured {
			d.configured(rec, size, false)
		} else {
			rec.common.setLogicalSize(size)
		}
	}

	d.dirty.Add(cmd.ID)
}

func windowConfiguredSize(req, conf Size, prev image.Point) image.Point {
	pick := func(req, conf uint32, prev int) int {
		switch {
		case req > 0:
			return int(req)
		case conf > 0:
			return int(conf)
		default:
			return max(prev, 1)
		}
	}
	return image.Pt(pick(req.Width, conf.Width, prev.X), pick(req.Height, conf.Height, prev.Y))
}

// configured updates rec's logical size and sends a Configured
// notification.
func (d *dispatcher) configured(rec *record, size image.Point, first bool) {
	rec.common.setLogicalSize(size)
	if rec.common.Snapshot().Viewport {
		rec.handle.SetViewportDestination(int32(size.X), int32(size.Y))
	}
	d.emit(Configured{
		ID:    rec.id,
		Size:  size,
		Scale: rec.common.Scale(),
		First: first,
	})
}

// configure handles a configure event for any kind of surface.
func (d *dispatcher) configure(rec *record, size image.Point) {
	first := !rec.configured
	rec.configured = true
	d.configured(rec, size, first)
}

func (d *dispatcher) requestLock() {
	if d.lock != lockNone {
		d.log.Info("session lock already requested")
		return
	}

	err := d.backend.Lock()
	if err != nil {
		d.log.Warn("session lock failed", zap.Error(err))
		return
	}
	d.lock = lockRequested
}

func (d *dispatcher) unlock() {
	if d.lock == lockNone {
		return
	}
	d.endLock()

	err := d.backend.Roundtrip()
	if err != nil {
		d.log.Warn("roundtrip after unlock failed", zap.Error(err))
	}
}

// endLock destroys all lock surfaces and the lock itself.
func (d *dispatcher) endLock() {
	var ids []SurfaceID
	for id, rec := range d.records {
		if rec.kind == KindLock {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		d.destroy(d.records[id])
	}

	err := d.backend.Unlock()
	if err != nil {
		d.log.Warn("unlock failed", zap.Error(err))
	}

	wasActive := d.lock == lockActive
	d.lock = lockNone
	if wasActive {
		d.emit(SessionUnlocked{})
	}
}

func (d *dispatcher) requestActivationToken(cmd requestActivationToken) {
	reply := func(token string) {
		select {
		case cmd.Reply <- token:
		default:
		}
	}

	var window Surface
	if cmd.Window != NoSurface {
		rec, ok := d.records[cmd.Window]
		if !ok {
			d.log.Debug("activation token for unknown surface", zap.Stringer("surface", cmd.Window))
			reply("")
			return
		}
		window = rec.handle
	}

	err := d.backend.RequestActivationToken(cmd.AppID, window, reply)
	if err != nil {
		if !errors.Is(err, ErrExtensionUnavailable) {
			d.log.Warn("activation token request failed", zap.Error(err))
		}
		reply("")
	}
}

func (d *dispatcher) activate(cmd activate) {
	rec, ok := d.records[cmd.Window]
	if !ok {
		d.log.Debug("activation of unknown surface", zap.Stringer("surface", cmd.Window))
		return
	}

	err := d.backend.Activate(cmd.Token, rec.handle)
	if err != nil && !errors.Is(err, ErrExtensionUnavailable) {
		d.log.Warn("activation failed", zap.Error(err))
	}
}

// unmappable reports whether committing obj now would leave it
// without a buffer. The compositor does not send frame callbacks to
// such a surface, so it is kept Ready until it is configured and has
// a frame to attach.
func (d *dispatcher) unmappable(obj ObjectID) bool {
	sid, ok := d.registry.Resolve(obj)
	if !ok {
		return false
	}
	rec, ok := d.records[sid]
	if !ok {
		return false
	}
	return !rec.configured || (!rec.mapped && (rec.frame == nil))
}

// lookup resolves the target of a protocol event. Events for objects
// that are no longer registered are dropped.
func (d *dispatcher) lookup(obj ObjectID, ev Event) (*record, bool) {
	sid, ok := d.registry.Resolve(obj)
	if !ok {
		d.log.Debug("event for unknown object", zap.Uint32("object", uint32(obj)), zap.String("event", fmt.Sprintf("%T", ev)))
		return nil, false
	}
	rec, ok := d.records[sid]
	return rec, ok
}

func (d *dispatcher) handleEvent(ev Event) {
	switch ev := ev.(type) {
	case LayerConfigure:
		rec, ok := d.lookup(ev.Object, ev)
		if !ok || (rec.layer == nil) {
			return
		}
		rec.layer.lastConfigure = ev.Size
		d.configure(rec, layerConfiguredSize(rec.common.requestedSize(), ev.Size))

	case PopupConfigure:
		rec, ok := d.lookup(ev.Object, ev)
		if !ok || (rec.popup == nil) {
			return
		}
		rec.popup.lastConfigure = ev.Geometry
		d.configure(rec, image.Pt(max(ev.Geometry.Dx(), 1), max(ev.Geometry.Dy(), 1)))

	case LockConfigure:
		rec, ok := d.lookup(ev.Object, ev)
		if !ok || (rec.lock == nil) {
			return
		}
		rec.lock.lastConfigure = ev.Size
		d.configure(rec, image.Pt(int(max(ev.Size.Width, 1)), int(max(ev.Size.Height, 1))))

	case WindowConfigure:
		rec, ok := d.lookup(ev.Object, ev)
		if !ok || (rec.window == nil) {
			return
		}
		size := windowConfiguredSize(rec.common.requestedSize(), ev.Size, rec.common.LogicalSize())
		rec.window.lastConfigure = size
		d.configure(rec, size)

	case LayerClosed:
		if rec, ok := d.lookup(ev.Object, ev); ok {
			d.destroy(rec)
		}

	case PopupDone:
		if rec, ok := d.lookup(ev.Object, ev); ok {
			d.destroy(rec)
		}

	case WindowClose:
		if rec, ok := d.lookup(ev.Object, ev); ok {
			d.emit(CloseRequested{ID: rec.id})
		}

	case FrameDone:
		d.throttle.FrameDone(ev.Object)

	case PreferredScale:
		rec, ok := d.lookup(ev.Object, ev)
		if !ok {
			return
		}
		scale := float64(ev.Scale120) / 120
		if !rec.common.setFractionalScale(scale) {
			return
		}
		if rec.common.Snapshot().Viewport {
			size := rec.common.LogicalSize()
			rec.handle.SetViewportDestination(int32(size.X), int32(size.Y))
			d.dirty.Add(rec.id)
		}
		d.emit(ScaleChanged{ID: rec.id, Scale: scale})

	case PreferredBufferScale:
		rec, ok := d.lookup(ev.Object, ev)
		if !ok || rec.handle.HasFractionalScale() {
			return
		}
		if !rec.common.setBufferScale(ev.Scale) {
			return
		}
		rec.handle.SetBufferScale(ev.Scale)
		d.dirty.Add(rec.id)
		d.emit(ScaleChanged{ID: rec.id, Scale: float64(ev.Scale)})

	case Locked:
		if d.lock != lockRequested {
			d.log.Warn("unexpected session lock", zap.Int("state", int(d.lock)))
		}
		d.lock = lockActive
		d.emit(SessionLocked{})

	case LockFinished:
		if d.lock != lockNone {
			d.endLock()
		}

	case OutputDone:
		if d.outputs.Has(ev.Output.ID) {
			d.emit(OutputUpdated{Output: ev.Output})
			return
		}
		d.outputs.Add(ev.Output.ID)
		d.emit(OutputAdded{Output: ev.Output})

	case OutputGlobalRemoved:
		if d.outputs.Remove(ev.ID) {
			d.emit(OutputRemoved{ID: ev.ID})
		}

	default:
		d.log.Warn("unknown event", zap.String("type", fmt.Sprintf("%T", ev)))
	}
}

// redraw commits every Ready surface, attaching its pending frame if
// it has one, and then commits surfaces with changed state.
func (d *dispatcher) redraw() {
	for _, obj := range d.throttle.TakeReady(d.unmappable) {
		sid, ok := d.registry.Resolve(obj)
		if !ok {
			continue
		}
		rec := d.records[sid]

		if rec.frame != nil {
			err := rec.handle.Attach(rec.frame)
			if err != nil {
				d.log.Error("attach frame", zap.Stringer("surface", sid), zap.Error(err))
			} else {
				rec.mapped = true
			}
			rec.frame = nil
		}

		rec.handle.Frame()
		rec.handle.Commit()
		d.dirty.Remove(sid)
		d.emit(RedrawRequested{ID: sid})
	}

	if len(d.dirty) == 0 {
		return
	}
	ids := make([]SurfaceID, 0, len(d.dirty))
	for id := range d.dirty {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if rec, ok := d.records[id]; ok {
			rec.handle.Commit()
		}
	}
	clear(d.dirty)
}
