package shell

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"

	"deedles.dev/wlshell/internal/cq"
	"go.uber.org/zap"
)

// fakeBackend records every protocol request as a string of the form
// "object.request(args)".
type fakeBackend struct {
	m      sync.Mutex
	calls  []string
	sink   func(Event)
	events chan []func() error
	nextID ObjectID

	fractional bool
	activation bool
	holdTokens bool
	held       []func(string)
	reuseID    ObjectID
	createErr  error
	closed     bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		events: make(chan []func() error),
		nextID: 10,
	}
}

func (b *fakeBackend) record(obj ObjectID, format string, args ...any) {
	b.m.Lock()
	defer b.m.Unlock()

	b.calls = append(b.calls, fmt.Sprintf("%v.%v", obj, fmt.Sprintf(format, args...)))
}

// takeCalls returns the calls recorded since the last call to
// takeCalls.
func (b *fakeBackend) takeCalls() []string {
	b.m.Lock()
	defer b.m.Unlock()

	calls := b.calls
	b.calls = nil
	return calls
}

func (b *fakeBackend) newSurface() *fakeSurface {
	id := b.nextID
	if b.reuseID != 0 {
		id = b.reuseID
	} else {
		b.nextID++
	}
	return &fakeSurface{b: b, id: id, fractional: b.fractional}
}

func (b *fakeBackend) SetSink(sink func(Event)) {
	b.sink = sink
}

func (b *fakeBackend) Events() <-chan []func() error {
	return b.events
}

func (b *fakeBackend) Dispatch(batch []func() error) error {
	return errors.Join(cq.Flush(batch)...)
}

func (b *fakeBackend) Flush() error {
	return nil
}

func (b *fakeBackend) Roundtrip() error {
	b.record(0, "roundtrip()")
	return nil
}

func (b *fakeBackend) Close() error {
	b.m.Lock()
	defer b.m.Unlock()

	b.closed = true
	return nil
}

func (b *fakeBackend) CreateLayerSurface(p LayerParams, size Size) (LayerSurface, error) {
	if b.createErr != nil {
		return nil, b.createErr
	}
	s := b.newSurface()
	b.record(s.id, "create_layer(%v, %v, %q)", size.Width, size.Height, p.Namespace)
	return s, nil
}

func (b *fakeBackend) CreatePopup(parent Surface, p PopupParams) (Popup, error) {
	if b.createErr != nil {
		return nil, b.createErr
	}
	s := b.newSurface()
	b.record(s.id, "create_popup(%v)", parent.ObjectID())
	return s, nil
}

func (b *fakeBackend) CreateWindow(p WindowParams) (Window, error) {
	if b.createErr != nil {
		return nil, b.createErr
	}
	s := b.newSurface()
	b.record(s.id, "create_window(%q)", p.Title)
	return s, nil
}

func (b *fakeBackend) CreateLockSurface(output OutputID) (LockSurface, error) {
	if b.createErr != nil {
		return nil, b.createErr
	}
	s := b.newSurface()
	b.record(s.id, "create_lock_surface(%v)", output)
	return s, nil
}

func (b *fakeBackend) Lock() error {
	b.record(0, "lock()")
	return nil
}

func (b *fakeBackend) Unlock() error {
	b.record(0, "unlock()")
	return nil
}

func (b *fakeBackend) RequestActivationToken(appID string, window Surface, done func(string)) error {
	if !b.activation {
		return ErrExtensionUnavailable
	}
	b.record(0, "activation_token(%q)", appID)
	if b.holdTokens {
		b.m.Lock()
		defer b.m.Unlock()

		b.held = append(b.held, done)
		return nil
	}
	done("token:" + appID)
	return nil
}

func (b *fakeBackend) Activate(token string, window Surface) error {
	if !b.activation {
		return ErrExtensionUnavailable
	}
	b.record(window.ObjectID(), "activate(%q)", token)
	return nil
}

type fakeSurface struct {
	b          *fakeBackend
	id         ObjectID
	fractional bool
}

func (s *fakeSurface) ObjectID() ObjectID { return s.id }
func (s *fakeSurface) Frame() { s.b.record(s.id, "frame()") }
func (s *fakeSurface) Commit() { s.b.record(s.id, "commit()") }
func (s *fakeSurface) HasFractionalScale() bool { return s.fractional }
func (s *fakeSurface) Destroy() { s.b.record(s.id, "destroy()") }

func (s *fakeSurface) Attach(img image.Image) error {
	s.b.record(s.id, "attach(%v)", img.Bounds().Size())
	return nil
}

func (s *fakeSurface) SetBufferScale(scale int32) {
	s.b.record(s.id, "set_buffer_scale(%v)", scale)
}

func (s *fakeSurface) SetViewportDestination(width, height int32) {
	s.b.record(s.id, "set_destination(%v, %v)", width, height)
}

func (s *fakeSurface) SetSize(size Size) {
	s.b.record(s.id, "set_size(%v, %v)", size.Width, size.Height)
}

func (s *fakeSurface) SetAnchor(anchor Anchor) {
	s.b.record(s.id, "set_anchor(%v)", uint32(anchor))
}

func (s *fakeSurface) SetExclusiveZone(zone int32) {
	s.b.record(s.id, "set_exclusive_zone(%v)", zone)
}

func (s *fakeSurface) SetMargin(m Margin) {
	s.b.record(s.id, "set_margin(%v, %v, %v, %v)", m.Top, m.Right, m.Bottom, m.Left)
}

func (s *fakeSurface) SetKeyboardInteractivity(ki KeyboardInteractivity) {
	s.b.record(s.id, "set_keyboard_interactivity(%v)", uint32(ki))
}

func (s *fakeSurface) SetLayer(l Layer) {
	s.b.record(s.id, "set_layer(%v)", uint32(l))
}

func (s *fakeSurface) Reposition(p PositionerParams, token uint32) {
	s.b.record(s.id, "reposition(%v, %v)", p.Size, token)
}

func (s *fakeSurface) SetWindowGeometry(r image.Rectangle) {
	s.b.record(s.id, "set_window_geometry(%v)", r)
}

func (s *fakeSurface) SetTitle(title string) {
	s.b.record(s.id, "set_title(%q)", title)
}

// notes collects notifications sent by a dispatcher under test.
type notes struct {
	list []Notification
}

func (n *notes) emit(note Notification) {
	n.list = append(n.list, note)
}

func (n *notes) take() []Notification {
	list := n.list
	n.list = nil
	return list
}

func newTestDispatcher(t *testing.T, config Config) (*dispatcher, *fakeBackend, *notes) {
	t.Helper()

	backend := newFakeBackend()
	var n notes
	d := newDispatcher(backend, config, zap.NewNop(), n.emit)
	return d, backend, &n
}
