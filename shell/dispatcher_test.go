package shell

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var notesOpts = cmp.Options{
	cmpopts.IgnoreFields(Created{}, "Common"),
	cmpopts.EquateErrors(),
	cmpopts.EquateEmpty(),
}

var testPositioner = PositionerParams{
	Size:       image.Pt(100, 50),
	AnchorRect: image.Rect(0, 0, 10, 10),
	Anchor:     PositionerAnchorBottom,
	Gravity:    PositionerAnchorBottom,
}

func checkNotes(t *testing.T, n *notes, want ...Notification) {
	t.Helper()
	if diff := cmp.Diff(want, n.take(), notesOpts); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}
}

func checkCalls(t *testing.T, b *fakeBackend, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, b.takeCalls(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("requests (-want +got):\n%s", diff)
	}
}

func createLayer(t *testing.T, d *dispatcher, n *notes, p LayerParams) SurfaceID {
	t.Helper()

	id := NewSurfaceID()
	d.handleCommand(createLayerSurface{ID: id, Params: p})
	for _, note := range n.list {
		if c, ok := note.(Created); ok && (c.ID == id) {
			return id
		}
	}
	t.Fatalf("layer surface %v was not created: %#v", id, n.list)
	return NoSurface
}

func createTestPopup(t *testing.T, d *dispatcher, parent SurfaceID) SurfaceID {
	t.Helper()

	id := NewSurfaceID()
	d.handleCommand(createPopup{ID: id, Params: PopupParams{Parent: parent, Positioner: testPositioner}})
	return id
}

func TestLayerSurfaceConfigure(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	id := NewSurfaceID()
	d.handleCommand(createLayerSurface{ID: id, Params: LayerParams{
		Anchor: AnchorTop | AnchorLeft,
		Size:   Size{Height: 40},
	}})
	checkCalls(t, b, `10.create_layer(1, 40, "wlshell")`)
	checkNotes(t, n, Created{ID: id, Kind: KindLayer})

	d.handleEvent(LayerConfigure{Object: 10, Size: Size{Height: 40}})
	checkNotes(t, n, Configured{ID: id, Size: image.Pt(1, 40), Scale: 1, First: true})

	d.handleEvent(LayerConfigure{Object: 10, Size: Size{Width: 1920, Height: 40}})
	checkNotes(t, n, Configured{ID: id, Size: image.Pt(1920, 40), Scale: 1})

	if size := d.records[id].common.LogicalSize(); size != image.Pt(1920, 40) {
		t.Errorf("logical size: got %v", size)
	}
}

func TestLayerSize(t *testing.T) {
	tests := []struct {
		name   string
		anchor Anchor
		req    Size
		conf   Size
		sent   Size
		size   image.Point
	}{
		{
			name: "Unanchored",
			sent: Size{Width: 1, Height: 1},
			size: image.Pt(1, 1),
		},
		{
			name:   "TopBar",
			anchor: AnchorTop | AnchorLeft | AnchorRight,
			req:    Size{Height: 30},
			conf:   Size{Width: 2560, Height: 30},
			sent:   Size{Height: 30},
			size:   image.Pt(2560, 30),
		},
		{
			name:   "Fullscreen",
			anchor: AnchorTop | AnchorBottom | AnchorLeft | AnchorRight,
			conf:   Size{Width: 800, Height: 600},
			sent:   Size{},
			size:   image.Pt(800, 600),
		},
		{
			name:   "RequestWins",
			anchor: AnchorTop | AnchorBottom,
			req:    Size{Width: 50, Height: 70},
			conf:   Size{Width: 60, Height: 1000},
			sent:   Size{Width: 50, Height: 70},
			size:   image.Pt(50, 70),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if sent := layerRequestSize(test.anchor, test.req); sent != test.sent {
				t.Errorf("request: got %v, want %v", sent, test.sent)
			}
			if size := layerConfiguredSize(test.req, test.conf); size != test.size {
				t.Errorf("configured: got %v, want %v", size, test.size)
			}
		})
	}
}

func TestCreateFailed(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())
	b.createErr = ErrExtensionUnavailable

	id := NewSurfaceID()
	d.handleCommand(createLayerSurface{ID: id})
	checkNotes(t, n, Failed{ID: id, Err: ErrExtensionUnavailable})

	if d.registry.Len() != 0 {
		t.Errorf("registry has %v entries", d.registry.Len())
	}
}

func TestRegistryCollisionReported(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())
	b.reuseID = 10

	first := createLayer(t, d, n, LayerParams{})
	n.take()
	b.takeCalls()

	second := NewSurfaceID()
	d.handleCommand(createLayerSurface{ID: second})
	checkCalls(t, b, `10.create_layer(1, 1, "wlshell")`, "10.destroy()")
	checkNotes(t, n, Failed{ID: second, Err: ErrRegistryCollision})

	if sid, _ := d.registry.Resolve(10); sid != first {
		t.Errorf("object 10 resolves to %v, want %v", sid, first)
	}
}

func TestPopupMismatchedParent(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	layer := createLayer(t, d, n, LayerParams{})
	d.handleEvent(LayerConfigure{Object: 10, Size: Size{Width: 100, Height: 100}})
	blocking := createTestPopup(t, d, layer)
	n.take()
	b.takeCalls()

	popup := createTestPopup(t, d, layer)
	checkCalls(t, b, "11.destroy()")
	checkNotes(t, n, Closed{ID: blocking})
	if d.pending == nil {
		t.Fatal("popup was not deferred")
	}

	d.tick()
	checkCalls(t, b)
	checkNotes(t, n)

	d.handleCommand(dropped{ID: blocking})
	checkCalls(t, b, "12.create_popup(10)")
	checkNotes(t, n, Created{ID: popup, Kind: KindPopup})

	if d.pending != nil {
		t.Error("pending popup was not cleared")
	}
	if top, _ := d.popups.Top(); top != 12 {
		t.Errorf("top popup: got %v, want 12", top)
	}
}

func TestPopupNestedOnTop(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	layer := createLayer(t, d, n, LayerParams{})
	first := createTestPopup(t, d, layer)
	second := createTestPopup(t, d, first)
	checkCalls(t, b,
		`10.create_layer(1, 1, "wlshell")`,
		"11.create_popup(10)",
		"12.create_popup(11)",
	)
	checkNotes(t, n,
		Created{ID: layer, Kind: KindLayer},
		Created{ID: first, Kind: KindPopup},
		Created{ID: second, Kind: KindPopup},
	)

	if parent, _ := d.popups.Parent(12); parent != (ParentRef{Kind: KindPopup, ID: 11}) {
		t.Errorf("parent of 12: got %v", parent)
	}
}

func TestPopupParentMissing(t *testing.T) {
	d, _, n := newTestDispatcher(t, DefaultConfig())

	popup := createTestPopup(t, d, NewSurfaceID())
	checkNotes(t, n, Failed{ID: popup, Err: ErrParentMissing})
}

func popupChain(t *testing.T, d *dispatcher, n *notes, depth int) (SurfaceID, []SurfaceID) {
	t.Helper()

	layer := createLayer(t, d, n, LayerParams{})
	chain := make([]SurfaceID, 0, depth)
	parent := layer
	for i := 0; i < depth; i++ {
		parent = createTestPopup(t, d, parent)
		chain = append(chain, parent)
	}
	if d.popups.Len() != depth {
		t.Fatalf("created %v of %v popups", d.popups.Len(), depth)
	}
	n.take()
	return layer, chain
}

func TestPopupDestroyOrder(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())
	_, chain := popupChain(t, d, n, 3)
	b.takeCalls()

	d.handleCommand(destroy{ID: chain[0]})
	checkCalls(t, b, "13.destroy()", "12.destroy()", "11.destroy()")
	checkNotes(t, n,
		Closed{ID: chain[2]},
		Closed{ID: chain[1]},
		Closed{ID: chain[0]},
	)

	if d.popups.Len() != 0 {
		t.Errorf("%v popups left", d.popups.Len())
	}
	for _, id := range chain {
		if !d.destroyed.Has(id) {
			t.Errorf("%v is not marked destroyed", id)
		}
	}
}

func TestPopupDoneDestroysChildren(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())
	_, chain := popupChain(t, d, n, 3)
	b.takeCalls()

	d.handleEvent(PopupDone{Object: 12})
	checkCalls(t, b, "13.destroy()", "12.destroy()")
	checkNotes(t, n, Closed{ID: chain[2]}, Closed{ID: chain[1]})

	if top, _ := d.popups.Top(); top != 11 {
		t.Errorf("top popup: got %v, want 11", top)
	}
}

func TestDestroyRootCascades(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())
	layer, chain := popupChain(t, d, n, 2)
	b.takeCalls()

	d.handleEvent(LayerClosed{Object: 10})
	checkCalls(t, b, "12.destroy()", "11.destroy()", "10.destroy()")
	checkNotes(t, n, Closed{ID: chain[1]}, Closed{ID: chain[0]}, Closed{ID: layer})

	// Events for destroyed objects are dropped.
	d.handleEvent(LayerConfigure{Object: 10, Size: Size{Width: 5, Height: 5}})
	checkNotes(t, n)
}

func TestPopupMismatchedNestedParent(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())
	_, chain := popupChain(t, d, n, 3)
	b.takeCalls()

	// Only the popups above the parent are destroyed.
	popup := createTestPopup(t, d, chain[0])
	checkCalls(t, b, "13.destroy()", "12.destroy()")
	checkNotes(t, n, Closed{ID: chain[2]}, Closed{ID: chain[1]})

	d.handleCommand(dropped{ID: chain[2]})
	checkCalls(t, b)
	checkNotes(t, n)

	d.handleCommand(dropped{ID: chain[1]})
	checkCalls(t, b, "14.create_popup(11)")
	checkNotes(t, n, Created{ID: popup, Kind: KindPopup})
}

func TestPopupRetryBound(t *testing.T) {
	for _, attempts := range []int{1, 3, 5} {
		config := DefaultConfig()
		config.Popup.RetryAttempts = attempts
		d, _, n := newTestDispatcher(t, config)

		layer := createLayer(t, d, n, LayerParams{})
		createTestPopup(t, d, layer)
		n.take()

		popup := createTestPopup(t, d, layer)
		n.take()

		for i := 0; i < attempts-1; i++ {
			d.tick()
			if got := n.take(); len(got) != 0 {
				t.Fatalf("%v attempts: notifications after retry %v: %#v", attempts, i+1, got)
			}
		}

		d.tick()
		checkNotes(t, n, Failed{ID: popup, Err: ErrParentMissing})
		if d.pending != nil {
			t.Errorf("%v attempts: popup still pending", attempts)
		}

		d.tick()
		checkNotes(t, n)
	}
}

func TestPopupSuperseded(t *testing.T) {
	d, _, n := newTestDispatcher(t, DefaultConfig())

	layer := createLayer(t, d, n, LayerParams{})
	createTestPopup(t, d, layer)
	first := createTestPopup(t, d, layer)
	n.take()

	second := createTestPopup(t, d, layer)
	checkNotes(t, n, Failed{ID: first, Err: ErrPopupSuperseded})
	if (d.pending == nil) || (d.pending.cmd.ID != second) {
		t.Fatalf("pending popup: %#v", d.pending)
	}
}

func TestIdempotentResize(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	id := createLayer(t, d, n, LayerParams{Anchor: AnchorTop | AnchorLeft, Size: Size{Height: 40}})
	d.handleEvent(LayerConfigure{Object: 10, Size: Size{Height: 40}})
	n.take()
	b.takeCalls()

	d.handleCommand(resize{ID: id, Size: Size{Width: 100, Height: 40}})
	d.handleCommand(resize{ID: id, Size: Size{Width: 100, Height: 40}})
	d.redraw()
	checkCalls(t, b, "10.set_size(100, 40)", "10.commit()")
	checkNotes(t, n, Configured{ID: id, Size: image.Pt(100, 40), Scale: 1})

	d.handleCommand(resize{ID: id, Size: Size{Width: 100, Height: 40}})
	d.redraw()
	checkCalls(t, b)
	checkNotes(t, n)
}

func TestResizePopup(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	layer := createLayer(t, d, n, LayerParams{})
	popup := createTestPopup(t, d, layer)
	b.takeCalls()

	d.handleCommand(resize{ID: popup, Size: Size{Width: 200, Height: 80}})
	d.handleCommand(resize{ID: popup, Size: Size{Width: 200, Height: 90}})
	d.redraw()
	checkCalls(t, b,
		"11.set_window_geometry((0,0)-(200,80))",
		"11.reposition((200,80), 1)",
		"11.set_window_geometry((0,0)-(200,90))",
		"11.reposition((200,90), 2)",
		"11.commit()",
	)
}

func TestLayerSettersCoalesce(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	id := createLayer(t, d, n, LayerParams{Anchor: AnchorTop})
	b.takeCalls()

	d.handleCommand(setAnchor{ID: id, Anchor: AnchorTop | AnchorLeft | AnchorRight})
	d.handleCommand(setMargin{ID: id, Margin: Margin{Top: 1, Right: 2, Bottom: 3, Left: 4}})
	d.handleCommand(setMargin{ID: id, Margin: Margin{Top: 1, Right: 2, Bottom: 3, Left: 4}})
	d.handleCommand(setExclusiveZone{ID: id, Zone: 30})
	d.handleCommand(setKeyboardInteractivity{ID: id, Value: KeyboardInteractivityOnDemand})
	d.handleCommand(setLayer{ID: id, Layer: LayerOverlay})
	d.handleCommand(setAnchor{ID: id, Anchor: AnchorTop | AnchorLeft | AnchorRight})
	d.redraw()

	checkCalls(t, b,
		"10.set_anchor(13)",
		"10.set_margin(1, 2, 3, 4)",
		"10.set_exclusive_zone(30)",
		"10.set_keyboard_interactivity(2)",
		"10.set_layer(3)",
		"10.commit()",
	)
}

func TestRedrawThrottle(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	id := createLayer(t, d, n, LayerParams{})
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	b.takeCalls()

	// Nothing is committed before the first configure.
	d.handleCommand(present{ID: id, Image: img})
	d.redraw()
	checkCalls(t, b)

	// The frame presented early is attached right after it.
	d.handleEvent(LayerConfigure{Object: 10, Size: Size{Width: 10, Height: 10}})
	n.take()
	d.redraw()
	checkCalls(t, b, "10.attach((10,10))", "10.frame()", "10.commit()")
	checkNotes(t, n, RedrawRequested{ID: id})

	d.handleCommand(present{ID: id, Image: img})
	d.redraw()
	checkCalls(t, b)
	checkNotes(t, n)

	d.handleEvent(FrameDone{Object: 10})
	d.redraw()
	checkCalls(t, b, "10.attach((10,10))", "10.frame()", "10.commit()")
	checkNotes(t, n, RedrawRequested{ID: id})

	// A frame callback with nothing requested only makes the next
	// request immediate.
	d.handleEvent(FrameDone{Object: 10})
	d.redraw()
	checkCalls(t, b)

	d.handleCommand(requestRedraw{ID: id})
	d.redraw()
	checkCalls(t, b, "10.frame()", "10.commit()")
	checkNotes(t, n, RedrawRequested{ID: id})
}

func TestRedrawWaitsForBuffer(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	id := createLayer(t, d, n, LayerParams{})
	d.handleEvent(LayerConfigure{Object: 10, Size: Size{Width: 10, Height: 10}})
	n.take()
	b.takeCalls()

	// A redraw without a frame would commit an unmapped surface.
	d.handleCommand(requestRedraw{ID: id})
	d.redraw()
	checkCalls(t, b)
	checkNotes(t, n)

	d.handleCommand(present{ID: id, Image: image.NewRGBA(image.Rect(0, 0, 10, 10))})
	d.redraw()
	checkCalls(t, b, "10.attach((10,10))", "10.frame()", "10.commit()")
	checkNotes(t, n, RedrawRequested{ID: id})
}

func TestFractionalScale(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())
	b.fractional = true

	id := createLayer(t, d, n, LayerParams{Size: Size{Width: 200, Height: 40}})
	d.handleEvent(LayerConfigure{Object: 10})
	n.take()
	b.takeCalls()

	d.handleEvent(PreferredScale{Object: 10, Scale120: 180})
	d.redraw()
	checkCalls(t, b, "10.set_destination(200, 40)", "10.commit()")
	checkNotes(t, n, ScaleChanged{ID: id, Scale: 1.5})

	d.handleEvent(PreferredBufferScale{Object: 10, Scale: 2})
	d.handleEvent(PreferredScale{Object: 10, Scale120: 180})
	d.redraw()
	checkCalls(t, b)
	checkNotes(t, n)

	common := d.records[id].common
	if got := common.PhysicalSize(); got != image.Pt(300, 60) {
		t.Errorf("physical size: got %v", got)
	}
}

func TestBufferScale(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	id := createLayer(t, d, n, LayerParams{})
	n.take()
	b.takeCalls()

	d.handleEvent(PreferredBufferScale{Object: 10, Scale: 2})
	d.handleEvent(PreferredBufferScale{Object: 10, Scale: 2})
	d.redraw()
	checkCalls(t, b, "10.set_buffer_scale(2)", "10.commit()")
	checkNotes(t, n, ScaleChanged{ID: id, Scale: 2})

	d.handleEvent(LayerConfigure{Object: 10, Size: Size{Width: 8, Height: 8}})
	checkNotes(t, n, Configured{ID: id, Size: image.Pt(8, 8), Scale: 2, First: true})
}

func TestSessionLock(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	d.handleCommand(createLockSurface{ID: NewSurfaceID(), Output: 5})
	checkCalls(t, b)
	checkNotes(t, n)

	d.handleCommand(lock{})
	d.handleCommand(lock{})
	checkCalls(t, b, "0.lock()")

	d.handleEvent(Locked{})
	checkNotes(t, n, SessionLocked{})

	id := NewSurfaceID()
	d.handleCommand(createLockSurface{ID: id, Output: 5})
	checkCalls(t, b, "10.create_lock_surface(5)")
	checkNotes(t, n, Created{ID: id, Kind: KindLock})

	d.handleEvent(LockConfigure{Object: 10, Size: Size{Width: 1920, Height: 1080}})
	checkNotes(t, n, Configured{ID: id, Size: image.Pt(1920, 1080), Scale: 1, First: true})

	d.handleCommand(resize{ID: id, Size: Size{Width: 5, Height: 5}})
	d.redraw()
	checkCalls(t, b)

	d.handleCommand(unlock{})
	checkCalls(t, b, "10.destroy()", "0.unlock()", "0.roundtrip()")
	checkNotes(t, n, Closed{ID: id}, SessionUnlocked{})
}

func TestSessionLockRefused(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	d.handleCommand(lock{})
	d.handleEvent(LockFinished{})
	checkCalls(t, b, "0.lock()", "0.unlock()")
	checkNotes(t, n)

	d.handleCommand(lock{})
	checkCalls(t, b, "0.lock()")
}

func TestWindow(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	id := NewSurfaceID()
	d.handleCommand(createWindow{ID: id, Params: WindowParams{Title: "demo", Size: Size{Width: 640, Height: 480}}})
	checkCalls(t, b, `10.create_window("demo")`)
	checkNotes(t, n, Created{ID: id, Kind: KindWindow})

	d.handleEvent(WindowConfigure{Object: 10})
	checkNotes(t, n, Configured{ID: id, Size: image.Pt(640, 480), Scale: 1, First: true})

	d.handleEvent(WindowClose{Object: 10})
	checkNotes(t, n, CloseRequested{ID: id})

	d.handleCommand(resize{ID: id, Size: Size{Width: 800, Height: 600}})
	d.redraw()
	checkCalls(t, b, "10.commit()")
	checkNotes(t, n, Configured{ID: id, Size: image.Pt(800, 600), Scale: 1})

	popup := createTestPopup(t, d, id)
	checkCalls(t, b, "11.create_popup(10)")
	checkNotes(t, n, Created{ID: popup, Kind: KindPopup})
}

func TestOutputs(t *testing.T) {
	d, _, n := newTestDispatcher(t, DefaultConfig())

	info := OutputInfo{ID: 3, Name: "DP-1", Scale: 1}
	d.handleEvent(OutputDone{Output: info})
	info.Scale = 2
	d.handleEvent(OutputDone{Output: info})
	d.handleEvent(OutputGlobalRemoved{ID: 3})
	d.handleEvent(OutputGlobalRemoved{ID: 3})

	checkNotes(t, n,
		OutputAdded{Output: OutputInfo{ID: 3, Name: "DP-1", Scale: 1}},
		OutputUpdated{Output: OutputInfo{ID: 3, Name: "DP-1", Scale: 2}},
		OutputRemoved{ID: 3},
	)
}

func TestActivation(t *testing.T) {
	d, b, n := newTestDispatcher(t, DefaultConfig())

	reply := make(chan string, 1)
	d.handleCommand(requestActivationToken{AppID: "demo", Reply: reply})
	if token := <-reply; token != "" {
		t.Errorf("token without activation support: %q", token)
	}

	b.activation = true
	id := createLayer(t, d, n, LayerParams{})
	b.takeCalls()

	d.handleCommand(requestActivationToken{AppID: "demo", Window: id, Reply: reply})
	if token := <-reply; token != "token:demo" {
		t.Errorf("token: got %q", token)
	}

	d.handleCommand(activate{Window: id, Token: "token:demo"})
	d.handleCommand(activate{Window: NewSurfaceID(), Token: "token:demo"})
	checkCalls(t, b, `0.activation_token("demo")`, `10.activate("token:demo")`)
}
