package shell

import "image"

// Backend is the protocol connection driven by the dispatcher. All of
// its methods are called from the dispatcher's goroutine. Events are
// reported by calling the sink from inside Dispatch, or from inside a
// Roundtrip.
type Backend interface {
	SetSink(sink func(Event))

	// Events yields batches of received protocol messages. Each batch
	// must be passed to Dispatch.
	Events() <-chan []func() error
	Dispatch(batch []func() error) error

	// Flush sends queued requests.
	Flush() error

	// Roundtrip blocks until the compositor has processed every
	// request sent so far.
	Roundtrip() error

	Close() error

	// CreateLayerSurface creates and commits a layer surface. Zero
	// dimensions in size are left to the compositor.
	CreateLayerSurface(p LayerParams, size Size) (LayerSurface, error)

	// CreatePopup creates and commits a popup. parent is a handle
	// previously returned by the Backend.
	CreatePopup(parent Surface, p PopupParams) (Popup, error)

	CreateWindow(p WindowParams) (Window, error)
	CreateLockSurface(output OutputID) (LockSurface, error)

	// Lock requests a session lock. The result is reported with
	// Locked or LockFinished.
	Lock() error

	// Unlock ends or abandons the session lock.
	Unlock() error

	// RequestActivationToken asks for an activation token. window may
	// be nil. done is called from Dispatch once the token arrives.
	RequestActivationToken(appID string, window Surface, done func(token string)) error
	Activate(token string, window Surface) error
}

// Surface is a Backend's handle to a protocol surface.
type Surface interface {
	ObjectID() ObjectID

	// Frame requests a frame callback, reported as FrameDone, for the
	// next commit.
	Frame()
	Commit()

	// Attach copies img into a buffer and attaches it.
	Attach(img image.Image) error

	SetBufferScale(scale int32)
	SetViewportDestination(width, height int32)

	// HasFractionalScale reports whether the surface receives
	// PreferredScale events.
	HasFractionalScale() bool

	Destroy()
}

type LayerSurface interface {
	Surface

	SetSize(size Size)
	SetAnchor(anchor Anchor)
	SetExclusiveZone(zone int32)
	SetMargin(margin Margin)
	SetKeyboardInteractivity(ki KeyboardInteractivity)
	SetLayer(layer Layer)
}

type Popup interface {
	Surface

	Reposition(p PositionerParams, token uint32)
	SetWindowGeometry(r image.Rectangle)
}

type Window interface {
	Surface

	SetTitle(title string)
}

type LockSurface interface {
	Surface
}
