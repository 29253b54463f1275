package shell

import "image"

// Event is something that a Backend reports to the dispatcher.
// Configure events have already been acknowledged by the Backend.
type Event interface {
	event()
}

type (
	LayerConfigure struct {
		Object ObjectID
		Size   Size
	}

	// PopupConfigure gives the popup's geometry relative to its
	// parent.
	PopupConfigure struct {
		Object   ObjectID
		Geometry image.Rectangle
	}

	LockConfigure struct {
		Object ObjectID
		Size   Size
	}

	// WindowConfigure suggests a size. Zero dimensions are left to
	// the client.
	WindowConfigure struct {
		Object ObjectID
		Size   Size
	}

	LayerClosed struct {
		Object ObjectID
	}

	PopupDone struct {
		Object ObjectID
	}

	WindowClose struct {
		Object ObjectID
	}

	// FrameDone is a frame callback.
	FrameDone struct {
		Object ObjectID
	}

	// PreferredScale is a fractional scale, in 120ths.
	PreferredScale struct {
		Object   ObjectID
		Scale120 uint32
	}

	PreferredBufferScale struct {
		Object ObjectID
		Scale  int32
	}

	Locked struct{}

	// LockFinished means that the compositor ended or refused the
	// session lock.
	LockFinished struct{}

	// OutputDone is sent every time an output's properties are
	// finalized.
	OutputDone struct {
		Output OutputInfo
	}

	OutputGlobalRemoved struct {
		ID OutputID
	}
)

func (LayerConfigure) event()       {}
func (PopupConfigure) event()       {}
func (LockConfigure) event()        {}
func (WindowConfigure) event()      {}
func (LayerClosed) event()          {}
func (PopupDone) event()            {}
func (WindowClose) event()          {}
func (FrameDone) event()            {}
func (PreferredScale) event()       {}
func (PreferredBufferScale) event() {}
func (Locked) event()               {}
func (LockFinished) event()         {}
func (OutputDone) event()           {}
func (OutputGlobalRemoved) event()  {}
