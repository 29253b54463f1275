package shell

import (
	"fmt"
	"sync/atomic"
)

// SurfaceID is the opaque handle that identifies a surface to the
// consumer. It is assigned by this package, never by the compositor.
type SurfaceID uint64

// NoSurface is the zero SurfaceID. It never refers to a surface.
const NoSurface SurfaceID = 0

var nextSurfaceID atomic.Uint64

func init() {
	// 1 is reserved.
	nextSurfaceID.Store(1)
}

// NewSurfaceID returns a process-unique SurfaceID.
func NewSurfaceID() SurfaceID {
	return SurfaceID(nextSurfaceID.Add(1))
}

func (id SurfaceID) String() string {
	return fmt.Sprintf("surface#%d", uint64(id))
}

// ObjectID is the identity of a live protocol object. The compositor
// reuses IDs once an object is destroyed.
type ObjectID uint32

// OutputID identifies an output by the name of its global.
type OutputID uint32

// Kind is the role of a surface.
type Kind int

const (
	KindLayer Kind = iota + 1
	KindPopup
	KindLock
	KindWindow
)

func (k Kind) String() string {
	switch k {
	case KindLayer:
		return "layer"
	case KindPopup:
		return "popup"
	case KindLock:
		return "lock"
	case KindWindow:
		return "window"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
