package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrParentMissing is reported when a popup's parent does not
	// exist, or never became the topmost surface.
	ErrParentMissing = errors.New("popup parent not found")

	ErrPositionerCreationFailed = errors.New("positioner could not be created")
	ErrObjectCreationRejected   = errors.New("object creation rejected")

	// ErrExtensionUnavailable is returned when the compositor does not
	// support a protocol that an operation needs.
	ErrExtensionUnavailable = errors.New("protocol extension unavailable")

	ErrRegistryCollision = errors.New("protocol object already registered")

	// ErrChannelClosed ends the dispatcher. It is reported when the
	// connection to the compositor is lost.
	ErrChannelClosed = errors.New("channel closed")

	// ErrPopupSuperseded is reported for a deferred popup that was
	// replaced by a newer deferred popup before it could be created.
	ErrPopupSuperseded = errors.New("popup request superseded")
)

// CollisionError is returned by Registry.Register when either side of
// a mapping is already in use.
type CollisionError struct {
	Object ObjectID
	ID     SurfaceID
	// Existing is the SurfaceID already mapped to Object, if any.
	Existing SurfaceID
}

func (err CollisionError) Error() string {
	if err.Existing != NoSurface {
		return fmt.Sprintf("object %v is already registered as %v", err.Object, err.Existing)
	}
	return fmt.Sprintf("%v is already registered", err.ID)
}

func (err CollisionError) Unwrap() error {
	return ErrRegistryCollision
}
