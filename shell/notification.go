package shell

import (
	"image"
)

// Notification is sent from the dispatcher to the consumer.
type Notification interface {
	notification()
}

// Created is sent once a surface exists. Common may be read at any
// time afterwards.
type Created struct {
	ID     SurfaceID
	Kind   Kind
	Common *Common
}

// Configured is sent whenever the size of a surface is negotiated.
// First is set for the first configure of each surface.
type Configured struct {
	ID    SurfaceID
	Size  image.Point
	Scale float64
	First bool
}

// Closed is sent once for every destroyed surface, whether the
// consumer or the compositor destroyed it. The consumer must answer
// it with Bridge.Dropped.
type Closed struct {
	ID SurfaceID
}

// CloseRequested is sent when the compositor asks for a window to be
// closed. The window is not destroyed.
type CloseRequested struct {
	ID SurfaceID
}

type ScaleChanged struct {
	ID    SurfaceID
	Scale float64
}

// RedrawRequested is sent whenever a surface is committed in response
// to a redraw request.
type RedrawRequested struct {
	ID SurfaceID
}

// Failed is sent when a command for ID could not be carried out.
type Failed struct {
	ID  SurfaceID
	Err error
}

// OutputInfo describes an output.
type OutputInfo struct {
	ID           OutputID
	Name         string
	Description  string
	Make         string
	Model        string
	Position     image.Point
	PhysicalSize image.Point
	Mode         image.Point
	RefreshMHz   int32
	Scale        int32
}

type OutputAdded struct {
	Output OutputInfo
}

type OutputUpdated struct {
	Output OutputInfo
}

type OutputRemoved struct {
	ID OutputID
}

type SessionLocked struct{}

type SessionUnlocked struct{}

func (Created) notification()         {}
func (Configured) notification()      {}
func (Closed) notification()          {}
func (CloseRequested) notification()  {}
func (ScaleChanged) notification()    {}
func (RedrawRequested) notification() {}
func (Failed) notification()          {}
func (OutputAdded) notification()     {}
func (OutputUpdated) notification()   {}
func (OutputRemoved) notification()   {}
func (SessionLocked) notification()   {}
func (SessionUnlocked) notification() {}
