package shell

import "image"

// Anchor is a set of output edges that a layer surface is attached
// to.
type Anchor uint32

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

// Has reports whether every edge in other is set in a.
func (a Anchor) Has(other Anchor) bool {
	return a&other == other
}

// Layer is the stacking band of a layer surface.
type Layer uint32

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

type KeyboardInteractivity uint32

const (
	KeyboardInteractivityNone KeyboardInteractivity = iota
	KeyboardInteractivityExclusive
	KeyboardInteractivityOnDemand
)

type Margin struct {
	Top, Right, Bottom, Left int32
}

// Size is a requested surface size in logical pixels. A zero
// dimension is unset and left to the compositor.
type Size struct {
	Width, Height uint32
}

type LayerParams struct {
	// Output is the output to show the surface on. Zero lets the
	// compositor choose.
	Output OutputID

	Namespace             string
	Layer                 Layer
	Anchor                Anchor
	Size                  Size
	ExclusiveZone         int32
	Margin                Margin
	KeyboardInteractivity KeyboardInteractivity
}

// PositionerAnchor is an edge or corner of a popup's anchor
// rectangle. The same values describe gravity.
type PositionerAnchor uint32

const (
	PositionerAnchorNone PositionerAnchor = iota
	PositionerAnchorTop
	PositionerAnchorBottom
	PositionerAnchorLeft
	PositionerAnchorRight
	PositionerAnchorTopLeft
	PositionerAnchorBottomLeft
	PositionerAnchorTopRight
	PositionerAnchorBottomRight
)

type ConstraintAdjustment uint32

const (
	ConstraintAdjustmentSlideX ConstraintAdjustment = 1 << iota
	ConstraintAdjustmentSlideY
	ConstraintAdjustmentFlipX
	ConstraintAdjustmentFlipY
	ConstraintAdjustmentResizeX
	ConstraintAdjustmentResizeY
)

// PositionerParams describes where a popup is placed relative to its
// parent.
type PositionerParams struct {
	Size                 image.Point
	AnchorRect           image.Rectangle
	Anchor               PositionerAnchor
	Gravity              PositionerAnchor
	ConstraintAdjustment ConstraintAdjustment
	Offset               image.Point
	Reactive             bool
}

// Valid reports whether p can be used to create a positioner.
func (p PositionerParams) Valid() bool {
	return (p.Size.X > 0) && (p.Size.Y > 0) &&
		(p.AnchorRect.Dx() >= 0) && (p.AnchorRect.Dy() >= 0)
}

type PopupParams struct {
	Parent     SurfaceID
	Positioner PositionerParams

	// Grab gives the popup an explicit grab using the latest input
	// serial.
	Grab bool
}

type WindowParams struct {
	Title string
	AppID string
	Size  Size
}
