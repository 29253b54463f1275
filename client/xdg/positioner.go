package xdg

import (
	"image"

	wl "deedles.dev/wlshell/client"
	"deedles.dev/wlshell/wire"
)

const (
	positionerInterface = "xdg_positioner"

	positionerDestroy                 = 0
	positionerSetSize                 = 1
	positionerSetAnchorRect           = 2
	positionerSetAnchor               = 3
	positionerSetGravity              = 4
	positionerSetConstraintAdjustment = 5
	positionerSetOffset               = 6
	positionerSetReactive             = 7
)

// Anchor is an edge or corner of the anchor rectangle. The same values
// are used for gravity.
type Anchor uint32

const (
	AnchorNone Anchor = iota
	AnchorTop
	AnchorBottom
	AnchorLeft
	AnchorRight
	AnchorTopLeft
	AnchorBottomLeft
	AnchorTopRight
	AnchorBottomRight
)

type ConstraintAdjustment uint32

const (
	ConstraintAdjustmentSlideX ConstraintAdjustment = 1 << iota
	ConstraintAdjustmentSlideY
	ConstraintAdjustmentFlipX
	ConstraintAdjustmentFlipY
	ConstraintAdjustmentResizeX
	ConstraintAdjustmentResizeY

	ConstraintAdjustmentNone ConstraintAdjustment = 0
)

type Positioner struct {
	wl.Proxy
}

func (p *Positioner) Interface() string {
	return positionerInterface
}

func (p *Positioner) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: positionerInterface, Type: "event", Op: msg.Op()}
}

func (p *Positioner) Destroy() {
	p.Enqueue(wire.NewMessage(p, positionerDestroy, "destroy"))
	p.MarkDestroyed()
}

func (p *Positioner) SetSize(width, height int32) {
	msg := wire.NewMessage(p, positionerSetSize, "set_size")
	msg.WriteInt(width)
	msg.WriteInt(height)
	p.Enqueue(msg)
}

func (p *Positioner) SetAnchorRect(r image.Rectangle) {
	msg := wire.NewMessage(p, positionerSetAnchorRect, "set_anchor_rect")
	msg.WriteInt(int32(r.Min.X))
	msg.WriteInt(int32(r.Min.Y))
	msg.WriteInt(int32(r.Dx()))
	msg.WriteInt(int32(r.Dy()))
	p.Enqueue(msg)
}

func (p *Positioner) SetAnchor(anchor Anchor) {
	msg := wire.NewMessage(p, positionerSetAnchor, "set_anchor")
	msg.WriteUint(uint32(anchor))
	p.Enqueue(msg)
}

func (p *Positioner) SetGravity(gravity Anchor) {
	msg := wire.NewMessage(p, positionerSetGravity, "set_gravity")
	msg.WriteUint(uint32(gravity))
	p.Enqueue(msg)
}

func (p *Positioner) SetConstraintAdjustment(adj ConstraintAdjustment) {
	msg := wire.NewMessage(p, positionerSetConstraintAdjustment, "set_constraint_adjustment")
	msg.WriteUint(uint32(adj))
	p.Enqueue(msg)
}

func (p *Positioner) SetOffset(x, y int32) {
	msg := wire.NewMessage(p, positionerSetOffset, "set_offset")
	msg.WriteInt(x)
	msg.WriteInt(y)
	p.Enqueue(msg)
}

// SetReactive asks the compositor to reposition the popup when its
// constraints change. It requires version 3.
func (p *Positioner) SetReactive() {
	p.Enqueue(wire.NewMessage(p, positionerSetReactive, "set_reactive"))
}
