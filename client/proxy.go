package wl

import (
	"deedles.dev/wlshell/wire"
)

// Object is a protocol object that lives on a Display. Types in other
// packages become Objects by embedding Proxy.
type Object interface {
	wire.Object
	proxy() *Proxy
}

// Proxy holds the state common to every client-side protocol object.
type Proxy struct {
	id        uint32
	display   *Display
	destroyed bool
	deleted   bool
}

func (p *Proxy) ID() uint32 {
	return p.id
}

func (p *Proxy) SetID(id uint32) {
	p.id = id
}

// Display returns the display that the object belongs to.
func (p *Proxy) Display() *Display {
	return p.display
}

// Delete is called when the compositor releases the object's ID.
func (p *Proxy) Delete() {
	p.deleted = true
}

// MarkDestroyed records that a destructor request has been sent. No
// further requests should be sent by the object after this.
func (p *Proxy) MarkDestroyed() {
	p.destroyed = true
}

// Destroyed reports whether a destructor request has been sent.
func (p *Proxy) Destroyed() bool {
	return p.destroyed
}

// Enqueue queues a request from the object. Requests from destroyed
// objects are dropped.
func (p *Proxy) Enqueue(msg *wire.MessageBuilder) {
	if p.destroyed || (p.display == nil) {
		return
	}
	p.display.Enqueue(msg)
}

func (p *Proxy) proxy() *Proxy {
	return p
}

// Interface describes a global advertised by the compositor.
type Interface struct {
	Name    string
	Version uint32
}

// Is reports whether i is the named interface at at least the given
// version.
func (i Interface) Is(name string, version uint32) bool {
	return (i.Name == name) && (i.Version >= version)
}

// Clamp returns the version to bind i at when the client supports up
// to max.
func (i Interface) Clamp(max uint32) uint32 {
	return min(i.Version, max)
}
