// Package shell drives layer surfaces, popups, windows, and session
// lock surfaces on a Wayland compositor from a background goroutine.
//
// A Bridge accepts commands from any goroutine and never blocks on
// them. The results of commands, along with compositor-initiated
// changes, are delivered as Notifications.
package shell

import (
	"context"
	"fmt"
	"image"
	"sync"

	"deedles.dev/wlshell/internal/cq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Bridge struct {
	log      *zap.Logger
	active   bool
	commands *cq.Queue[command]
	notes    *cq.Queue[Notification]

	cancel context.CancelFunc
	done   chan struct{}
	err    error
	close  sync.Once
}

// New starts a dispatcher on backend. The dispatcher runs until ctx
// is canceled, Close is called, or the backend's connection is lost.
func New(ctx context.Context, backend Backend, opts ...Option) *Bridge {
	o := buildOptions(opts)

	ctx, cancel := context.WithCancel(ctx)
	b := Bridge{
		log:      o.log,
		active:   true,
		commands: cq.New[command](),
		notes:    cq.New[Notification](),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	emit := func(n Notification) {
		if b.notes.Push(n) {
			o.waker.Wake()
		}
	}
	d := newDispatcher(backend, o.config, o.log, emit)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer func() {
			err := backend.Close()
			if err != nil {
				o.log.Debug("close backend", zap.Error(err))
			}
		}()
		return d.run(ctx, b.commands)
	})
	go func() {
		b.err = eg.Wait()
		if b.err != nil {
			o.log.Error("dispatcher stopped", zap.Error(b.err))
		}
		close(b.done)
	}()

	return &b
}

// NewNoop returns a Bridge that logs and drops every command.
func NewNoop(opts ...Option) *Bridge {
	o := buildOptions(opts)

	done := make(chan struct{})
	var once sync.Once
	return &Bridge{
		log:    o.log,
		notes:  cq.New[Notification](),
		cancel: func() { once.Do(func() { close(done) }) },
		done:   done,
	}
}

// Dial connects to the compositor described by the environment. If
// the connection fails or the compositor lacks a required protocol,
// the returned Bridge is a no-op.
func Dial(ctx context.Context, opts ...Option) *Bridge {
	o := buildOptions(opts)

	backend, err := DialWayland(o.log)
	if err != nil {
		o.log.Warn("compositor unavailable, shell commands will be ignored", zap.Error(err))
		return NewNoop(opts...)
	}
	return New(ctx, backend, opts...)
}

// Active reports whether the Bridge is connected to a dispatcher. It
// is false for a no-op Bridge.
func (b *Bridge) Active() bool {
	return b.active
}

func (b *Bridge) send(cmd command) bool {
	if !b.active {
		b.log.Debug("dropping command", zap.String("command", fmt.Sprintf("%T", cmd)))
		return false
	}

	select {
	case <-b.done:
		b.log.Debug("dropping command after dispatcher exit", zap.String("command", fmt.Sprintf("%T", cmd)))
		return false
	default:
	}

	return b.commands.Push(cmd)
}

// Notifications yields batches of notifications in the order that
// they were sent.
func (b *Bridge) Notifications() <-chan []Notification {
	return b.notes.Get()
}

// Done is closed when the dispatcher exits.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Wait waits for the dispatcher to exit and returns the error that it
// exited with.
func (b *Bridge) Wait() error {
	<-b.done
	return b.err
}

// Close stops the dispatcher and waits for it to exit. Notifications
// that have not been received are discarded.
func (b *Bridge) Close() error {
	b.close.Do(func() {
		b.cancel()
		<-b.done
		if b.commands != nil {
			b.commands.Stop()
		}
		b.notes.Stop()
	})
	return b.err
}

// CreateLayerSurface requests a layer surface. The returned ID is
// used by its notifications, beginning with Created or Failed.
func (b *Bridge) CreateLayerSurface(p LayerParams) SurfaceID {
	id := NewSurfaceID()
	b.send(createLayerSurface{ID: id, Params: p})
	return id
}

// CreatePopup requests a popup. If the parent is not the topmost
// popup, popups above it are destroyed and creation is retried.
func (b *Bridge) CreatePopup(p PopupParams) SurfaceID {
	id := NewSurfaceID()
	b.send(createPopup{ID: id, Params: p})
	return id
}

// CreateLockSurface requests a lock surface on output. It is ignored
// unless a session lock has been requested.
func (b *Bridge) CreateLockSurface(output OutputID) SurfaceID {
	id := NewSurfaceID()
	b.send(createLockSurface{ID: id, Output: output})
	return id
}

func (b *Bridge) CreateWindow(p WindowParams) SurfaceID {
	id := NewSurfaceID()
	b.send(createWindow{ID: id, Params: p})
	return id
}

// Resize requests a new logical size. Zero dimensions are left to the
// compositor. Repeating a resize has no effect.
func (b *Bridge) Resize(id SurfaceID, size Size) {
	b.send(resize{ID: id, Size: size})
}

func (b *Bridge) SetAnchor(id SurfaceID, anchor Anchor) {
	b.send(setAnchor{ID: id, Anchor: anchor})
}

func (b *Bridge) SetMargin(id SurfaceID, margin Margin) {
	b.send(setMargin{ID: id, Margin: margin})
}

func (b *Bridge) SetExclusiveZone(id SurfaceID, zone int32) {
	b.send(setExclusiveZone{ID: id, Zone: zone})
}

func (b *Bridge) SetKeyboardInteractivity(id SurfaceID, ki KeyboardInteractivity) {
	b.send(setKeyboardInteractivity{ID: id, Value: ki})
}

func (b *Bridge) SetLayer(id SurfaceID, layer Layer) {
	b.send(setLayer{ID: id, Layer: layer})
}

// Destroy destroys a surface and every popup nested on it. A Closed
// notification is sent for each, innermost first.
func (b *Bridge) Destroy(id SurfaceID) {
	b.send(destroy{ID: id})
}

// Dropped acknowledges a Closed notification. New popups are not
// created while any Closed notification is unacknowledged.
func (b *Bridge) Dropped(id SurfaceID) {
	b.send(dropped{ID: id})
}

// RequestRedraw commits the surface as soon as the compositor is
// ready for a new frame.
func (b *Bridge) RequestRedraw(id SurfaceID) {
	b.send(requestRedraw{ID: id})
}

// Present shows img on the surface at its next redraw. img must not be
// modified afterwards.
func (b *Bridge) Present(id SurfaceID, img image.Image) {
	b.send(present{ID: id, Image: img})
}

// Lock requests a session lock. SessionLocked is sent once the
// session is locked.
func (b *Bridge) Lock() {
	b.send(lock{})
}

// Unlock destroys every lock surface and unlocks the session.
func (b *Bridge) Unlock() {
	b.send(unlock{})
}

// RequestActivationToken requests a token that can be passed to
// another client to let it take focus. window may be NoSurface. The
// returned channel yields exactly one token, which is empty if the
// compositor does not support activation or if the dispatcher exits
// first.
func (b *Bridge) RequestActivationToken(appID string, window SurfaceID) <-chan string {
	token := make(chan string, 1)
	reply := make(chan string, 1)
	if !b.send(requestActivationToken{AppID: appID, Window: window, Reply: reply}) {
		token <- ""
		return token
	}

	go func() {
		select {
		case t := <-reply:
			token <- t
		case <-b.done:
			select {
			case t := <-reply:
				token <- t
			default:
				token <- ""
			}
		}
	}()
	return token
}

// ActivationToken is like RequestActivationToken but waits for the
// token.
func (b *Bridge) ActivationToken(ctx context.Context, appID string, window SurfaceID) (string, error) {
	reply := b.RequestActivationToken(appID, window)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case token := <-reply:
		return token, nil
	}
}

func (b *Bridge) Activate(window SurfaceID, token string) {
	b.send(activate{Window: window, Token: token})
}
