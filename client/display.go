package wl

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"deedles.dev/wlshell/internal/cq"
	"deedles.dev/wlshell/internal/debug"
	"deedles.dev/wlshell/internal/objstore"
	"deedles.dev/wlshell/wire"
	"go.uber.org/zap"
)

const (
	displayInterface = "wl_display"

	displaySync        = 0
	displayGetRegistry = 1

	displayEventError    = 0
	displayEventDeleteID = 1
)

// ErrDisconnected is returned, wrapped, once the connection to the
// compositor has been lost.
var ErrDisconnected = errors.New("disconnected from compositor")

// ProtocolError is a fatal error reported by the compositor.
type ProtocolError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

func (err ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on object %v: code %v: %v", err.ObjectID, err.Code, err.Message)
}

// Display is the client's connection to the compositor. Incoming
// events are read on a background goroutine and queued. They are
// only handled when the owner of the Display passes them to
// HandleEvents, so all objects belonging to the Display must be used
// from a single goroutine.
type Display struct {
	Proxy

	// Error is called when the compositor reports a fatal protocol
	// error.
	Error func(ProtocolError)

	conn     *wire.Conn
	done     chan struct{}
	close    sync.Once
	objects  *objstore.Store
	queue    *cq.Queue[func() error]
	out      []*wire.MessageBuilder
	registry *Registry
	log      *zap.Logger
}

// DialDisplay connects to the compositor described by the
// environment.
func DialDisplay() (*Display, error) {
	c, err := wire.Dial()
	if err != nil {
		return nil, err
	}
	return ConnectDisplay(c), nil
}

// ConnectDisplay wraps an existing connection.
func ConnectDisplay(c *wire.Conn) *Display {
	display := Display{
		conn:    c,
		done:    make(chan struct{}),
		objects: objstore.New(1),
		queue:   cq.New[func() error](),
		log:     debug.Logger(),
	}
	display.AddObject(&display)

	go display.listen()

	return &display
}

func (display *Display) Interface() string {
	return displayInterface
}

func (display *Display) EventName(op uint16) string {
	switch op {
	case displayEventError:
		return "error"
	case displayEventDeleteID:
		return "delete_id"
	}
	return "unknown"
}

func (display *Display) listen() {
	for {
		msg, err := wire.ReadMessage(display.conn)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				err = fmt.Errorf("%w: %w", ErrDisconnected, err)
				display.queue.Push(func() error { return err })
			}
			return
		}

		ok := display.queue.Push(func() error { return display.dispatch(msg) })
		if !ok {
			return
		}
	}
}

// Close closes the connection. It is safe to call more than once.
func (display *Display) Close() error {
	var err error
	display.close.Do(func() {
		close(display.done)
		display.queue.Stop()
		err = display.conn.Close()
	})
	return err
}

// AddObject registers obj with the display, assigning it an ID.
func (display *Display) AddObject(obj Object) {
	obj.proxy().display = display
	display.objects.Add(obj)
}

// GetObject returns the object with the given ID, or nil.
func (display *Display) GetObject(id uint32) wire.Object {
	return display.objects.Get(id)
}

func (display *Display) dispatch(msg *wire.MessageBuffer) error {
	obj := display.objects.Get(msg.Sender())
	if obj == nil {
		return wire.UnknownSenderIDError{Msg: msg}
	}

	err := obj.Dispatch(msg)
	if ce := display.log.Check(zap.DebugLevel, "event"); ce != nil {
		ce.Write(zap.String("msg", msg.Debug(obj)))
	}
	return err
}

// Events returns a channel that yields batches of queued events.
// Each batch must be passed to HandleEvents.
func (display *Display) Events() <-chan []func() error {
	return display.queue.Get()
}

// HandleEvents handles a batch of events received from Events.
func (display *Display) HandleEvents(batch []func() error) error {
	return errors.Join(cq.Flush(batch)...)
}

// Enqueue queues a request to be sent by the next call to Flush.
func (display *Display) Enqueue(msg *wire.MessageBuilder) {
	display.out = append(display.out, msg)
}

// Flush sends all queued requests to the compositor.
func (display *Display) Flush() error {
	out := display.out
	display.out = nil

	var errs []error
	for _, msg := range out {
		if ce := display.log.Check(zap.DebugLevel, "request"); ce != nil {
			ce.Write(zap.Stringer("msg", msg))
		}
		err := msg.Build(display.conn)
		if err != nil {
			errs = append(errs, fmt.Errorf("send %v: %w", msg.Method(), err))
		}
	}
	return errors.Join(errs...)
}

// RoundTrip flushes queued requests and then handles events until
// the compositor has processed all of them.
func (display *Display) RoundTrip() error {
	done := make(chan struct{})
	display.Sync(func(uint32) { close(done) })

	var errs []error
	for {
		if err := display.Flush(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		select {
		case <-done:
			return errors.Join(errs...)

		case <-display.done:
			return errors.Join(append(errs, ErrDisconnected)...)

		case batch := <-display.queue.Get():
			err := display.HandleEvents(batch)
			if err != nil {
				errs = append(errs, err)
				if errors.Is(err, ErrDisconnected) {
					return errors.Join(errs...)
				}
			}
		}
	}
}

// Sync asks the compositor to call done once it has processed every
// request sent before it.
func (display *Display) Sync(done func(serial uint32)) *Callback {
	callback := Callback{Done: done}
	display.AddObject(&callback)

	msg := wire.NewMessage(display, displaySync, "sync")
	msg.WriteObject(&callback)
	display.Enqueue(msg)

	return &callback
}

// GetRegistry returns the display's registry, creating it on first
// use.
func (display *Display) GetRegistry() *Registry {
	if display.registry != nil {
		return display.registry
	}

	registry := Registry{globals: make(map[uint32]Interface)}
	display.AddObject(&registry)

	msg := wire.NewMessage(display, displayGetRegistry, "get_registry")
	msg.WriteObject(&registry)
	display.Enqueue(msg)

	display.registry = &registry
	return &registry
}

func (display *Display) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case displayEventError:
		err := ProtocolError{
			ObjectID: msg.ReadObject(),
			Code:     msg.ReadUint(),
			Message:  msg.ReadString(),
		}
		if msg.Err() != nil {
			return msg.Err()
		}
		if display.Error != nil {
			display.Error(err)
		}
		return err

	case displayEventDeleteID:
		id := msg.ReadUint()
		if msg.Err() != nil {
			return msg.Err()
		}
		display.objects.Delete(id)
		return nil
	}

	return wire.UnknownOpError{Interface: displayInterface, Type: "event", Op: msg.Op()}
}
