package shell

import "go.uber.org/zap"

// Waker wakes the consumer's event loop. Wake is called from the
// dispatcher's goroutine every time a Notification is queued.
type Waker interface {
	Wake()
}

type WakerFunc func()

func (f WakerFunc) Wake() {
	f()
}

type options struct {
	config Config
	log    *zap.Logger
	waker  Waker
}

type Option func(*options)

func WithConfig(c Config) Option {
	return func(o *options) {
		o.config = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func WithWaker(w Waker) Option {
	return func(o *options) {
		o.waker = w
	}
}

func buildOptions(opts []Option) options {
	o := options{
		config: DefaultConfig(),
		log:    zap.NewNop(),
		waker:  WakerFunc(func() {}),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.waker == nil {
		o.waker = WakerFunc(func() {})
	}
	return o
}
