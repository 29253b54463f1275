package shell

import (
	"context"
	"errors"
	"time"

	"deedles.dev/wlshell/internal/cq"
	"go.uber.org/zap"
)

// run is the dispatch loop. It waits for protocol events, commands,
// or the popup retry timer, handles whatever woke it, and then
// commits ready surfaces and flushes requests. It returns nil when ctx
// is canceled and an error wrapping ErrChannelClosed if the backend's
// connection is lost.
func (d *dispatcher) run(ctx context.Context, commands *cq.Queue[command]) error {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		var retry <-chan time.Time
		switch {
		case d.pending != nil:
			if timer == nil {
				timer = time.NewTimer(d.config.Popup.RetryDelay.Duration)
			}
			retry = timer.C
		case timer != nil:
			timer.Stop()
			timer = nil
		}

		select {
		case <-ctx.Done():
			return nil

		case batch, ok := <-d.backend.Events():
			if !ok {
				return ErrChannelClosed
			}
			err := d.backend.Dispatch(batch)
			if err != nil {
				if errors.Is(err, ErrChannelClosed) {
					return err
				}
				d.log.Warn("dispatch protocol events", zap.Error(err))
			}

		case cmds := <-commands.Get():
			for _, cmd := range cmds {
				d.handleCommand(cmd)
			}

		case <-retry:
			timer = nil
			d.tick()
		}

		d.redraw()
		err := d.backend.Flush()
		if err != nil {
			if errors.Is(err, ErrChannelClosed) {
				return err
			}
			d.log.Warn("flush requests", zap.Error(err))
		}
	}
}
