// Package debounce coalesces bursts of calls into a single delayed call.
//
// Each Trigger cancels the pending timer and starts a new one, so only the
// last call in a burst runs. Every Trigger in the same burst receives the
// same done channel, which is closed after that one call returns. An HTTP
// handler can therefore wait on the channel and render whatever the final
// call produced.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays and coalesces calls. The zero value is not usable.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
	done  chan struct{}
}

// New returns a Debouncer that waits delay after the last Trigger.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run once the quiet period has passed, replacing
// any call still waiting. The returned channel is closed when the burst
// ends, either because its final call returned or because it was canceled.
func (d *Debouncer) Trigger(fn func()) <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.done == nil {
		d.done = make(chan struct{})
	}
	d.gen++
	gen, done := d.gen, d.done

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			// Superseded after the timer had already fired.
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.done = nil
		d.mu.Unlock()

		defer close(done)
		fn()
	})
	return done
}

// Cancel drops the pending call, if any, and releases its waiters.
// It reports whether a call was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	if d.done != nil {
		close(d.done)
		d.done = nil
	}
	return true
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
