// Package timerx provides a cancellable fire-once timer used for debouncing
// rapid repeated triggers (search keystrokes, transient notifications).
package timerx

import (
	"sync"
	"time"
)

// Timer schedules at most one pending callback. Starting a new callback
// always replaces the pending one, so only the last trigger within a quiet
// window executes.
type Timer struct {
	mu  sync.Mutex
	t   *time.Timer
	fn  func()
	gen uint64
}

// New creates an idle timer.
func New() *Timer {
	return &Timer{}
}

// Start schedules fn to run after delay, replacing any pending callback.
func (d *Timer) Start(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.gen++
	d.fn = fn

	gen := d.gen
	d.t = time.AfterFunc(delay, func() {
		d.mu.Lock()
		// A newer Start or Cancel invalidates this firing.
		if d.gen != gen {
			d.mu.Unlock()
			return
		}
		d.fn = nil
		d.t = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending callback, if any. Reports whether one was pending.
func (d *Timer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.fn != nil
	d.cancelLocked()
	d.gen++
	return pending
}

// Flush runs the pending callback immediately, bypassing the remaining
// delay. No-op when nothing is pending.
func (d *Timer) Flush() {
	d.mu.Lock()
	fn := d.fn
	d.cancelLocked()
	d.gen++
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Pending reports whether a callback is currently scheduled.
func (d *Timer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}

func (d *Timer) cancelLocked() {
	if d.t != nil {
		d.t.Stop()
		d.t = nil
	}
	d.fn = nil
}
