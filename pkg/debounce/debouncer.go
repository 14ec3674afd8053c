// Package debounce coalesces bursts of field edits into single change
// emissions. Debouncer is the timing primitive shared by the emitter and by
// callers that need a delayed one-shot action, such as returning a success
// indicator to idle.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs a callback once no new Call has been made for the delay.
//
// All methods are safe for concurrent use. The callback runs outside the
// debouncer's lock, so it may call back into the Debouncer.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	clock    Clock
	timer    Timer
	pending  bool
	seq      uint64 // detects stale timer callbacks
	callback func()
}

// NewDebouncer creates a debouncer using the system clock.
func NewDebouncer(delay time.Duration, callback func()) *Debouncer {
	return NewDebouncerWithClock(SystemClock, delay, callback)
}

// NewDebouncerWithClock creates a debouncer driven by the given clock.
func NewDebouncerWithClock(clock Clock, delay time.Duration, callback func()) *Debouncer {
	if clock == nil {
		clock = SystemClock
	}
	return &Debouncer{
		delay:    delay,
		clock:    clock,
		callback: callback,
	}
}

// Call (re)starts the quiet period; the callback fires once it elapses.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	current := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if !d.pending || d.seq != current || d.callback == nil {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		d.mu.Unlock()
		d.callback()
	})
}

// CallImmediate runs the callback now if a call is pending and cancels the
// scheduled one.
func (d *Debouncer) CallImmediate() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++

	if !d.pending || d.callback == nil {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()
	d.callback()
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending reports whether a call is scheduled.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
