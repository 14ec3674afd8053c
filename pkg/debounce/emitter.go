package debounce

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/pkg/config"
	"github.com/goliatone/go-blockform/pkg/model"
)

// DefaultQuietPeriod is used when no WithQuietPeriod option is supplied.
const DefaultQuietPeriod = config.DefaultQuietPeriod

// ErrClosed is returned by Schedule once the emitter has been closed.
var ErrClosed = errors.New("debounce: emitter closed")

// ChangeFunc receives every emitted change. The change is owned by the
// callee. A returned error is logged; it never affects the emitter.
type ChangeFunc func(model.Change) error

// Domain restricts the field names an emitter accepts. model.Block and
// *model.FieldSet both satisfy it.
type Domain interface {
	Has(name string) bool
}

// Emitter accumulates field edits into a pending change and emits it once no
// edit arrived for the quiet period, or immediately on Flush.
//
// Emissions of one emitter never overlap and are delivered in the order
// their flush or timeout happened. The callback may call Schedule or Flush;
// emissions triggered from inside the callback are delivered after it
// returns.
type Emitter struct {
	mu       sync.Mutex
	domain   Domain
	onChange ChangeFunc
	clock    Clock
	quiet    time.Duration
	logger   *zap.Logger

	pending  model.Change
	timer    Timer
	seq      uint64
	queue    []model.Change
	draining bool
	closed   bool
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithQuietPeriod sets how long the emitter waits after the last edit.
// Non-positive values keep the default.
func WithQuietPeriod(d time.Duration) Option {
	return func(e *Emitter) {
		if d > 0 {
			e.quiet = d
		}
	}
}

// WithClock overrides the clock driving the quiet-period timer.
func WithClock(clock Clock) Option {
	return func(e *Emitter) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger sets the logger used to report callback failures.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEmitter creates an emitter accepting names from domain and delivering
// changes to onChange.
func NewEmitter(domain Domain, onChange ChangeFunc, options ...Option) *Emitter {
	e := &Emitter{
		domain:   domain,
		onChange: onChange,
		clock:    SystemClock,
		quiet:    DefaultQuietPeriod,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// QuietPeriod reports the configured quiet period.
func (e *Emitter) QuietPeriod() time.Duration {
	return e.quiet
}

// Schedule records the latest value of a field and restarts the quiet-period
// timer. Names outside the domain are rejected and leave the pending change
// untouched.
func (e *Emitter) Schedule(name string, value any) error {
	if e.domain == nil || !e.domain.Has(name) {
		return fmt.Errorf("debounce: schedule %q: %w", name, model.ErrUnknownField)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	if e.pending == nil {
		e.pending = make(model.Change)
	}
	e.pending[name] = model.CloneValue(value)

	if e.timer != nil {
		e.timer.Stop()
	}
	e.seq++
	current := e.seq
	e.timer = e.clock.AfterFunc(e.quiet, func() {
		e.fire(current)
	})
	return nil
}

// Flush emits the pending change now and cancels the timer. It does nothing
// when no edit is pending. When another goroutine (or the change callback
// itself) is already delivering, the change is queued behind the batch in
// flight and Flush returns at once; the delivering goroutine emits it before
// it returns.
func (e *Emitter) Flush() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.stopTimerLocked()
	e.enqueueLocked()
	e.drainLocked()
}

// Cancel discards the pending change without emitting it.
func (e *Emitter) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.pending = nil
}

// Close cancels the timer, drops the pending change and any queued emission,
// and rejects further edits.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.pending = nil
	e.queue = nil
	e.closed = true
}

// Pending returns a copy of the edits accumulated since the last emission.
func (e *Emitter) Pending() model.Change {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Clone()
}

// IsPending reports whether an emission is scheduled.
func (e *Emitter) IsPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending) > 0
}

func (e *Emitter) fire(seq uint64) {
	e.mu.Lock()
	if e.closed || seq != e.seq {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	e.enqueueLocked()
	e.drainLocked()
}

func (e *Emitter) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	// invalidates a timer callback already waiting on the lock
	e.seq++
}

// enqueueLocked moves the pending change to the delivery queue, clearing the
// buffer before any callback runs.
func (e *Emitter) enqueueLocked() {
	if len(e.pending) == 0 {
		return
	}
	e.queue = append(e.queue, e.pending)
	e.pending = nil
}

// drainLocked delivers queued changes and releases the lock. Only one
// goroutine drains at a time; others leave their batch in the queue.
func (e *Emitter) drainLocked() {
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true
	for len(e.queue) > 0 && !e.closed {
		batch := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()
		e.deliver(batch)
		e.mu.Lock()
	}
	e.draining = false
	e.mu.Unlock()
}

func (e *Emitter) deliver(change model.Change) {
	if e.onChange == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("debounce: change callback panicked",
				zap.Any("panic", r),
				zap.Strings("fields", change.Names()),
			)
		}
	}()
	if err := e.onChange(change); err != nil {
		e.logger.Warn("debounce: change callback failed",
			zap.Error(err),
			zap.Strings("fields", change.Names()),
		)
	}
}
