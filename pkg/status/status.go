// Package status tracks the lifecycle of the last configuration mutation so a
// status icon can render it. The tracker holds a single Status value, which
// makes combinations such as "loading and failed" unrepresentable; the
// caller drives every transition.
package status

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Status is the state of the last submitted change.
type Status int

const (
	Idle Status = iota
	Pending
	Loading
	Success
	Error
)

var names = [...]string{
	Idle:    "idle",
	Pending: "pending",
	Loading: "loading",
	Success: "success",
	Error:   "error",
}

// ErrInvalidTransition is returned by Tracker.Set for transitions the state
// machine does not allow.
var ErrInvalidTransition = errors.New("status: invalid transition")

func (s Status) String() string {
	if s < Idle || s > Error {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return names[s]
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s >= Idle && s <= Error
}

// Terminal reports whether s ends an edit-then-submit cycle.
func (s Status) Terminal() bool {
	return s == Success || s == Error
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("status: cannot marshal %s", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a status name into a Status.
func ParseStatus(raw string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for idx, name := range names {
		if name == needle {
			return Status(idx), nil
		}
	}
	return Idle, fmt.Errorf("status: unknown status %q", raw)
}

// CanTransition reports whether the state machine allows from -> to.
// Any state may move to Pending, since a new edit supersedes the previous
// outcome; success may return to idle once it has been displayed.
func CanTransition(from, to Status) bool {
	if from == to || to == Pending {
		return true
	}
	switch from {
	case Pending:
		return to == Loading
	case Loading:
		return to == Success || to == Error
	case Success:
		return to == Idle
	default:
		return false
	}
}

// Flags is the per-state boolean view consumed by a status icon. At most one
// flag is set; none is set while idle.
type Flags struct {
	Pending bool `json:"pending"`
	Loading bool `json:"loading"`
	Success bool `json:"success"`
	Error   bool `json:"error"`
}

// Snapshot is the tracker state at one point in time.
type Snapshot struct {
	Status Status
	// Err is the opaque mutation error, set only in the Error state.
	Err error
}

// Flags derives the icon flags of the snapshot.
func (s Snapshot) Flags() Flags {
	return Flags{
		Pending: s.Status == Pending,
		Loading: s.Status == Loading,
		Success: s.Status == Success,
		Error:   s.Status == Error,
	}
}

// Observer is notified after every status change.
type Observer func(Snapshot)

// Tracker holds the status of one form. It is safe for concurrent use.
// Observers run in registration order, outside the lock, and see every
// change in the order it was applied: one goroutine delivers at a time, and
// a Set made while another goroutine (or an observer) is delivering is
// queued and delivered by that goroutine before it returns.
type Tracker struct {
	mu        sync.Mutex
	current   Snapshot
	observers map[uint64]Observer
	order     []uint64
	nextID    uint64
	queue     []Snapshot
	notifying bool
}

// NewTracker returns a tracker in the Idle state.
func NewTracker() *Tracker {
	return &Tracker{observers: make(map[uint64]Observer)}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Status returns the current status.
func (t *Tracker) Status() Status {
	return t.Snapshot().Status
}

// Flags returns the icon flags of the current state.
func (t *Tracker) Flags() Flags {
	return t.Snapshot().Flags()
}

// Set moves the tracker to status. The error payload is kept only when
// status is Error. Setting the current status again is a no-op, except in
// Error where it replaces the payload. Disallowed transitions return
// ErrInvalidTransition and leave the state untouched.
func (t *Tracker) Set(status Status, err error) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %s", ErrInvalidTransition, status)
	}

	t.mu.Lock()
	from := t.current.Status
	if !CanTransition(from, status) {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
	}
	next := Snapshot{Status: status}
	if status == Error {
		next.Err = err
	}
	if status == from && status != Error {
		t.mu.Unlock()
		return nil
	}
	t.current = next
	t.publishLocked(next)
	return nil
}

// Reset forces the tracker back to Idle, whatever the current state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	if t.current.Status == Idle {
		t.mu.Unlock()
		return
	}
	t.current = Snapshot{}
	t.publishLocked(Snapshot{})
}

// Observe registers fn and returns a function removing it.
func (t *Tracker) Observe(fn Observer) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.observers[id] = fn
	t.order = append(t.order, id)
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.observers, id)
			for i, candidate := range t.order {
				if candidate == id {
					t.order = append(t.order[:i], t.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (t *Tracker) observersLocked() []Observer {
	out := make([]Observer, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.observers[id])
	}
	return out
}

// publishLocked queues snap and, unless a delivery is already in progress,
// delivers the queue in order. It releases the lock.
func (t *Tracker) publishLocked(snap Snapshot) {
	t.queue = append(t.queue, snap)
	if t.notifying {
		t.mu.Unlock()
		return
	}
	t.notifying = true
	for len(t.queue) > 0 {
		next := t.queue[0]
		t.queue = t.queue[1:]
		observers := t.observersLocked()
		t.mu.Unlock()
		t.notify(observers, next)
		t.mu.Lock()
	}
	t.notifying = false
	t.mu.Unlock()
}

func (t *Tracker) notify(observers []Observer, snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			// a panicking observer must not stall later deliveries
			t.mu.Lock()
			t.notifying = false
			t.queue = nil
			t.mu.Unlock()
			panic(r)
		}
	}()
	for _, fn := range observers {
		fn(snap)
	}
}
