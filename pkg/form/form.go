// Package form composes the building-block configuration pipeline for one
// mounted configuration form: it owns the block's FieldSet, resolves the
// inherited defaults for display, routes edits through exactly one debounced
// emitter, and exposes the mutation status for the status icon.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/pkg/config"
	"github.com/goliatone/go-blockform/pkg/debounce"
	"github.com/goliatone/go-blockform/pkg/defaults"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/status"
)

// ErrClosed is returned by edits on a closed form.
var ErrClosed = errors.New("form: closed")

// Form is the state of one mounted configuration form. It is safe for
// concurrent use.
type Form struct {
	mu       sync.RWMutex
	fields   *model.FieldSet
	defaults model.Defaults
	closed   bool

	emitter *debounce.Emitter
	tracker *status.Tracker
	reset   *debounce.Debouncer

	mutator        Mutator
	onChange       debounce.ChangeFunc
	quiet          time.Duration
	successDisplay time.Duration
	clock          debounce.Clock
	logger         *zap.Logger
	parent         context.Context
	ctx            context.Context
	cancel         context.CancelFunc
}

// New opens a form for block, seeded with the raw values of the current scope
// and the defaults inherited from the parent scope.
func New(block model.Block, values map[string]any, inherited model.Defaults, options ...Option) (*Form, error) {
	fields, err := model.NewFieldSet(block, values)
	if err != nil {
		return nil, fmt.Errorf("form: open %q: %w", block.ID, err)
	}

	f := &Form{
		fields:         fields,
		defaults:       inherited.Clone(),
		tracker:        status.NewTracker(),
		quiet:          config.DefaultQuietPeriod,
		successDisplay: config.DefaultSuccessDisplay,
		clock:          debounce.SystemClock,
		logger:         zap.NewNop(),
		parent:         context.Background(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}

	f.logger = f.logger.With(zap.String("block", block.ID))
	f.ctx, f.cancel = context.WithCancel(f.parent)
	f.emitter = debounce.NewEmitter(fields, f.emit,
		debounce.WithQuietPeriod(f.quiet),
		debounce.WithClock(f.clock),
		debounce.WithLogger(f.logger),
	)
	f.reset = debounce.NewDebouncerWithClock(f.clock, f.successDisplay, f.resetSuccess)
	return f, nil
}

// Block returns the block declaration of the form.
func (f *Form) Block() model.Block {
	return f.fields.Block()
}

// Edit applies a user edit synchronously and schedules its emission. String
// fields in html format are sanitized first. An edit made while the last
// save succeeded or failed moves the status back to pending.
func (f *Form) Edit(name string, value any) error {
	if value == nil {
		return f.Revert(name)
	}
	if f.isClosed() {
		return ErrClosed
	}

	field, ok := f.fields.Block().Field(name)
	if !ok {
		return fmt.Errorf("form: edit %q: %w", name, model.ErrUnknownField)
	}
	if err := f.fields.Set(name, field.Sanitize(value)); err != nil {
		return fmt.Errorf("form: edit %q: %w", name, err)
	}
	stored, _ := f.fields.Get(name)

	f.supersede()
	if err := f.emitter.Schedule(name, stored); err != nil {
		return fmt.Errorf("form: edit %q: %w", name, err)
	}
	f.logger.Debug("form: field edited", zap.String("field", name))
	return nil
}

// Revert removes the override of a field so it inherits its default again.
// The emitted change carries a nil value for the field.
func (f *Form) Revert(name string) error {
	if f.isClosed() {
		return ErrClosed
	}
	if err := f.fields.Unset(name); err != nil {
		return fmt.Errorf("form: revert %q: %w", name, err)
	}

	f.supersede()
	if err := f.emitter.Schedule(name, nil); err != nil {
		return fmt.Errorf("form: revert %q: %w", name, err)
	}
	f.logger.Debug("form: field reverted", zap.String("field", name))
	return nil
}

// Blur emits pending edits immediately, as when an input loses focus. If an
// emission is already in flight on another goroutine, the edits are queued
// behind it and Blur returns before they reach the mutator.
func (f *Form) Blur() {
	f.emitter.Flush()
}

// Pending returns the edits that have not been emitted yet.
func (f *Form) Pending() model.Change {
	return f.emitter.Pending()
}

// Values returns a copy of the raw values of the current scope.
func (f *Form) Values() map[string]any {
	return f.fields.Values()
}

// Defaults returns a copy of the inherited defaults.
func (f *Form) Defaults() model.Defaults {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.defaults.Clone()
}

// SetDefaults replaces the inherited defaults, e.g. after the parent scope
// changed.
func (f *Form) SetDefaults(inherited model.Defaults) {
	f.mu.Lock()
	f.defaults = inherited.Clone()
	f.mu.Unlock()
}

// Effective resolves every field against the inherited defaults.
func (f *Form) Effective() map[string]defaults.EffectiveField {
	return defaults.Resolve(f.fields, f.Defaults())
}

// Field resolves a single field.
func (f *Form) Field(name string) (defaults.EffectiveField, bool) {
	return defaults.ResolveField(f.fields, f.Defaults(), name)
}

// Overrides returns the raw values that differ from the inherited defaults.
func (f *Form) Overrides() model.Change {
	return defaults.Overrides(f.fields, f.Defaults())
}

// Status returns the current mutation status.
func (f *Form) Status() status.Snapshot {
	return f.tracker.Snapshot()
}

// Flags returns the status icon flags.
func (f *Form) Flags() status.Flags {
	return f.tracker.Flags()
}

// SetStatus relays the outcome of an external mutation. Use it when the form
// has no Mutator.
func (f *Form) SetStatus(s status.Status, err error) error {
	if setErr := f.tracker.Set(s, err); setErr != nil {
		return fmt.Errorf("form: %w", setErr)
	}
	if s == status.Success {
		f.reset.Call()
	} else {
		f.reset.Cancel()
	}
	return nil
}

// Observe registers a status observer and returns a function removing it.
func (f *Form) Observe(fn status.Observer) (cancel func()) {
	return f.tracker.Observe(fn)
}

// Close unmounts the form: pending edits are dropped, timers are stopped and
// an in-flight mutation sees its context cancelled.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()

	f.emitter.Close()
	f.reset.Cancel()
	f.cancel()
	f.logger.Debug("form: closed")
}

func (f *Form) isClosed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}

// supersede moves a terminal status back to pending on a new edit.
func (f *Form) supersede() {
	if !f.tracker.Status().Terminal() {
		return
	}
	f.reset.Cancel()
	f.setStatus(status.Pending, nil)
}

func (f *Form) emit(change model.Change) error {
	if f.isClosed() {
		return nil
	}
	f.reset.Cancel()
	f.setStatus(status.Pending, nil)

	if f.onChange != nil {
		if err := f.onChange(change); err != nil {
			return err
		}
	}
	if f.mutator == nil {
		return nil
	}

	f.setStatus(status.Loading, nil)
	if err := f.mutator.Mutate(f.ctx, f.fields.Block().ID, change); err != nil {
		f.logger.Warn("form: mutation failed", zap.Error(err), zap.Strings("fields", change.Names()))
		f.setStatus(status.Error, err)
		return nil
	}
	f.setStatus(status.Success, nil)
	f.reset.Call()
	return nil
}

func (f *Form) resetSuccess() {
	if f.tracker.Status() != status.Success {
		return
	}
	f.setStatus(status.Idle, nil)
}

func (f *Form) setStatus(s status.Status, err error) {
	if setErr := f.tracker.Set(s, err); setErr != nil {
		f.logger.Debug("form: status transition ignored", zap.Error(setErr))
	}
}
