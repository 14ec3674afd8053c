package form

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/pkg/config"
	"github.com/goliatone/go-blockform/pkg/debounce"
	"github.com/goliatone/go-blockform/pkg/model"
)

// Mutator persists an emitted change. It is the external collaborator that
// performs the save request; its outcome drives the form status.
type Mutator interface {
	Mutate(ctx context.Context, blockID string, change model.Change) error
}

// MutatorFunc adapts a function into a Mutator.
type MutatorFunc func(ctx context.Context, blockID string, change model.Change) error

// Mutate calls the underlying function.
func (fn MutatorFunc) Mutate(ctx context.Context, blockID string, change model.Change) error {
	return fn(ctx, blockID, change)
}

// Option configures a Form.
type Option func(*Form)

// WithMutator lets the form drive its own status: every emission moves it
// through pending and loading to success or error.
func WithMutator(mutator Mutator) Option {
	return func(f *Form) {
		f.mutator = mutator
	}
}

// WithOnChange registers a callback receiving every emitted change. Without a
// mutator the callback is the mutation caller and reports progress through
// Form.SetStatus.
func WithOnChange(fn debounce.ChangeFunc) Option {
	return func(f *Form) {
		f.onChange = fn
	}
}

// WithQuietPeriod sets the debounce quiet period.
func WithQuietPeriod(d time.Duration) Option {
	return func(f *Form) {
		if d > 0 {
			f.quiet = d
		}
	}
}

// WithSuccessDisplay sets how long the success status stays visible before
// the form returns to idle.
func WithSuccessDisplay(d time.Duration) Option {
	return func(f *Form) {
		if d > 0 {
			f.successDisplay = d
		}
	}
}

// WithConfig applies the timing configuration.
func WithConfig(cfg config.Config) Option {
	return func(f *Form) {
		WithQuietPeriod(cfg.QuietPeriod)(f)
		WithSuccessDisplay(cfg.SuccessDisplay)(f)
	}
}

// WithClock overrides the clock driving both the debounce and the success
// reset timers.
func WithClock(clock debounce.Clock) Option {
	return func(f *Form) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithContext sets the parent context handed to the mutator. Close cancels
// the derived context.
func WithContext(ctx context.Context) Option {
	return func(f *Form) {
		if ctx != nil {
			f.parent = ctx
		}
	}
}
