// Package tui edits a building-block form from the terminal. Each field is
// shown with its effective value and whether that value is inherited, and
// every answer goes through the form so edits are debounced exactly as they
// are in any other front-end.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/pkg/defaults"
	"github.com/goliatone/go-blockform/pkg/form"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/status"
)

const doneOption = "Done"

// Editor drives a form through a PromptDriver.
type Editor struct {
	driver         PromptDriver
	theme          Theme
	logger         *zap.Logger
	statusMessages bool
}

// New constructs an editor using the survey driver unless one is supplied.
func New(options ...Option) *Editor {
	e := &Editor{
		theme:  DefaultTheme,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(nil)
	}
	return e
}

// Run shows the field menu until the user picks Done, then flushes pending
// edits as if the form lost focus.
func (e *Editor) Run(ctx context.Context, f *form.Form) error {
	if f == nil {
		return ErrNoForm
	}
	// status changes arrive from timer goroutines; they are buffered and
	// shown between prompts so the driver is only used from this goroutine
	pending := &statusQueue{}
	if e.statusMessages {
		cancel := f.Observe(func(snap status.Snapshot) {
			if msg := statusMessage(snap); msg != "" {
				pending.push(e.theme.InfoPrefix + msg)
			}
		})
		defer cancel()
	}

	block := f.Block()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.showStatus(ctx, pending)
		effective := f.Effective()
		options := make([]string, 0, len(block.Fields)+1)
		for _, field := range block.Fields {
			options = append(options, Describe(field, effective[field.Name]))
		}
		options = append(options, doneOption)

		idx, err := e.driver.Select(ctx, SelectConfig{
			Message:      fmt.Sprintf("%s: select a field", block.Label),
			Options:      options,
			DefaultIndex: len(options) - 1,
			Help:         block.Description,
		})
		if err != nil {
			return err
		}
		if idx == len(block.Fields) {
			f.Blur()
			e.showStatus(ctx, pending)
			return nil
		}
		if idx < 0 || idx > len(block.Fields) {
			_ = e.driver.Info(ctx, e.theme.ErrorPrefix+"invalid selection")
			continue
		}
		if err := e.EditField(ctx, f, block.Fields[idx].Name); err != nil {
			return err
		}
	}
}

// EditField prompts for one field. An overridden field with an inherited
// default first offers to revert to that default.
func (e *Editor) EditField(ctx context.Context, f *form.Form, name string) error {
	if f == nil {
		return ErrNoForm
	}
	field, ok := f.Block().Field(name)
	if !ok {
		return fmt.Errorf("tui: edit %q: %w", name, model.ErrUnknownField)
	}
	current, _ := f.Field(name)

	if current.Override && current.HasDefault {
		revert, err := e.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Revert %s to the inherited value %s?", field.DisplayLabel(), FormatValue(current.Default)),
		})
		if err != nil {
			return err
		}
		if revert {
			return f.Revert(name)
		}
	}

	value, err := e.prompt(ctx, field, current)
	if err != nil {
		return err
	}
	// an unchanged answer keeps an inherited field inherited
	if defaults.Equal(value, current.Value) {
		return nil
	}
	if err := f.Edit(name, value); err != nil {
		e.logger.Warn("tui: edit rejected", zap.String("field", name), zap.Error(err))
		_ = e.driver.Info(ctx, e.theme.ErrorPrefix+err.Error())
		return nil
	}
	return nil
}

func (e *Editor) prompt(ctx context.Context, field model.Field, current defaults.EffectiveField) (any, error) {
	label := field.DisplayLabel()
	help := field.Description

	switch field.Type {
	case model.FieldTypeBoolean:
		def, _ := current.Value.(bool)
		return e.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: def, Help: help})

	case model.FieldTypeNumber:
		def := ""
		if current.Value != nil {
			def = FormatValue(current.Value)
		}
		for {
			raw, err := e.driver.Input(ctx, InputConfig{Message: label, Default: def, Help: help})
			if err != nil {
				return nil, err
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				_ = e.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %q is not a number", e.theme.ErrorPrefix, label, raw))
				continue
			}
			return n, nil
		}

	case model.FieldTypeEnum:
		if field.Multiple {
			selected, _ := current.Value.([]string)
			idx, err := e.driver.MultiSelect(ctx, SelectConfig{
				Message:  label,
				Options:  field.Options,
				Defaults: indicesOf(field.Options, selected),
				Help:     help,
			})
			if err != nil {
				return nil, err
			}
			values := valuesAt(field.Options, idx)
			if values == nil {
				values = []string{}
			}
			return values, nil
		}
		selected, _ := current.Value.(string)
		for {
			idx, err := e.driver.Select(ctx, SelectConfig{
				Message:      label,
				Options:      field.Options,
				DefaultIndex: indexOf(field.Options, selected),
				Help:         help,
			})
			if err != nil {
				return nil, err
			}
			if idx < 0 || idx >= len(field.Options) {
				_ = e.driver.Info(ctx, fmt.Sprintf("%sInvalid %s selection", e.theme.ErrorPrefix, label))
				continue
			}
			return field.Options[idx], nil
		}

	default:
		def, _ := current.Value.(string)
		if field.Format == model.FormatHTML {
			return e.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: def, Help: help})
		}
		return e.driver.Input(ctx, InputConfig{Message: label, Default: def, Help: help})
	}
}

// Describe renders one menu line: label, effective value and provenance.
func Describe(field model.Field, effective defaults.EffectiveField) string {
	var provenance string
	switch {
	case effective.IsDefault:
		provenance = "inherited"
	case effective.Override:
		provenance = "overridden"
	default:
		provenance = "unset"
	}
	return fmt.Sprintf("%s: %s (%s)", field.DisplayLabel(), FormatValue(effective.Value), provenance)
}

// FormatValue renders a field value for display.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return "[" + strings.Join(v, ", ") + "]"
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return "{" + strings.Join(keys, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}

type statusQueue struct {
	mu       sync.Mutex
	messages []string
}

func (q *statusQueue) push(msg string) {
	q.mu.Lock()
	q.messages = append(q.messages, msg)
	q.mu.Unlock()
}

func (q *statusQueue) take() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.messages
	q.messages = nil
	return out
}

func (e *Editor) showStatus(ctx context.Context, q *statusQueue) {
	for _, msg := range q.take() {
		_ = e.driver.Info(ctx, msg)
	}
}

func statusMessage(snap status.Snapshot) string {
	switch snap.Status {
	case status.Loading:
		return "Saving..."
	case status.Success:
		return "Saved"
	case status.Error:
		if snap.Err == nil {
			return "Save failed"
		}
		return "Save failed: " + snap.Err.Error()
	default:
		return ""
	}
}

// IsAborted reports whether err came from the user aborting a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}
