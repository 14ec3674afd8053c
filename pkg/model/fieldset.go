package model

import (
	"fmt"
	"sync"
)

// FieldSet holds the raw values edited for one building block in the current
// scope. A field with no entry has no override and inherits its default. The
// set is safe for concurrent use.
type FieldSet struct {
	mu     sync.RWMutex
	block  Block
	values map[string]any
}

// NewFieldSet validates the block and seeds the set with initial values.
// Nil entries are treated as absent; unknown names or mistyped values fail.
func NewFieldSet(block Block, initial map[string]any) (*FieldSet, error) {
	if err := block.Validate(); err != nil {
		return nil, err
	}
	fs := &FieldSet{
		block:  block,
		values: make(map[string]any, len(initial)),
	}
	for name, value := range initial {
		if value == nil {
			if !block.Has(name) {
				return nil, fmt.Errorf("%w: %q in block %q", ErrUnknownField, name, block.ID)
			}
			continue
		}
		normalized, err := block.CheckValue(name, value)
		if err != nil {
			return nil, err
		}
		fs.values[name] = normalized
	}
	return fs, nil
}

// Block returns the block declaration the set is bound to.
func (fs *FieldSet) Block() Block {
	if fs == nil {
		return Block{}
	}
	return fs.block
}

// Has reports whether name is part of the set's field domain.
func (fs *FieldSet) Has(name string) bool {
	if fs == nil {
		return false
	}
	return fs.block.Has(name)
}

// Get returns the raw value of a field and whether it is set.
func (fs *FieldSet) Get(name string) (any, bool) {
	if fs == nil {
		return nil, false
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	value, ok := fs.values[name]
	if !ok {
		return nil, false
	}
	return deepCopy(value), true
}

// Set stores a value for a field. A nil value removes the override.
func (fs *FieldSet) Set(name string, value any) error {
	if fs == nil {
		return fmt.Errorf("model: field set is nil")
	}
	if value == nil {
		return fs.Unset(name)
	}
	normalized, err := fs.block.CheckValue(name, value)
	if err != nil {
		return err
	}
	fs.mu.Lock()
	fs.values[name] = normalized
	fs.mu.Unlock()
	return nil
}

// Unset removes the override of a field.
func (fs *FieldSet) Unset(name string) error {
	if fs == nil {
		return fmt.Errorf("model: field set is nil")
	}
	if !fs.block.Has(name) {
		return fmt.Errorf("%w: %q in block %q", ErrUnknownField, name, fs.block.ID)
	}
	fs.mu.Lock()
	delete(fs.values, name)
	fs.mu.Unlock()
	return nil
}

// Apply stores every entry of a change, stopping at the first invalid one.
// Entries applied before the failure are kept.
func (fs *FieldSet) Apply(change Change) error {
	for _, name := range change.Names() {
		if err := fs.Set(name, change[name]); err != nil {
			return err
		}
	}
	return nil
}

// Values returns a copy of the raw values currently set.
func (fs *FieldSet) Values() map[string]any {
	if fs == nil {
		return nil
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return cloneValues(fs.values)
}
