package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldType is the tagged variant describing the kind of value a field holds.
type FieldType string

const (
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeString  FieldType = "string"
	FieldTypeEnum    FieldType = "enum"
	FieldTypeNumber  FieldType = "number"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeBoolean, FieldTypeString, FieldTypeEnum, FieldTypeNumber:
		return true
	default:
		return false
	}
}

// FormatHTML marks string fields whose values contain markup. Forms sanitize
// such values before they are stored or emitted.
const FormatHTML = "html"

var (
	// ErrUnknownField is returned when a name is outside the block's field domain.
	ErrUnknownField = errors.New("model: unknown field")
	// ErrInvalidValue is returned when a value does not fit the field type.
	ErrInvalidValue = errors.New("model: invalid value")
	// ErrInvalidBlock is returned by Block.Validate for malformed declarations.
	ErrInvalidBlock = errors.New("model: invalid block")
)

// Field declares a single configurable entry of a building block.
type Field struct {
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Format      string    `json:"format,omitempty" yaml:"format,omitempty"`
	// Options lists the allowed values of an enum field.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	// Multiple turns an enum field into a selected-option list.
	Multiple bool `json:"multiple,omitempty" yaml:"multiple,omitempty"`
}

// DisplayLabel returns the declared label or one derived from the name.
func (f Field) DisplayLabel() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return DefaultLabeler(f.Name)
}

// HasOption reports whether option is one of the field's enum options.
func (f Field) HasOption(option string) bool {
	for _, candidate := range f.Options {
		if candidate == option {
			return true
		}
	}
	return false
}

// Block is a named, independently togglable configuration section together
// with its declared fields.
type Block struct {
	ID          string  `json:"id" yaml:"id"`
	Label       string  `json:"label,omitempty" yaml:"label,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Field looks up a field declaration by name.
func (b Block) Field(name string) (Field, bool) {
	for _, field := range b.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Has reports whether name belongs to the block's field domain.
func (b Block) Has(name string) bool {
	_, ok := b.Field(name)
	return ok
}

// Names returns the field names in declaration order.
func (b Block) Names() []string {
	out := make([]string, 0, len(b.Fields))
	for _, field := range b.Fields {
		out = append(out, field.Name)
	}
	return out
}

// Validate checks that field names are unique and non-empty, that every type
// is supported, and that enum fields declare at least one option.
func (b Block) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: block id is required", ErrInvalidBlock)
	}
	seen := make(map[string]struct{}, len(b.Fields))
	for idx, field := range b.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("%w: block %q field %d has an empty name", ErrInvalidBlock, b.ID, idx)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("%w: block %q declares field %q twice", ErrInvalidBlock, b.ID, name)
		}
		seen[name] = struct{}{}
		if !field.Type.Valid() {
			return fmt.Errorf("%w: block %q field %q has unsupported type %q", ErrInvalidBlock, b.ID, name, field.Type)
		}
		if field.Type == FieldTypeEnum && len(field.Options) == 0 {
			return fmt.Errorf("%w: block %q enum field %q declares no options", ErrInvalidBlock, b.ID, name)
		}
		if field.Type != FieldTypeEnum && field.Multiple {
			return fmt.Errorf("%w: block %q field %q: multiple is only valid on enum fields", ErrInvalidBlock, b.ID, name)
		}
	}
	return nil
}

// Defaults maps field names to the values inherited from the parent scope.
// It is owned by the caller and treated as read-only.
type Defaults map[string]any

// Clone returns a deep copy of the defaults.
func (d Defaults) Clone() Defaults {
	if d == nil {
		return nil
	}
	return Defaults(cloneValues(d))
}

// Change is a batch of field edits. A nil value removes the field's override
// so it inherits its default again.
type Change map[string]any

// Names returns the changed field names sorted alphabetically.
func (c Change) Names() []string {
	out := make([]string, 0, len(c))
	for name := range c {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the change.
func (c Change) Clone() Change {
	if c == nil {
		return nil
	}
	return Change(cloneValues(c))
}
