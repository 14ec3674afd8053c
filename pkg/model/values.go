package model

import (
	"encoding/json"
	"fmt"
)

// Accepts reports whether value fits the declared type of the named field.
// Unknown fields and nil values are never accepted.
func (b Block) Accepts(name string, value any) bool {
	_, ok := b.Normalize(name, value)
	return ok
}

// Normalize returns the canonical form of value for the named field. Numbers
// become float64 and multi-select enums become []string; no conversion is
// attempted across types, so "true" is not a boolean and 1 is not a string.
func (b Block) Normalize(name string, value any) (any, bool) {
	field, ok := b.Field(name)
	if !ok || value == nil {
		return nil, false
	}
	return field.Normalize(value)
}

// Normalize returns the canonical form of value for this field.
func (f Field) Normalize(value any) (any, bool) {
	switch f.Type {
	case FieldTypeBoolean:
		typed, ok := value.(bool)
		return typed, ok
	case FieldTypeString:
		typed, ok := value.(string)
		return typed, ok
	case FieldTypeNumber:
		return toFloat(value)
	case FieldTypeEnum:
		if f.Multiple {
			return f.normalizeSelection(value)
		}
		typed, ok := value.(string)
		if !ok || !f.HasOption(typed) {
			return nil, false
		}
		return typed, true
	default:
		return nil, false
	}
}

func (f Field) normalizeSelection(value any) (any, bool) {
	var selected []string
	switch typed := value.(type) {
	case []string:
		selected = append([]string{}, typed...)
	case []any:
		selected = make([]string, 0, len(typed))
		for _, item := range typed {
			option, ok := item.(string)
			if !ok {
				return nil, false
			}
			selected = append(selected, option)
		}
	default:
		return nil, false
	}
	for _, option := range selected {
		if !f.HasOption(option) {
			return nil, false
		}
	}
	return selected, true
}

func toFloat(value any) (any, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return nil, false
		}
		return parsed, true
	default:
		return nil, false
	}
}

// CheckValue validates value against the named field and returns its
// canonical form, wrapping ErrUnknownField or ErrInvalidValue on failure.
func (b Block) CheckValue(name string, value any) (any, error) {
	field, ok := b.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q in block %q", ErrUnknownField, name, b.ID)
	}
	normalized, ok := field.Normalize(value)
	if !ok {
		return nil, fmt.Errorf("%w: field %q (%s) cannot hold %T", ErrInvalidValue, name, field.Type, value)
	}
	return normalized, nil
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

// deepCopy clones the composite shapes produced by JSON/YAML decoding so
// callers cannot mutate state through shared references.
func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

// CloneValue returns a deep copy of a decoded value.
func CloneValue(value any) any {
	return deepCopy(value)
}
