// Package defaults computes the effective value of every field of a building
// block by layering the user's overrides over the defaults inherited from the
// parent configuration scope.
package defaults

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-blockform/pkg/model"
)

// EffectiveField is the derived view of a single field.
type EffectiveField struct {
	// Value is the value to display: the default when IsDefault holds,
	// otherwise the raw override (nil when neither exists).
	Value any
	// IsDefault reports that the field inherits its value.
	IsDefault bool
	// Default is the inherited default when HasDefault holds.
	Default    any
	HasDefault bool
	// Override reports that a raw value is set, even if it equals the default.
	Override bool
}

var equalOpts = cmp.Options{cmpopts.EquateEmpty()}

// Equal reports structural equality of two normalized values.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, equalOpts)
}

// Resolve computes the effective view of every field of the set. A default
// that does not fit the field type is treated as missing. Resolve is a pure
// function of its inputs.
func Resolve(fields *model.FieldSet, defaults model.Defaults) map[string]EffectiveField {
	block := fields.Block()
	values := fields.Values()
	out := make(map[string]EffectiveField, len(block.Fields))
	for _, field := range block.Fields {
		out[field.Name] = resolve(field, values, defaults)
	}
	return out
}

// ResolveField computes the effective view of a single field.
func ResolveField(fields *model.FieldSet, defaults model.Defaults, name string) (EffectiveField, bool) {
	field, ok := fields.Block().Field(name)
	if !ok {
		return EffectiveField{}, false
	}
	raw, set := fields.Get(name)
	values := map[string]any{}
	if set {
		values[name] = raw
	}
	return resolve(field, values, defaults), true
}

func resolve(field model.Field, values map[string]any, defaults model.Defaults) EffectiveField {
	raw, set := values[field.Name]
	if raw == nil {
		set = false
	}

	var (
		def    any
		hasDef bool
	)
	if candidate, ok := defaults[field.Name]; ok && candidate != nil {
		def, hasDef = field.Normalize(candidate)
	}

	switch {
	case hasDef && (!set || Equal(raw, def)):
		return EffectiveField{Value: def, IsDefault: true, Default: def, HasDefault: true, Override: set}
	case set:
		return EffectiveField{Value: raw, Default: def, HasDefault: hasDef, Override: true}
	default:
		return EffectiveField{}
	}
}

// Overrides returns the raw values that differ from their inherited default,
// which is the minimal set of entries worth persisting for the scope.
func Overrides(fields *model.FieldSet, defaults model.Defaults) model.Change {
	out := model.Change{}
	for name, field := range Resolve(fields, defaults) {
		if field.Override && !field.IsDefault {
			out[name] = field.Value
		}
	}
	return out
}
