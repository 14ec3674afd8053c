package defaults

import "github.com/goliatone/go-blockform/pkg/model"

// Chain flattens an inheritance chain into a single Defaults map. Layers are
// ordered from the outermost scope (global) to the nearest parent scope;
// nearer layers win and nil entries fall through to the outer layer.
func Chain(layers ...model.Defaults) model.Defaults {
	out := model.Defaults{}
	for _, layer := range layers {
		for name, value := range layer {
			if value == nil {
				continue
			}
			out[name] = value
		}
	}
	return out.Clone()
}

// Source records which layer of a chain contributed a default.
type Source struct {
	Value any
	// Layer is the index of the contributing layer in the chain.
	Layer int
}

// Trace returns, for every field with a default, the value and the index of
// the layer it was inherited from.
func Trace(layers ...model.Defaults) map[string]Source {
	out := make(map[string]Source)
	for idx, layer := range layers {
		for name, value := range layer {
			if value == nil {
				continue
			}
			out[name] = Source{Value: value, Layer: idx}
		}
	}
	return out
}
