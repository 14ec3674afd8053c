// Package blockform is the top-level entry point of the building-block
// configuration model. It re-exports the types most callers need and wires
// the catalog, the inheritance chain and the form together.
package blockform

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-blockform/internal/openapi"
	"github.com/goliatone/go-blockform/pkg/catalog"
	"github.com/goliatone/go-blockform/pkg/defaults"
	"github.com/goliatone/go-blockform/pkg/form"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/status"
)

// Block aliases model.Block.
type Block = model.Block

// Field aliases model.Field.
type Field = model.Field

// Defaults aliases model.Defaults.
type Defaults = model.Defaults

// Change aliases model.Change.
type Change = model.Change

// Form aliases form.Form.
type Form = form.Form

// FormOption aliases form.Option.
type FormOption = form.Option

// Mutator aliases form.Mutator.
type Mutator = form.Mutator

// MutatorFunc aliases form.MutatorFunc.
type MutatorFunc = form.MutatorFunc

// EffectiveField aliases defaults.EffectiveField.
type EffectiveField = defaults.EffectiveField

// Status aliases status.Status.
type Status = status.Status

// StatusFlags aliases status.Flags for callers rendering a status icon.
type StatusFlags = status.Flags

// Catalog aliases catalog.Catalog.
type Catalog = catalog.Catalog

// NewForm opens a form for block with the raw values of the current scope and
// the defaults inherited from the parent scope.
func NewForm(block Block, values map[string]any, inherited Defaults, options ...FormOption) (*Form, error) {
	return form.New(block, values, inherited, options...)
}

// LoadCatalog returns the embedded catalog merged with the block files found
// in fsys. A nil fsys yields the embedded catalog alone.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	return catalog.Load(fsys)
}

// OpenForm opens a form for a catalog block. The block's built-in defaults
// form the outermost layer; scopes lists the enclosing scopes' defaults from
// the outermost to the nearest.
func OpenForm(cat *Catalog, blockID string, values map[string]any, scopes []Defaults, options ...FormOption) (*Form, error) {
	entry, ok := cat.Entry(blockID)
	if !ok {
		return nil, fmt.Errorf("blockform: block %q: %w", blockID, catalog.ErrUnknownBlock)
	}
	layers := append([]Defaults{entry.Defaults}, scopes...)
	return form.New(entry.Block, values, defaults.Chain(layers...), options...)
}

// BlockFromOpenAPI derives a block and its built-in defaults from a component
// schema of an OpenAPI 3 document. blockID defaults to the component name.
func BlockFromOpenAPI(ctx context.Context, document []byte, component, blockID string) (Block, Defaults, error) {
	result, err := openapi.Extract(ctx, document, component, blockID)
	if err != nil {
		return Block{}, nil, err
	}
	return result.Block, result.Defaults, nil
}
