// Package catalog loads building-block declarations from JSON or YAML files.
// Each file may declare several blocks together with the built-in defaults
// that form the outermost layer of the inheritance chain. The module ships
// an embedded catalog with the standard blocks; callers may merge their own
// definitions on top.
package catalog

import (
	"errors"
	"sort"

	"github.com/goliatone/go-blockform/pkg/model"
)

// ErrUnknownBlock is returned when a block ID is not in the catalog.
var ErrUnknownBlock = errors.New("catalog: unknown block")

// Entry is a block declaration plus its built-in defaults.
type Entry struct {
	Block    model.Block
	Defaults model.Defaults
	// Source is the file the entry was loaded from.
	Source string
}

// Catalog indexes entries by block ID. It is safe for concurrent readers when
// treated as immutable after construction.
type Catalog struct {
	entries map[string]Entry
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[string]Entry)}
}

// Block returns the declaration of a block.
func (c *Catalog) Block(id string) (model.Block, bool) {
	entry, ok := c.Entry(id)
	return entry.Block, ok
}

// Defaults returns a copy of the built-in defaults of a block.
func (c *Catalog) Defaults(id string) model.Defaults {
	entry, ok := c.Entry(id)
	if !ok {
		return nil
	}
	return entry.Defaults.Clone()
}

// Entry returns the full entry of a block.
func (c *Catalog) Entry(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	entry, ok := c.entries[id]
	return entry, ok
}

// IDs returns the block IDs sorted alphabetically.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.entries))
	for id := range c.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the catalog holds any block.
func (c *Catalog) Empty() bool {
	return c == nil || len(c.entries) == 0
}

// Merge returns a catalog holding the entries of c overridden by those of
// other with the same ID.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := New()
	for _, src := range []*Catalog{c, other} {
		if src == nil {
			continue
		}
		for id, entry := range src.entries {
			out.entries[id] = entry
		}
	}
	return out
}
