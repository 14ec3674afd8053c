package catalog

import (
	"embed"
	"io/fs"
)

//go:embed blocks/*.yaml
var embeddedBlocks embed.FS

// EmbeddedFS returns the bundled block definitions.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedBlocks, "blocks")
	if err != nil {
		// the embed directive guarantees the directory exists
		panic(err)
	}
	return sub
}

// Embedded loads the bundled catalog.
func Embedded() (*Catalog, error) {
	return LoadFS(EmbeddedFS())
}

// Load returns the bundled catalog merged with the block files found in
// fsys; entries from fsys replace bundled ones with the same ID.
func Load(fsys fs.FS) (*Catalog, error) {
	base, err := Embedded()
	if err != nil {
		return nil, err
	}
	if fsys == nil {
		return base, nil
	}
	extra, err := LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	return base.Merge(extra), nil
}
