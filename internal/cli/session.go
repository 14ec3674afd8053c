package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/internal/openapi"
	"github.com/goliatone/go-blockform/pkg/catalog"
	"github.com/goliatone/go-blockform/pkg/config"
	"github.com/goliatone/go-blockform/pkg/defaults"
	"github.com/goliatone/go-blockform/pkg/model"
)

var errBlockRequired = errors.New("cli: --block is required")

// session is the block plus its inheritance chain, outermost layer first.
type session struct {
	block      model.Block
	layers     []model.Defaults
	layerNames []string
}

func (s *session) inherited() model.Defaults {
	return defaults.Chain(s.layers...)
}

// sourceOf names the layer a field inherits from, or "" when none does.
func (s *session) sourceOf(name string) string {
	src, ok := defaults.Trace(s.layers...)[name]
	if !ok {
		return ""
	}
	return s.layerNames[src.Layer]
}

func (o *RootOptions) loadCatalog() (*catalog.Catalog, error) {
	dir := o.CatalogDir
	if dir == "" {
		dir = o.cfg.CatalogDir
	}
	if dir == "" {
		return catalog.Embedded()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("cli: catalog directory: %w", err)
	}
	return catalog.Load(os.DirFS(dir))
}

func (o *RootOptions) openSession(ctx context.Context, blockID string, files []string) (*session, error) {
	blockID = strings.TrimSpace(blockID)
	if blockID == "" {
		return nil, errBlockRequired
	}

	s := &session{}
	if o.OpenAPI != "" {
		data, err := os.ReadFile(o.OpenAPI)
		if err != nil {
			return nil, fmt.Errorf("cli: read openapi document: %w", err)
		}
		component := o.Component
		if component == "" {
			component = blockID
		}
		result, err := openapi.Extract(ctx, data, component, blockID)
		if err != nil {
			return nil, err
		}
		if len(result.Skipped) > 0 {
			o.logger.Debug("cli: openapi properties skipped", zap.Strings("properties", result.Skipped))
		}
		s.block = result.Block
		s.layers = append(s.layers, result.Defaults)
		s.layerNames = append(s.layerNames, filepath.Base(o.OpenAPI))
	} else {
		cat, err := o.loadCatalog()
		if err != nil {
			return nil, err
		}
		entry, ok := cat.Entry(blockID)
		if !ok {
			return nil, fmt.Errorf("cli: block %q not found in catalog: %w", blockID, catalog.ErrUnknownBlock)
		}
		s.block = entry.Block
		s.layers = append(s.layers, entry.Defaults)
		s.layerNames = append(s.layerNames, "catalog")
	}

	for _, path := range append(append([]string(nil), o.cfg.Defaults...), files...) {
		layer, err := readDefaults(path, blockID)
		if err != nil {
			return nil, err
		}
		s.layers = append(s.layers, layer)
		s.layerNames = append(s.layerNames, path)
	}

	o.logger.Debug("cli: session opened",
		zap.String("block", blockID),
		zap.Strings("layers", s.layerNames),
	)
	return s, nil
}

// readDefaults loads one layer. A file may hold the flat defaults of one
// block or a mapping keyed by block ID.
func readDefaults(path, blockID string) (model.Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cli: read defaults: %w", err)
	}
	values, err := config.ParseValues(data, path)
	if err != nil {
		return nil, err
	}
	if nested, ok := values[blockID].(map[string]any); ok {
		return model.Defaults(nested), nil
	}
	return model.Defaults(values), nil
}
