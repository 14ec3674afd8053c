package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blockform/pkg/model"
)

// LoadFS walks fsys and parses every JSON/YAML block file. When fsys is nil or
// holds no block files, the returned catalog is empty.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := New()
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawID, raw := range doc.Blocks {
			id := strings.TrimSpace(rawID)
			if id == "" {
				return fmt.Errorf("catalog: file %s defines an empty block id", path)
			}
			if existing, exists := catalog.entries[id]; exists {
				return fmt.Errorf("catalog: duplicate block %q (files %s and %s)", id, existing.Source, path)
			}
			entry, err := normaliseBlock(raw, id, path)
			if err != nil {
				return err
			}
			catalog.entries[id] = entry
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

type documentFile struct {
	Blocks map[string]blockFile `json:"blocks" yaml:"blocks"`
}

type blockFile struct {
	Label       string         `json:"label" yaml:"label"`
	Description string         `json:"description" yaml:"description"`
	Fields      []model.Field  `json:"fields" yaml:"fields"`
	Defaults    map[string]any `json:"defaults" yaml:"defaults"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("catalog: file %s is empty", source)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("catalog: parse %s: %w", source, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("catalog: parse %s: %w", source, err)
		}
	}
	return doc, nil
}

func normaliseBlock(raw blockFile, id, source string) (Entry, error) {
	block := model.Block{
		ID:          id,
		Label:       strings.TrimSpace(raw.Label),
		Description: strings.TrimSpace(raw.Description),
		Fields:      make([]model.Field, 0, len(raw.Fields)),
	}
	if block.Label == "" {
		block.Label = model.DefaultLabeler(strings.ToLower(id))
	}
	for _, field := range raw.Fields {
		field.Name = strings.TrimSpace(field.Name)
		field.Type = model.FieldType(strings.ToLower(strings.TrimSpace(string(field.Type))))
		if field.Label == "" {
			field.Label = model.DefaultLabeler(field.Name)
		}
		field.Options = append([]string(nil), field.Options...)
		block.Fields = append(block.Fields, field)
	}
	if err := block.Validate(); err != nil {
		return Entry{}, fmt.Errorf("catalog: file %s: %w", source, err)
	}

	defaults := make(model.Defaults, len(raw.Defaults))
	for name, value := range raw.Defaults {
		normalized, err := block.CheckValue(name, value)
		if err != nil {
			return Entry{}, fmt.Errorf("catalog: file %s block %q default: %w", source, id, err)
		}
		defaults[name] = normalized
	}

	return Entry{Block: block, Defaults: defaults, Source: source}, nil
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
