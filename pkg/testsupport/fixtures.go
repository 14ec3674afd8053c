// Package testsupport holds fixture helpers shared by the package tests and
// by callers testing their own block catalogs.
package testsupport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blockform/pkg/catalog"
	"github.com/goliatone/go-blockform/pkg/config"
	"github.com/goliatone/go-blockform/pkg/model"
)

// MustLoadValues reads a YAML or JSON scope file into a value map.
func MustLoadValues(t *testing.T, path string) map[string]any {
	t.Helper()

	values, err := LoadValues(path)
	if err != nil {
		t.Fatalf("load values: %v", err)
	}
	return values
}

// LoadValues reads a scope file without requiring testing.T. Unlike
// config.ReadValues, a missing fixture is an error.
func LoadValues(path string) (map[string]any, error) {
	if path == "" {
		return nil, errors.New("testsupport: values path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read values: %w", err)
	}
	return config.ParseValues(data, path)
}

// MustLoadDefaults reads a defaults fixture.
func MustLoadDefaults(t *testing.T, path string) model.Defaults {
	t.Helper()
	return model.Defaults(MustLoadValues(t, path))
}

// MustParseBlock decodes a single block declaration written in YAML, using
// the catalog loader so labels and types are normalized the same way.
func MustParseBlock(t *testing.T, id, declaration string) catalog.Entry {
	t.Helper()

	var fields any
	if err := yaml.Unmarshal([]byte(declaration), &fields); err != nil {
		t.Fatalf("parse block %s: %v", id, err)
	}
	doc, err := yaml.Marshal(map[string]any{"blocks": map[string]any{id: fields}})
	if err != nil {
		t.Fatalf("encode block %s: %v", id, err)
	}
	cat, err := catalog.LoadFS(fstest.MapFS{"block.yaml": {Data: doc}})
	if err != nil {
		t.Fatalf("load block %s: %v", id, err)
	}
	entry, _ := cat.Entry(id)
	return entry
}

// AssertGolden compares got with the golden file at path. With
// UPDATE_GOLDENS set the file is rewritten from got instead.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("golden %s: %v", path, err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("golden %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("golden %s: %v (set UPDATE_GOLDENS=1 to create it)", path, err)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}

// CompareValues returns a diff string if the values differ. Empty and nil
// collections compare equal, matching how the resolver compares values.
func CompareValues(want, got any) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}
