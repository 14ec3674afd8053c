package blockform

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blockform/pkg/catalog"
)

func TestOpenForm_LayersCatalogDefaults(t *testing.T) {
	cat, err := LoadCatalog(nil)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	api := Defaults{"layout": "COMPLEX_OBJECTS"}
	f, err := OpenForm(cat, "FEATURES_HTML", map[string]any{"style": "DARK"}, []Defaults{api})
	if err != nil {
		t.Fatalf("open form: %v", err)
	}
	defer f.Close()

	effective := f.Effective()
	if got := effective["layout"]; !got.IsDefault || got.Value != "COMPLEX_OBJECTS" {
		t.Fatalf("expected nearest scope default, got %+v", got)
	}
	if got := effective["mapClientType"]; got.Value != "MAP_LIBRE" {
		t.Fatalf("expected catalog default, got %+v", got)
	}
	if diff := cmp.Diff(Change{"style": "DARK"}, f.Overrides()); diff != "" {
		t.Fatalf("overrides mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenForm_UnknownBlock(t *testing.T) {
	cat, err := LoadCatalog(nil)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if _, err := OpenForm(cat, "NOPE", nil, nil); !errors.Is(err, catalog.ErrUnknownBlock) {
		t.Fatalf("expected ErrUnknownBlock, got %v", err)
	}
}

func TestBlockFromOpenAPI(t *testing.T) {
	doc := []byte(`{
  "openapi": "3.0.3",
  "info": {"title": "API", "version": "1.0.0"},
  "paths": {},
  "components": {"schemas": {"Tiles": {"type": "object", "properties": {
    "enabled": {"type": "boolean", "default": false}
  }}}}
}`)
	block, defs, err := BlockFromOpenAPI(context.Background(), doc, "Tiles", "TILES")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if block.ID != "TILES" || len(block.Fields) != 1 {
		t.Fatalf("unexpected block %+v", block)
	}
	if diff := cmp.Diff(Defaults{"enabled": false}, defs); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}
