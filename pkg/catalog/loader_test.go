package catalog_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blockform/pkg/catalog"
	"github.com/goliatone/go-blockform/pkg/model"
)

func TestEmbedded(t *testing.T) {
	cat, err := catalog.Embedded()
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}

	wantIDs := []string{"FEATURES_CORE", "FEATURES_HTML", "HTML", "METADATA", "STYLES"}
	if diff := cmp.Diff(wantIDs, cat.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	block, ok := cat.Block("FEATURES_HTML")
	if !ok {
		t.Fatalf("FEATURES_HTML missing")
	}
	layout, ok := block.Field("layout")
	if !ok || layout.Type != model.FieldTypeEnum {
		t.Fatalf("unexpected layout field %+v", layout)
	}
	if layout.Label != "Layout" {
		t.Fatalf("expected derived label, got %q", layout.Label)
	}

	styles := cat.Defaults("STYLES")
	if diff := cmp.Diff([]string{"Mapbox", "HTML"}, styles["styleEncodings"]); diff != "" {
		t.Fatalf("styleEncodings default mismatch (-want +got):\n%s", diff)
	}
	if got := cat.Defaults("FEATURES_CORE")["maximumPageSize"]; got != float64(10000) {
		t.Fatalf("expected numeric default normalized to float64, got %#v", got)
	}
	if got := cat.Defaults("METADATA"); len(got) != 0 {
		t.Fatalf("expected no metadata defaults, got %v", got)
	}
}

func TestLoadFS_JSONAndYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"api.json": {Data: []byte(`{
  "blocks": {
    "OAS30": {
      "fields": [{"name": "enabled", "type": "boolean"}],
      "defaults": {"enabled": true}
    }
  }
}`)},
		"nested/tiles.yml": {Data: []byte(`
blocks:
  TILES:
    fields:
      - name: minZoom
        type: NUMBER
      - name: maxZoom
        type: number
    defaults:
      maxZoom: 18
`)},
		"README.md": {Data: []byte("ignored")},
	}

	cat, err := catalog.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"OAS30", "TILES"}, cat.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	entry, _ := cat.Entry("TILES")
	if entry.Source != "nested/tiles.yml" {
		t.Fatalf("unexpected source %q", entry.Source)
	}
	if entry.Block.Label != "Tiles" {
		t.Fatalf("expected derived block label, got %q", entry.Block.Label)
	}
	if field, _ := entry.Block.Field("minZoom"); field.Type != model.FieldTypeNumber {
		t.Fatalf("type must be case-insensitive, got %q", field.Type)
	}
	if diff := cmp.Diff(model.Defaults{"maxZoom": float64(18)}, entry.Defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS_Errors(t *testing.T) {
	cases := map[string]struct {
		files fstest.MapFS
		want  string
	}{
		"empty file": {
			files: fstest.MapFS{"a.yaml": {Data: []byte("  \n")}},
			want:  "is empty",
		},
		"duplicate block": {
			files: fstest.MapFS{
				"a.yaml": {Data: []byte("blocks:\n  X:\n    fields: [{name: a, type: boolean}]\n")},
				"b.yaml": {Data: []byte("blocks:\n  X:\n    fields: [{name: a, type: boolean}]\n")},
			},
			want: "duplicate block",
		},
		"unknown type": {
			files: fstest.MapFS{"a.yaml": {Data: []byte("blocks:\n  X:\n    fields: [{name: a, type: date}]\n")}},
			want:  "unsupported type",
		},
		"enum without options": {
			files: fstest.MapFS{"a.yaml": {Data: []byte("blocks:\n  X:\n    fields: [{name: a, type: enum}]\n")}},
			want:  "declares no options",
		},
		"mistyped default": {
			files: fstest.MapFS{"a.yaml": {Data: []byte("blocks:\n  X:\n    fields: [{name: a, type: boolean}]\n    defaults: {a: \"yes\"}\n")}},
			want:  "invalid value",
		},
		"default for unknown field": {
			files: fstest.MapFS{"a.yaml": {Data: []byte("blocks:\n  X:\n    fields: [{name: a, type: boolean}]\n    defaults: {b: true}\n")}},
			want:  "unknown field",
		},
		"invalid json": {
			files: fstest.MapFS{"a.json": {Data: []byte("{")}},
			want:  "parse a.json",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.LoadFS(tc.files)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_MergesOverEmbedded(t *testing.T) {
	fsys := fstest.MapFS{
		"styles.yaml": {Data: []byte(`
blocks:
  STYLES:
    fields:
      - name: enabled
        type: boolean
    defaults:
      enabled: true
`)},
	}

	cat, err := catalog.Load(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	block, _ := cat.Block("STYLES")
	if len(block.Fields) != 1 {
		t.Fatalf("expected STYLES to be replaced, got %d fields", len(block.Fields))
	}
	if _, ok := cat.Block("FEATURES_HTML"); !ok {
		t.Fatalf("embedded blocks must remain available")
	}
}

func TestLoadFS_Nil(t *testing.T) {
	cat, err := catalog.LoadFS(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cat.Empty() {
		t.Fatalf("expected empty catalog")
	}
}
