package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-blockform/pkg/model"
)

func TestMustLoadDefaults(t *testing.T) {
	got := MustLoadDefaults(t, filepath.Join("testdata", "global.yaml"))
	want := model.Defaults{"enabled": true, "layout": "CLASSIC", "maximumPageSize": 10000}
	if diff := CompareValues(want, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	api := MustLoadValues(t, filepath.Join("testdata", "api.json"))
	if diff := CompareValues(map[string]any{"layout": "COMPLEX_OBJECTS", "mapClients": []any{"MAP_LIBRE"}}, api); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadValues_Missing(t *testing.T) {
	if _, err := LoadValues(filepath.Join("testdata", "absent.yaml")); err == nil {
		t.Fatalf("expected missing fixture to fail")
	}
}

func TestMustParseBlock(t *testing.T) {
	entry := MustParseBlock(t, "TILES", `
fields:
  - name: maxZoom
    type: number
defaults:
  maxZoom: 18
`)
	if entry.Block.Label != "Tiles" || len(entry.Block.Fields) != 1 {
		t.Fatalf("unexpected block %+v", entry.Block)
	}
	if diff := CompareValues(model.Defaults{"maxZoom": float64(18)}, entry.Defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestAssertGolden_Update(t *testing.T) {
	t.Setenv("UPDATE_GOLDENS", "1")
	path := filepath.Join(t.TempDir(), "nested", "out.golden")
	AssertGolden(t, path, []byte("ID  LABEL\n"))

	t.Setenv("UPDATE_GOLDENS", "")
	AssertGolden(t, path, []byte("ID  LABEL\n"))
}
