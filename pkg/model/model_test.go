package model_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blockform/pkg/model"
)

func featuresHTMLBlock() model.Block {
	return model.Block{
		ID:    "FEATURES_HTML",
		Label: "Features HTML",
		Fields: []model.Field{
			{Name: "enabled", Type: model.FieldTypeBoolean},
			{Name: "layout", Type: model.FieldTypeEnum, Options: []string{"CLASSIC", "COMPLEX_OBJECTS"}},
			{Name: "featureTitleTemplate", Type: model.FieldTypeString},
			{Name: "footerText", Type: model.FieldTypeString, Format: model.FormatHTML},
			{Name: "maximumPageSize", Type: model.FieldTypeNumber},
			{Name: "mapClients", Type: model.FieldTypeEnum, Multiple: true, Options: []string{"MAP_LIBRE", "OPEN_LAYERS", "CESIUM"}},
		},
	}
}

func TestBlockValidate(t *testing.T) {
	if err := featuresHTMLBlock().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	cases := map[string]model.Block{
		"missing id": {Fields: []model.Field{{Name: "a", Type: model.FieldTypeBoolean}}},
		"empty name": {ID: "B", Fields: []model.Field{{Type: model.FieldTypeBoolean}}},
		"duplicate": {ID: "B", Fields: []model.Field{
			{Name: "a", Type: model.FieldTypeBoolean},
			{Name: "a", Type: model.FieldTypeString},
		}},
		"unknown type":    {ID: "B", Fields: []model.Field{{Name: "a", Type: "date"}}},
		"enum no options": {ID: "B", Fields: []model.Field{{Name: "a", Type: model.FieldTypeEnum}}},
		"multiple string": {ID: "B", Fields: []model.Field{{Name: "a", Type: model.FieldTypeString, Multiple: true}}},
	}
	for name, block := range cases {
		t.Run(name, func(t *testing.T) {
			err := block.Validate()
			if !errors.Is(err, model.ErrInvalidBlock) {
				t.Fatalf("expected ErrInvalidBlock, got %v", err)
			}
		})
	}
}

func TestBlockNormalize(t *testing.T) {
	block := featuresHTMLBlock()

	tests := []struct {
		name  string
		field string
		value any
		want  any
		ok    bool
	}{
		{name: "bool", field: "enabled", value: true, want: true, ok: true},
		{name: "bool from string", field: "enabled", value: "true", ok: false},
		{name: "enum option", field: "layout", value: "CLASSIC", want: "CLASSIC", ok: true},
		{name: "enum unknown option", field: "layout", value: "GRID", ok: false},
		{name: "int as number", field: "maximumPageSize", value: 100, want: float64(100), ok: true},
		{name: "json number", field: "maximumPageSize", value: json.Number("2.5"), want: 2.5, ok: true},
		{name: "string as number", field: "maximumPageSize", value: "100", ok: false},
		{name: "selection any", field: "mapClients", value: []any{"MAP_LIBRE", "CESIUM"}, want: []string{"MAP_LIBRE", "CESIUM"}, ok: true},
		{name: "selection unknown", field: "mapClients", value: []string{"LEAFLET"}, ok: false},
		{name: "selection mixed", field: "mapClients", value: []any{"MAP_LIBRE", 1}, ok: false},
		{name: "unknown field", field: "missing", value: true, ok: false},
		{name: "nil", field: "enabled", value: nil, ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := block.Normalize(tc.field, tc.value)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !tc.ok {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldSet(t *testing.T) {
	fs, err := model.NewFieldSet(featuresHTMLBlock(), map[string]any{
		"enabled":         true,
		"layout":          nil,
		"maximumPageSize": 50,
	})
	if err != nil {
		t.Fatalf("new field set: %v", err)
	}

	want := map[string]any{"enabled": true, "maximumPageSize": float64(50)}
	if diff := cmp.Diff(want, fs.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	if err := fs.Set("layout", "COMPLEX_OBJECTS"); err != nil {
		t.Fatalf("set layout: %v", err)
	}
	if got, ok := fs.Get("layout"); !ok || got != "COMPLEX_OBJECTS" {
		t.Fatalf("unexpected layout %v (%v)", got, ok)
	}

	if err := fs.Set("enabled", "yes"); !errors.Is(err, model.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if err := fs.Set("styles", true); !errors.Is(err, model.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	if err := fs.Set("enabled", nil); err != nil {
		t.Fatalf("unset enabled: %v", err)
	}
	if _, ok := fs.Get("enabled"); ok {
		t.Fatalf("expected enabled to be unset")
	}

	values := fs.Values()
	values["layout"] = "CLASSIC"
	if got, _ := fs.Get("layout"); got != "COMPLEX_OBJECTS" {
		t.Fatalf("Values must return a copy, got %v", got)
	}
}

func TestNewFieldSetRejectsUnknownNames(t *testing.T) {
	_, err := model.NewFieldSet(featuresHTMLBlock(), map[string]any{"unknown": nil})
	if !errors.Is(err, model.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestFieldSetApply(t *testing.T) {
	fs, err := model.NewFieldSet(featuresHTMLBlock(), nil)
	if err != nil {
		t.Fatalf("new field set: %v", err)
	}
	err = fs.Apply(model.Change{"enabled": false, "mapClients": []string{"CESIUM"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := map[string]any{"enabled": false, "mapClients": []string{"CESIUM"}}
	if diff := cmp.Diff(want, fs.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestChangeNames(t *testing.T) {
	change := model.Change{"layout": "CLASSIC", "enabled": true}
	if diff := cmp.Diff([]string{"enabled", "layout"}, change.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"featuresHtml":      "Features HTML",
		"resources_enabled": "Resources Enabled",
		"apiCatalog":        "API Catalog",
		"layout":            "Layout",
		"mapClients2":       "Map Clients 2",
		"élan":              "Élan",
		"größeÜbersicht":    "Größe Übersicht",
		"":                  "",
	}
	for input, want := range cases {
		if got := model.DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitize(t *testing.T) {
	block := featuresHTMLBlock()
	footer, _ := block.Field("footerText")

	got, ok := footer.Sanitize(`<p>Hosted by <a href="https://example.com">us</a><script>alert(1)</script></p>`).(string)
	if !ok {
		t.Fatalf("expected string result")
	}
	if strings.Contains(got, "script") {
		t.Fatalf("expected script to be removed, got %q", got)
	}
	if !strings.Contains(got, "<p>") || !strings.Contains(got, "https://example.com") {
		t.Fatalf("expected safe markup to remain, got %q", got)
	}

	title, _ := block.Field("featureTitleTemplate")
	raw := "<b>{{name}}</b>"
	if got := title.Sanitize(raw); got != raw {
		t.Fatalf("plain string fields must not be sanitized, got %v", got)
	}
}
