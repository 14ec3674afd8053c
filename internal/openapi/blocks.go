// Package openapi derives building-block declarations from the component
// schemas of an OpenAPI 3 document, so a server that documents its
// configuration in OpenAPI can feed forms without a separate catalog file.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-blockform/pkg/model"
)

// Result is the block derived from one component schema.
type Result struct {
	Block    model.Block
	Defaults model.Defaults
	// Skipped lists properties whose schema has no field type equivalent
	// (objects, arrays of non-enum items, ...).
	Skipped []string
}

// Extract loads the document and converts the named component schema. The
// block ID defaults to the component name.
func Extract(ctx context.Context, data []byte, component, blockID string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return Result{}, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return Result{}, errors.New("openapi: document declares no component schemas")
	}

	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return Result{}, fmt.Errorf("openapi: component schema %q not found", component)
	}

	if strings.TrimSpace(blockID) == "" {
		blockID = component
	}
	return convertBlock(blockID, ref.Value)
}

func convertBlock(id string, schema *openapi3.Schema) (Result, error) {
	result := Result{
		Block: model.Block{
			ID:          id,
			Label:       strings.TrimSpace(schema.Title),
			Description: strings.TrimSpace(schema.Description),
		},
		Defaults: model.Defaults{},
	}
	if result.Block.Label == "" {
		result.Block.Label = model.DefaultLabeler(id)
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		field, ok := convertField(name, ref.Value)
		if !ok {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		result.Block.Fields = append(result.Block.Fields, field)

		// defaults that do not fit the field are dropped, not fatal
		if ref.Value.Default != nil {
			if normalized, ok := field.Normalize(ref.Value.Default); ok {
				result.Defaults[name] = normalized
			}
		}
	}

	if err := result.Block.Validate(); err != nil {
		return Result{}, fmt.Errorf("openapi: component %q: %w", id, err)
	}
	return result, nil
}

func convertField(name string, schema *openapi3.Schema) (model.Field, bool) {
	field := model.Field{
		Name:        name,
		Label:       strings.TrimSpace(schema.Title),
		Description: strings.TrimSpace(schema.Description),
		Format:      schema.Format,
	}
	if field.Label == "" {
		field.Label = model.DefaultLabeler(name)
	}

	switch firstSchemaType(schema.Type) {
	case "boolean":
		field.Type = model.FieldTypeBoolean
	case "integer", "number":
		field.Type = model.FieldTypeNumber
	case "string":
		if options := stringOptions(schema.Enum); len(options) > 0 {
			field.Type = model.FieldTypeEnum
			field.Options = options
			field.Format = ""
		} else {
			field.Type = model.FieldTypeString
		}
	case "array":
		if schema.Items == nil || schema.Items.Value == nil {
			return model.Field{}, false
		}
		options := stringOptions(schema.Items.Value.Enum)
		if len(options) == 0 {
			return model.Field{}, false
		}
		field.Type = model.FieldTypeEnum
		field.Options = options
		field.Multiple = true
		field.Format = ""
	default:
		return model.Field{}, false
	}
	return field, true
}

func stringOptions(values []any) []string {
	var out []string
	for _, value := range values {
		option, ok := value.(string)
		if !ok {
			return nil
		}
		out = append(out, option)
	}
	return out
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
