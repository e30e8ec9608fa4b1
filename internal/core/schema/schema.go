// Package schema validates extracted page payloads before they are stored.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
	"github.com/joseph-ayodele/pricelist-tracker/internal/core/pricelist"
)

// Payload is the stored shape of one extracted page.
type Payload struct {
	Layout string               `json:"layout"`
	Items  []pricelist.LineItem `json:"items"`
}

// PagePayload builds the payload of an extracted page.
func PagePayload(p pricelist.Page) Payload {
	items := p.Items
	if items == nil {
		items = []pricelist.LineItem{}
	}
	return Payload{Layout: p.Layout.String(), Items: items}
}

// PageSchema returns the JSON schema of a page payload.
func PageSchema() map[string]any {
	return map[string]any{
		"$schema":  "https://json-schema.org/draft/2020-12/schema",
		"type":     "object",
		"required": []string{"layout", "items"},
		"properties": map[string]any{
			"layout": map[string]any{
				"type": "string",
				"enum": []string{
					pricelist.VerticalList.String(),
					pricelist.CodedTable.String(),
					pricelist.GenericTable.String(),
					pricelist.InvoiceTable.String(),
				},
			},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"name", "price", "unit", "quantity", "display_format"},
					"properties": map[string]any{
						"name":           map[string]any{"type": "string", "minLength": 2},
						"price":          map[string]any{"type": "number", "minimum": 0},
						"unit":           map[string]any{"type": "string", "enum": constants.UnitsAsStringSlice()},
						"quantity":       map[string]any{"type": "number", "exclusiveMinimum": 0},
						"display_format": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

var (
	pageOnce   sync.Once
	pageSchema *jsonschema.Schema
	pageErr    error
)

func compiled() (*jsonschema.Schema, error) {
	pageOnce.Do(func() {
		pageSchema, pageErr = Compile(PageSchema())
	})
	return pageSchema, pageErr
}

// Compile compiles a schema given as a Go map.
func Compile(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidatePage checks an extracted page against PageSchema.
func ValidatePage(p pricelist.Page) error {
	data, err := json.Marshal(PagePayload(p))
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}
	return ValidateJSON(data)
}

// ValidateJSON checks a serialized page payload against PageSchema.
func ValidateJSON(data []byte) error {
	schema, err := compiled()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return common.NewAppError("VALIDATION_ERROR", "unmarshal page payload", errors.Join(common.ErrValidation, err))
	}
	if err := schema.Validate(v); err != nil {
		return common.NewAppError("VALIDATION_ERROR", "page payload does not match schema", errors.Join(common.ErrValidation, err))
	}
	return nil
}
