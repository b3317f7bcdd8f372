package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildResultJSONSchema returns the JSON-Schema of an exported result list
// as a generic map.
func BuildResultJSONSchema() map[string]any {
	lineItem := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"item":       map[string]any{"type": "string", "minLength": 1},
			"unit":       map[string]any{"type": "string"},
			"quantity":   amountProp(),
			"unitValue":  amountProp(),
			"totalValue": amountProp(),
			"pisCofins":  amountProp(),
			"icmsBase":   amountProp(),
			"icmsRate":   amountProp(),
			"icms":       amountProp(),
			"unitTariff": amountProp(),
		},
		"required": []string{"item", "unit", "quantity", "unitValue", "totalValue"},
	}

	result := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"fileName":       map[string]any{"type": "string", "minLength": 1},
			"installationId": map[string]any{"type": "string", "pattern": `^(\d{8,12})?$`},
			"billingPeriod":  map[string]any{"type": "string"},
			"lineItems":      map[string]any{"type": "array", "items": lineItem},
			"error":          map[string]any{"type": "string"},
		},
		"required": []string{"fileName", "installationId", "billingPeriod", "lineItems", "error"},
	}

	return map[string]any{
		"type":  "array",
		"items": result,
	}
}

func amountProp() map[string]any {
	return map[string]any{"type": []string{"number", "null"}}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
