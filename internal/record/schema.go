package record

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// datasetSchemaURL identifies the compiled dataset schema.
const datasetSchemaURL = "schema://dataset.json"

// DatasetSchema is the JSON Schema for a serialized dataset: an array of
// records in the shape written by WriteFile.
var DatasetSchema = map[string]any{
	"type":  "array",
	"items": recordSchema,
}

var recordSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":         map[string]any{"type": "string", "minLength": 1},
		"created_at": map[string]any{"type": "string"},
		"domain":     map[string]any{"type": "string"},
		"input":      map[string]any{"type": "string"},
		"response":   map[string]any{"type": "string"},
		"metadata": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"template_id":   map[string]any{"type": "integer"},
				"quality_score": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"augmented":     map[string]any{"type": "boolean"},
				"parameters": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "string"},
				},
				"validation": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"is_valid": map[string]any{"type": "boolean"},
						"issues": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required": []any{"is_valid", "issues"},
				},
				"entities": map[string]any{
					"type": "object",
					"additionalProperties": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
			},
		},
		"trace": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"parent_id": map[string]any{"type": []any{"string", "null"}},
				"processing_steps": map[string]any{
					"type": []any{"array", "null"},
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name":      map[string]any{"type": "string", "minLength": 1},
							"timestamp": map[string]any{"type": "string"},
							"params":    map[string]any{"type": []any{"object", "null"}},
						},
						"required": []any{"name", "timestamp"},
					},
				},
			},
		},
	},
	"required": []any{"id", "created_at", "domain", "input", "response"},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// ValidateShape checks raw dataset JSON against DatasetSchema.
func ValidateShape(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrInvalidRecord, err)
	}

	schema, err := datasetSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("%w: schema validation failed: %v", ErrInvalidRecord, err)
	}
	return nil
}

// datasetSchema compiles DatasetSchema once and caches the result.
func datasetSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a plain decoded JSON value, so round-trip the map.
		defBytes, err := json.Marshal(DatasetSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(datasetSchemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(datasetSchemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile: %w", compileErr)
		}
	})
	return compiled, compileErr
}
