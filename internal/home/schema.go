package home

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// structureSchema is the contract every structure document must satisfy
// before any of it is applied. Violations reject the document wholesale.
const structureSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["rooms"],
	"properties": {
		"home_id": {"type": "integer"},
		"name": {"type": "string"},
		"rooms": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "devices"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"devices": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["name"],
							"properties": {
								"name": {"type": "string", "minLength": 1},
								"model": {"type": "string"},
								"id": {"type": "string", "pattern": "^[0-9a-fA-F]{12}$"},
								"ip": {"type": "string"}
							},
							"additionalProperties": false
						}
					}
				},
				"additionalProperties": false
			}
		}
	},
	"additionalProperties": false
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// validateDocument checks raw document bytes against the embedded schema.
func validateDocument(raw []byte) error {
	compileOnce.Do(func() {
		var schemaDoc any
		if err := json.Unmarshal([]byte(structureSchema), &schemaDoc); err != nil {
			compileErr = fmt.Errorf("unmarshalling embedded schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("structure.json", schemaDoc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("structure.json")
	})
	if compileErr != nil {
		return fmt.Errorf("compiling structure schema: %w", compileErr)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStructure, err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStructure, err)
	}
	return nil
}
