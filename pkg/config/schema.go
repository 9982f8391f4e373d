package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// configSchema describes the JSON form of Config. It rejects unknown top
// level keys and out-of-range engine settings before unmarshaling, so a
// typo in a JSON config surfaces as a schema error rather than a silently
// ignored setting.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "engine": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "language": {"type": "string", "enum": ["generic", "unknown", "clike", "c", "cpp", "c++"]},
        "shingle_size": {"type": "integer", "minimum": 1},
        "similarity_threshold": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
        "min_tokens": {"type": "integer", "minimum": 0},
        "workers": {"type": "integer", "minimum": 0}
      }
    },
    "exclude": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "patterns": {"type": "array", "items": {"type": "string"}},
        "extensions": {"type": "array", "items": {"type": "string"}},
        "dirs": {"type": "array", "items": {"type": "string"}}
      }
    },
    "output": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "format": {"type": "string", "enum": ["text", "json", "markdown", "toon"]},
        "color": {"type": "boolean"}
      }
    }
  }
}`

// validateJSONFile checks a JSON config file against the embedded schema.
func validateJSONFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(configSchema))
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("loupe-config.json", schemaDoc); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	schema, err := compiler.Compile("loupe-config.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
