package rules

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchema validates the external payload shape before variant
// dispatch, so a payload missing required fields is rejected as malformed
// instead of decoding into a half-empty struct.
const payloadSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "oneOf": [
    {
      "type": "object",
      "properties": {
        "type": {"const": "token_detector"},
        "role": {"type": "string", "minLength": 1},
        "method": {"enum": ["regex", "length"]},
        "pattern": {"type": "string"},
        "min_length": {"type": "integer", "minimum": 1}
      },
      "required": ["type", "role", "method"],
      "allOf": [
        {
          "if": {"properties": {"method": {"const": "regex"}}},
          "then": {"required": ["pattern"]}
        },
        {
          "if": {"properties": {"method": {"const": "length"}}},
          "then": {"required": ["min_length"]}
        }
      ]
    },
    {
      "type": "object",
      "properties": {
        "type": {"const": "pairing"},
        "name_role": {"type": "string", "minLength": 1},
        "number_role": {"type": "string", "minLength": 1},
        "relation": {"enum": ["below", "above", "left", "right"]},
        "max_distance_px": {"type": "number", "exclusiveMinimum": 0}
      },
      "required": ["type", "name_role", "number_role"]
    }
  ]
}`

var compiledSchema = jsonschema.MustCompileString("payload.schema.json", payloadSchema)

func validateAgainstSchema(raw json.RawMessage) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return err
	}
	return nil
}
