package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for syncgate.yml. Extension
// sections (such as logging) are permitted as additional properties.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Unknown nested keys are rejected; the top level stays open for extensions.
		AllowAdditionalProperties: false,
		// Expand struct references instead of using $ref for a flat schema.
		ExpandedStruct: true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
		// Every field is optional; defaults fill the gaps.
		RequiredFromJSONSchemaTags: true,
	}

	schema := r.Reflect(&Config{})
	schema.Title = "syncgate configuration"
	schema.Description = "Settings for the syncgate authentication bootstrap and handoff shim."
	schema.Version = "http://json-schema.org/draft-07/schema#"
	schema.AdditionalProperties = jsonschema.TrueSchema

	return json.MarshalIndent(schema, "", "  ")
}
