package shape

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// JSONSchema renders s as a JSON Schema. Nested shapes are inlined; object
// properties keep their declared order and forbid additional properties.
func (s *Shape) JSONSchema() *jsonschema.Schema {
	var out *jsonschema.Schema

	switch s.kind {
	case KindString:
		out = &jsonschema.Schema{Type: "string"}
	case KindNumber:
		out = &jsonschema.Schema{Type: "number"}
	case KindInteger:
		out = &jsonschema.Schema{Type: "integer"}
	case KindBoolean:
		out = &jsonschema.Schema{Type: "boolean"}
	case KindEnum:
		enum := make([]any, len(s.enum))
		for i, v := range s.enum {
			enum[i] = v
		}
		out = &jsonschema.Schema{Type: "string", Enum: enum}
	case KindList:
		out = &jsonschema.Schema{Type: "array", Items: s.elem.JSONSchema()}
	case KindObject:
		out = &jsonschema.Schema{
			Type:                 "object",
			Properties:           jsonschema.NewProperties(),
			AdditionalProperties: jsonschema.FalseSchema,
		}
		for _, f := range s.fields {
			prop := f.Shape.JSONSchema()
			if f.Instruction != "" {
				prop.Description = f.Instruction
			}
			out.Properties.Set(f.Name, prop)
			if !f.Optional {
				out.Required = append(out.Required, f.Name)
			}
		}
	}

	if s.description != "" {
		out.Description = s.description
	}
	return out
}

// SchemaMap renders s as a generic JSON Schema map, the form provider SDKs
// accept as a response schema.
func (s *Shape) SchemaMap() (map[string]any, error) {
	data, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return schemaMap, nil
}
