package shape

import (
	"maps"
	"slices"
)

// Provider-specific schema adjustments for structured output.

// TransformForOpenAI adapts a schema map for OpenAI's strict structured
// output mode, which requires:
//   - type "object" at root level
//   - every property listed in required
//   - additionalProperties false on every object
//
// Properties that were optional become nullable, so a model may still omit
// them by emitting null. A non-object root is wrapped in a "response"
// property.
func TransformForOpenAI(schema map[string]any) map[string]any {
	return TransformForOpenAIWithOptions(schema, OpenAITransformOptions{
		WrapperPropertyName: "response",
	})
}

// OpenAITransformOptions configures the OpenAI schema transformation.
type OpenAITransformOptions struct {
	// WrapperPropertyName is the property used to wrap a non-object root.
	// Default is "response".
	WrapperPropertyName string
}

// TransformForOpenAIWithOptions adapts a schema map with custom options.
// The input map is not modified.
func TransformForOpenAIWithOptions(schema map[string]any, opts OpenAITransformOptions) map[string]any {
	if opts.WrapperPropertyName == "" {
		opts.WrapperPropertyName = "response"
	}

	out := deepCopyMap(schema)
	ensureAllPropertiesRequired(out)

	if out["type"] == "object" {
		return out
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			opts.WrapperPropertyName: out,
		},
		"required":             []any{opts.WrapperPropertyName},
		"additionalProperties": false,
	}
}

// ensureAllPropertiesRequired recursively lists every object property as
// required, making previously optional ones nullable.
func ensureAllPropertiesRequired(node any) {
	v, ok := node.(map[string]any)
	if !ok {
		return
	}

	if v["type"] == "object" {
		props, _ := v["properties"].(map[string]any)
		required := make(map[string]bool)
		if list, ok := v["required"].([]any); ok {
			for _, name := range list {
				if s, ok := name.(string); ok {
					required[s] = true
				}
			}
		}

		names := slices.Sorted(maps.Keys(props))
		all := make([]any, len(names))
		for i, name := range names {
			all[i] = name
			if !required[name] {
				makeNullable(props[name])
			}
			ensureAllPropertiesRequired(props[name])
		}
		v["required"] = all
		v["additionalProperties"] = false
	}

	if v["type"] == "array" {
		ensureAllPropertiesRequired(v["items"])
	}
}

func makeNullable(node any) {
	v, ok := node.(map[string]any)
	if !ok {
		return
	}
	if t, ok := v["type"].(string); ok {
		v["type"] = []any{t, "null"}
	}
	if enum, ok := v["enum"].([]any); ok {
		v["enum"] = append(enum, nil)
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
