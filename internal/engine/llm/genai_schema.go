package llm

import (
	"fmt"

	"google.golang.org/genai"
)

var genaiTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"integer": genai.TypeInteger,
	"number":  genai.TypeNumber,
	"boolean": genai.TypeBoolean,
}

// genaiSchema converts a generation-schema document into the SDK's typed
// schema, preserving property ordering. The document is already free of
// closed-world keywords the API rejects.
func genaiSchema(doc map[string]any) (*genai.Schema, error) {
	s := &genai.Schema{}
	if t, ok := doc["type"].(string); ok {
		kind, known := genaiTypes[t]
		if !known {
			return nil, fmt.Errorf("unsupported schema type %q", t)
		}
		s.Type = kind
	}
	if d, ok := doc["description"].(string); ok {
		s.Description = d
	}
	if enum, ok := doc["enum"]; ok {
		s.Enum = stringList(enum)
	}
	if def, ok := doc["default"]; ok {
		s.Default = def
	}
	if req, ok := doc["required"]; ok {
		s.Required = stringList(req)
	}
	if ordering, ok := doc["propertyOrdering"]; ok {
		s.PropertyOrdering = stringList(ordering)
	}
	if items, ok := doc["items"].(map[string]any); ok {
		child, err := genaiSchema(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		s.Items = child
	}
	if props, ok := doc["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			childDoc, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("property %q is not a schema object", name)
			}
			child, err := genaiSchema(childDoc)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			s.Properties[name] = child
		}
	}
	return s, nil
}

// stringList accepts the two encodings a schema document may carry for a
// list of strings.
func stringList(v any) []string {
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...)
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, fmt.Sprint(e))
		}
		return out
	}
	return nil
}
