package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ValidationError reports one schema violation, located by a field path
// such as "issues[0].severity". Path is empty when the root value itself
// is malformed. Distinguishable by type from "no payload at all", which
// adapters report separately.
type ValidationError struct {
	Path string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "schema violation: " + e.Msg
	}
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Msg)
}

// Decode strictly decodes data into the target shape. Any field outside
// the declared set, any type or enum violation, and any missing required
// field fails with a *ValidationError naming the offending path. On
// success the returned payload is normalized (defaults applied) and
// validated, and re-encoding it yields an equivalent document.
func (t Target) Decode(data []byte) (Payload, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Msg: "payload is not valid JSON: " + err.Error()}
	}
	if err := t.doc.check("", raw); err != nil {
		return nil, err
	}

	out := t.alloc()
	if err := json.Unmarshal(data, out); err != nil {
		// The walk above admits only values the struct accepts.
		return nil, &ValidationError{Msg: "decoding checked payload: " + err.Error()}
	}
	out.normalize()
	if err := out.Validate(); err != nil {
		return nil, asValidationError(err)
	}
	return out, nil
}

func asValidationError(err error) *ValidationError {
	if ve, ok := err.(*ValidationError); ok {
		return ve
	}
	return &ValidationError{Msg: err.Error()}
}

// check walks a decoded generic value against the descriptor node,
// reporting the first violation with its path.
func (d *Doc) check(path string, v any) *ValidationError {
	switch d.Type {
	case "object":
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(path, "object", v)
		}
		for key := range obj {
			if _, declared := d.Properties[key]; !declared {
				return &ValidationError{Path: joinPath(path, key), Msg: "field is not declared in the schema"}
			}
		}
		required := make(map[string]bool, len(d.Required))
		for _, name := range d.Required {
			required[name] = true
		}
		for _, name := range d.Ordering {
			value, present := obj[name]
			if !present || value == nil {
				// Explicit null counts as absent for optional fields,
				// matching the strict decoder's treatment downstream.
				if required[name] {
					return &ValidationError{Path: joinPath(path, name), Msg: "required field missing"}
				}
				continue
			}
			if err := d.Properties[name].check(joinPath(path, name), value); err != nil {
				return err
			}
		}
	case "array":
		items, ok := v.([]any)
		if !ok {
			return mismatch(path, "array", v)
		}
		if d.Items != nil {
			for i, item := range items {
				if err := d.Items.check(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
					return err
				}
			}
		}
	case "string":
		s, ok := v.(string)
		if !ok {
			return mismatch(path, "string", v)
		}
		if len(d.Enum) > 0 {
			for _, allowed := range d.Enum {
				if s == allowed {
					return nil
				}
			}
			return &ValidationError{
				Path: path,
				Msg:  fmt.Sprintf("value %q not in enum [%s]", s, strings.Join(d.Enum, " ")),
			}
		}
	case "integer":
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return mismatch(path, "integer", v)
		}
	case "number":
		if _, ok := v.(float64); !ok {
			return mismatch(path, "number", v)
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return mismatch(path, "boolean", v)
		}
	}
	return nil
}

func mismatch(path, want string, got any) *ValidationError {
	return &ValidationError{Path: path, Msg: fmt.Sprintf("want %s, got %T", want, got)}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
