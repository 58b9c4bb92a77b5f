package jsonutil

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Safe returns v rebuilt from JSON-native values only: nil, bool, string,
// numbers, []any and map[string]any. Structured values (SDK response
// objects, typed results, errors) are unwrapped through their JSON form;
// anything that cannot be represented falls back to its string form.
// Applying Safe to its own output is a no-op, so diagnostic bundles can
// be folded in at any layer without double-encoding.
func Safe(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return x
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Safe(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Safe(e)
		}
		return out
	case json.RawMessage:
		var out any
		if err := json.Unmarshal(x, &out); err != nil {
			return string(x)
		}
		return Safe(out)
	case error:
		return x.Error()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		// Non-nil pointers take the marshal path below so
		// pointer-receiver marshalers are honored.
	case reflect.Slice, reflect.Array:
		// []byte stays on the marshal path, which base64-encodes it.
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			out := make([]any, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				out[i] = Safe(rv.Index(i).Interface())
			}
			return out
		}
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Safe(iter.Value().Interface())
		}
		return out
	}

	if b, err := json.Marshal(v); err == nil {
		var out any
		if json.Unmarshal(b, &out) == nil {
			return out
		}
	}
	return fmt.Sprintf("%v", v)
}
