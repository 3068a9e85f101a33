package config

import (
	"fmt"
	"reflect"
)

// DeepMerge returns a new mapping with override merged over base. Nested
// mappings merge key-wise and recursively; any other value in override,
// lists included, replaces the base value. Neither input is modified.
func DeepMerge(base, override map[string]any) map[string]any {
	out := cloneMap(base)
	for key, value := range override {
		overrideMap, overrideIsMap := asMap(value)
		baseMap, baseIsMap := asMap(out[key])
		if overrideIsMap && baseIsMap {
			out[key] = DeepMerge(baseMap, overrideMap)
			continue
		}
		out[key] = cloneValue(value)
	}
	return out
}

// Normalize converts every nested mapping with string-like keys into
// map[string]any so decoded files and caller literals share one shape.
func Normalize(in map[string]any) map[string]any {
	return cloneMap(in)
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	if m, ok := asMap(value); ok {
		return cloneMap(m)
	}
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	}
	return value
}

// asMap reports whether value is a mapping and returns it as
// map[string]any. Maps keyed by anything other than strings (yaml.v2 style
// map[any]any included) are converted with fmt.Sprint on the keys.
func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = item
		}
		return out, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out, true
}
