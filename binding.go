package nanotpl

import (
	"fmt"
	"reflect"
	"sort"
)

// Binding is the root variable binding a render call is evaluated against.
// The VM only ever reads from it (spec.md §5): a single Binding may safely
// back concurrent Render calls.
type Binding map[string]Value

// FromGo lifts a plain Go value (as produced by encoding/json,
// gopkg.in/yaml.v2, or hand-built map[string]any/[]any literals) into a
// Value tree. Supported inputs mirror Value's variant set: nil, bool,
// the integer and float kinds, string, []any/[]Value, and
// map[string]any/map[any]any/map[string]Value (map[any]any is accepted
// because gopkg.in/yaml.v2 decodes YAML mappings that way).
func FromGo(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null
	case Value:
		return x
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Int(int64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case []any:
		out := make([]Value, len(x))
		for i, el := range x {
			out[i] = FromGo(el)
		}
		return Array(out)
	case []Value:
		return Array(x)
	case map[string]any:
		return fromStringMap(x)
	case map[string]Value:
		keys := sortedKeys(x)
		return Object(keys, x)
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = val
		}
		return fromStringMap(m)
	default:
		return fromReflect(reflect.ValueOf(v))
	}
}

func fromStringMap(m map[string]any) Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = FromGo(v)
	}
	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Object(keys, out)
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// fromReflect is the fallback for structs and slices of concrete Go types
// that don't match one of the interface{}-based cases above (e.g. a
// []string or a tagged struct passed directly by the host application).
func fromReflect(rv reflect.Value) Value {
	if !rv.IsValid() {
		return Null
	}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null
		}
		return fromReflect(rv.Elem())
	case reflect.Slice, reflect.Array:
		out := make([]Value, rv.Len())
		for i := range out {
			out[i] = fromReflect(rv.Index(i))
		}
		return Array(out)
	case reflect.Map:
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		entries := make(map[string]Value, len(keys))
		for i, k := range keys {
			name := fmt.Sprint(k.Interface())
			names[i] = name
			entries[name] = fromReflect(rv.MapIndex(k))
		}
		sort.Strings(names)
		return Object(names, entries)
	case reflect.Struct:
		t := rv.Type()
		names := make([]string, 0, t.NumField())
		entries := make(map[string]Value, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			names = append(names, f.Name)
			entries[f.Name] = fromReflect(rv.Field(i))
		}
		return Object(names, entries)
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	default:
		return Null
	}
}
