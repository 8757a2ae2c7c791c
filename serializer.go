package nanotpl

import (
	"strconv"

	jsonx "github.com/go-json-experiment/json"
)

// Serializer converts a Value to its rendered string form. It must be a
// pure function of its input (spec.md §9): the VM calls it once per
// RENDER instruction and appends the result to the output buffer verbatim.
type Serializer func(Value) (string, error)

// DefaultSerializer renders JSON for Array/Object values and a canonical
// scalar form otherwise (spec.md §6, §9 Open Question 3): lowercase
// true/false, Go's default int/float formatting, "" for Null. Arrays and
// objects are encoded with github.com/go-json-experiment/json rather than
// the standard library's encoding/json.
func DefaultSerializer(v Value) (string, error) {
	switch v.Kind {
	case KindNull, KindUndefined:
		return "", nil
	case KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	case KindInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10), nil
	case KindFloat:
		f, _ := v.AsFloat()
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case KindString:
		s, _ := v.AsString()
		return s, nil
	case KindArray, KindObject:
		goVal := toGoInterface(v)
		b, err := jsonx.Marshal(goVal)
		if err != nil {
			return "", wrapInternal(err, "serializing value to JSON")
		}
		return string(b), nil
	default:
		return "", nil
	}
}

// toGoInterface converts a Value into plain Go data (map/slice/scalar)
// suitable for JSON marshaling.
func toGoInterface(v Value) any {
	switch v.Kind {
	case KindNull, KindUndefined:
		return nil
	case KindBool:
		b, _ := v.AsBool()
		return b
	case KindInt:
		i, _ := v.AsInt()
		return i
	case KindFloat:
		f, _ := v.AsFloat()
		return f
	case KindString:
		s, _ := v.AsString()
		return s
	case KindArray:
		arr, _ := v.AsArray()
		out := make([]any, len(arr))
		for i, el := range arr {
			out[i] = toGoInterface(el)
		}
		return out
	case KindObject:
		keys, obj, _ := v.AsObject()
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			out[k] = toGoInterface(obj[k])
		}
		return out
	default:
		return nil
	}
}
