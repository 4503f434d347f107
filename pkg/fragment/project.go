package fragment

import (
	"encoding/json"
	"strings"

	"github.com/buger/jsonparser"
)

// Path is a key path into an object, outermost key first. Array elements are
// addressed as "[i]".
type Path []string

// ParsePath splits a dotted path such as "pod.labels.app".
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

// String returns the dotted form of p.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Project decodes b like Decode and, when it is a complete object, returns a
// new object holding only the requested paths, keyed by their dotted form.
// Paths that do not exist are left out. Values are read from the raw bytes, so
// for a key repeated in the same object Project returns the first value where
// Decode keeps the last.
func Project(b []byte, paths []Path) (Object, bool) {
	if _, ok := Decode(b); !ok {
		return nil, false
	}

	out := make(Object, len(paths))
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		v, dataType, _, err := jsonparser.Get(b, p...)
		if err != nil {
			continue
		}
		if val, ok := value(v, dataType); ok {
			out[p.String()] = val
		}
	}
	return out, true
}

func value(v []byte, dataType jsonparser.ValueType) (interface{}, bool) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(v)
		if err != nil {
			return nil, false
		}
		return s, true
	case jsonparser.Number:
		return json.Number(string(v)), true
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(v)
		if err != nil {
			return nil, false
		}
		return b, true
	case jsonparser.Null:
		return nil, true
	case jsonparser.Object:
		obj, ok := Decode(v)
		if !ok {
			return nil, false
		}
		return map[string]interface{}(obj), true
	case jsonparser.Array:
		var arr []interface{}
		if err := api.Unmarshal(v, &arr); err != nil {
			return nil, false
		}
		return arr, true
	default:
		return nil, false
	}
}
