// Package fragment decodes text fragments that are expected to hold a JSON
// object but may be truncated or malformed, such as a partially received
// record. Decoding never fails loudly: a fragment is either a complete object
// or it is absent.
package fragment

import (
	jsoniter "github.com/json-iterator/go"
)

// Object is a decoded JSON object. Nested values are nil, bool, json.Number,
// string, []interface{} or map[string]interface{}.
type Object map[string]interface{}

// api is frozen and therefore safe for concurrent use. Numbers are kept as
// json.Number so integers survive without float rounding. UseNumber copies
// number text without checking it, so input goes through api.Valid first.
var api = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Decode returns the object held by b and true, or nil and false when b is not
// exactly one complete JSON object. Whitespace around the object is allowed.
// Decode never panics and does not retain b.
func Decode(b []byte) (obj Object, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			obj, ok = nil, false
		}
	}()

	if !startsObject(b) || hasNUL(b) || !api.Valid(b) {
		return nil, false
	}
	if err := api.Unmarshal(b, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// DecodeString is Decode for string input.
func DecodeString(s string) (obj Object, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			obj, ok = nil, false
		}
	}()

	if !startsObject(s) || hasNUL(s) || !api.Valid([]byte(s)) {
		return nil, false
	}
	if err := api.UnmarshalFromString(s, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// startsObject reports whether the first non-whitespace byte opens an object.
// Arrays, scalars and null are valid JSON but never a decoded Object.
func startsObject[T ~string | ~[]byte](b T) bool {
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// hasNUL reports whether b holds a 0 byte. The iterator reads one as the end
// of input, and JSON allows it neither between tokens nor unescaped in a
// string.
func hasNUL[T ~string | ~[]byte](b T) bool {
	for i := 0; i < len(b); i++ {
		if b[i] == 0 {
			return true
		}
	}
	return false
}
