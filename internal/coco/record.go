package coco

import "encoding/json"

// Record exposes optional fields of one raw prediction without assuming a
// fixed structure.
type Record interface {
	// Get returns the field value. A missing key and an explicit JSON null
	// both report absent.
	Get(field string) (any, bool)
	// Has reports whether the key exists, even when its value is null.
	Has(field string) bool
}

type objectRecord map[string]any

func (r objectRecord) Get(field string) (any, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r objectRecord) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// AsRecord wraps a decoded JSON object. Any other value reports false.
func AsRecord(v any) (Record, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return objectRecord(obj), true
}

// jsonKind names the JSON type of a decoded value for diagnostics.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64, int32:
		return "number"
	default:
		return "unknown"
	}
}
