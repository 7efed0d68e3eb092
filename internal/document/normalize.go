package document

import (
	"fmt"

	bsonprim "go.mongodb.org/mongo-driver/bson/primitive"
)

// normalize walks a value just decoded by a third-party codec and
// rewrites it into the canonical tree shape every other function in this
// package assumes: map[string]any, []any, and JSON/Go scalars. Codecs
// that decode generic maps as map[any]any (go-msgpack) or carry their own
// document/array wrapper types (mongo-driver's primitive.M/primitive.A)
// are flattened into that shape here, once, at the decode boundary.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprintf("%v", k)] = normalize(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalize(vv)
		}
		return out
	case bsonprim.ObjectID:
		return t.Hex()
	case bsonprim.DateTime:
		return t.Time()
	case bsonprim.M:
		return normalize(map[string]any(t))
	case bsonprim.A:
		return normalize([]any(t))
	case []byte:
		return t
	default:
		return v
	}
}
