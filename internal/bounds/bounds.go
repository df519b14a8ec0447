// Package bounds injects minimum/maximum onto numeric schema nodes.
package bounds

import (
	"github.com/schemakit-dev/schemakit/internal/schema"
)

// Enforce returns a new tree in which every node typed number or integer
// carries minimum and maximum. A bound is injected only when the key is
// absent: an explicit minimum of 0 is preserved, not overwritten.
// Existing bounds are never widened or narrowed.
func Enforce(doc schema.Document, min, max float64) schema.Document {
	out := enforceValue(map[string]any(doc.Copy()), min, max)
	return schema.Document(out.(map[string]any))
}

func enforceValue(v any, min, max float64) any {
	switch node := v.(type) {
	case map[string]any:
		if t, ok := node["type"].(string); ok && (t == "number" || t == "integer") {
			if _, present := node["minimum"]; !present {
				node["minimum"] = schema.NumericValue(min)
			}
			if _, present := node["maximum"]; !present {
				node["maximum"] = schema.NumericValue(max)
			}
		}
		for k, vv := range node {
			node[k] = enforceValue(vv, min, max)
		}
		return node
	case []any:
		for i := range node {
			node[i] = enforceValue(node[i], min, max)
		}
		return node
	default:
		return v
	}
}
