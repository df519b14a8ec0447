// Package schema holds the schema document model: parsing, deterministic
// serialization, deep comparison, and version extraction.
package schema

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Content types supported for schema artifacts.
const (
	ContentTypeYAML = "yaml"
	ContentTypeJSON = "json"
)

// Document is a parsed JSON Schema: an arbitrarily nested string-keyed tree.
type Document map[string]any

// SerializationError reports an unsupported content type.
type SerializationError struct {
	ContentType string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("unknown content type %q (supported: yaml, json)", e.ContentType)
}

// Parse decodes data in the given content type into a Document.
// YAML decoding may produce map[any]any for nested mappings; those are
// normalized to string-keyed maps so JSON and YAML parses compare equal.
func Parse(data []byte, contentType string) (Document, error) {
	switch contentType {
	case ContentTypeYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
		doc, ok := normalizeValue(raw).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schema root is not a mapping")
		}
		return Document(doc), nil
	case ContentTypeJSON:
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
		return Document(doc), nil
	default:
		return nil, &SerializationError{ContentType: contentType}
	}
}

// ParseFile reads and parses path, inferring the content type from the
// file extension. Extensionless paths (symlinks) are parsed as YAML.
func ParseFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ct := ContentTypeFromPath(path)
	doc, err := Parse(data, ct)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ContentTypeFromPath maps a file extension to a content type, defaulting
// to YAML for unknown or missing extensions.
func ContentTypeFromPath(path string) string {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case "json":
		return ContentTypeJSON
	case "yml", "yaml":
		return ContentTypeYAML
	}
	return ContentTypeYAML
}

// ID returns the document's $id, or "" when absent.
func (d Document) ID() string {
	id, _ := d["$id"].(string)
	return id
}

// Copy returns a deep copy of the document. Transformations never mutate
// their input; they copy first.
func (d Document) Copy() Document {
	return Document(copyValue(map[string]any(d)).(map[string]any))
}

// Equal reports deep equality with another document. Numeric leaves are
// compared by value, so an int decoded from YAML equals the float64 the
// JSON parser produced for the same artifact.
func (d Document) Equal(other Document) bool {
	return equalValue(map[string]any(d), map[string]any(other))
}

// Lookup reads a dotted path such as "meta.version" or "examples.0.$schema".
// Numeric segments index into lists.
func (d Document) Lookup(path string) (any, bool) {
	var cur any = map[string]any(d)
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// StringAt returns the string value at a dotted path, or "" when the path
// is missing or not a string.
func (d Document) StringAt(path string) string {
	v, ok := d.Lookup(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = copyValue(vv)
		}
		return out
	case Document:
		return copyValue(map[string]any(t))
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = copyValue(t[i])
		}
		return arr
	default:
		return v
	}
}

func equalValue(a, b any) bool {
	if am, ok := a.(Document); ok {
		a = map[string]any(am)
	}
	if bm, ok := b.(Document); ok {
		b = map[string]any(bm)
	}
	switch at := a.(type) {
	case map[string]any:
		bt, ok := b.(map[string]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, av := range at {
			bv, ok := bt[k]
			if !ok || !equalValue(av, bv) {
				return false
			}
		}
		return true
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !equalValue(at[i], bt[i]) {
				return false
			}
		}
		return true
	}
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// NumericValue renders a float as an int64 when it is whole, keeping
// injected bounds like 9007199254740991 integral in serialized output.
func NumericValue(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
		return int64(f)
	}
	return f
}
