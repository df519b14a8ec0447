package schema

import (
	"strings"
	"testing"
)

func TestSerializeYAMLKeyOrder(t *testing.T) {
	doc := Document{
		"zebra":      "last",
		"type":       "object",
		"title":      "basic",
		"$id":        "/basic/1.0.0",
		"properties": map[string]any{"a": map[string]any{"type": "string"}},
		"alpha":      "after listed keys",
	}
	data, err := Serialize(doc, ContentTypeYAML)
	if err != nil {
		t.Fatalf("failed to serialize: %v", err)
	}

	got := string(data)
	order := []string{"title:", "$id:", "type:", "properties:", "alpha:", "zebra:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(got, key)
		if idx < 0 {
			t.Fatalf("key %q missing from output:\n%s", key, got)
		}
		if idx < last {
			t.Fatalf("key %q out of order in output:\n%s", key, got)
		}
		last = idx
	}
}

func TestSerializeYAMLDeterministic(t *testing.T) {
	doc := Document{
		"title":      "basic",
		"properties": map[string]any{"b": map[string]any{"type": "string"}, "a": map[string]any{"type": "string"}},
	}
	first, err := Serialize(doc, ContentTypeYAML)
	if err != nil {
		t.Fatalf("failed to serialize: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Serialize(doc, ContentTypeYAML)
		if err != nil {
			t.Fatalf("failed to serialize: %v", err)
		}
		if string(first) != string(again) {
			t.Fatalf("serialization is not deterministic:\n%s\nvs\n%s", first, again)
		}
	}
}

func TestSerializeJSONIndent(t *testing.T) {
	doc := Document{"title": "basic", "type": "object"}
	data, err := Serialize(doc, ContentTypeJSON)
	if err != nil {
		t.Fatalf("failed to serialize: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"title\": \"basic\"") {
		t.Fatalf("expected 2-space indentation, got:\n%s", data)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	doc := Document{
		"title": "basic",
		"type":  "object",
		"properties": map[string]any{
			"count": map[string]any{"type": "integer", "minimum": 0},
			"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"count"},
	}
	for _, ct := range []string{ContentTypeYAML, ContentTypeJSON} {
		data, err := Serialize(doc, ct)
		if err != nil {
			t.Fatalf("failed to serialize %s: %v", ct, err)
		}
		parsed, err := Parse(data, ct)
		if err != nil {
			t.Fatalf("failed to re-parse %s: %v", ct, err)
		}
		if !doc.Equal(parsed) {
			t.Fatalf("%s round trip lost information:\n%v\nvs\n%v", ct, doc, parsed)
		}
	}
}

func TestSerializeUnknownContentType(t *testing.T) {
	if _, err := Serialize(Document{}, "xml"); err == nil {
		t.Fatal("expected serialization error for xml")
	}
}
