package schema

import (
	"testing"
)

func TestParseYAMLAndJSONAgree(t *testing.T) {
	yamlDoc, err := Parse([]byte("title: basic\ncount: 3\nnested:\n  flag: true\nitems:\n  - a\n  - b\n"), ContentTypeYAML)
	if err != nil {
		t.Fatalf("failed to parse yaml: %v", err)
	}
	jsonDoc, err := Parse([]byte(`{"title":"basic","count":3,"nested":{"flag":true},"items":["a","b"]}`), ContentTypeJSON)
	if err != nil {
		t.Fatalf("failed to parse json: %v", err)
	}
	if !yamlDoc.Equal(jsonDoc) {
		t.Fatalf("yaml and json parses differ: %v vs %v", yamlDoc, jsonDoc)
	}
}

func TestParseRejectsNonMappingRoot(t *testing.T) {
	if _, err := Parse([]byte("- a\n- b\n"), ContentTypeYAML); err == nil {
		t.Fatal("expected error for sequence root")
	}
}

func TestParseUnknownContentType(t *testing.T) {
	_, err := Parse([]byte("{}"), "toml")
	if err == nil {
		t.Fatal("expected serialization error")
	}
	if _, ok := err.(*SerializationError); !ok {
		t.Fatalf("expected *SerializationError, got %T", err)
	}
}

func TestCopyIsDeep(t *testing.T) {
	doc := Document{"properties": map[string]any{"a": map[string]any{"type": "string"}}}
	dup := doc.Copy()
	dup["properties"].(map[string]any)["a"].(map[string]any)["type"] = "integer"
	if doc["properties"].(map[string]any)["a"].(map[string]any)["type"] != "string" {
		t.Fatal("copy shares nested state with the original")
	}
}

func TestLookup(t *testing.T) {
	doc := Document{
		"$id": "/basic/1.2.0",
		"meta": map[string]any{
			"owners": []any{"alpha", "beta"},
		},
	}
	if v, ok := doc.Lookup("$id"); !ok || v != "/basic/1.2.0" {
		t.Fatalf("expected $id lookup to succeed, got %v %v", v, ok)
	}
	if v, ok := doc.Lookup("meta.owners.1"); !ok || v != "beta" {
		t.Fatalf("expected indexed lookup to return beta, got %v %v", v, ok)
	}
	if _, ok := doc.Lookup("meta.missing"); ok {
		t.Fatal("expected missing path to fail")
	}
	if _, ok := doc.Lookup("meta.owners.7"); ok {
		t.Fatal("expected out-of-range index to fail")
	}
}

func TestEqualComparesNumbersByValue(t *testing.T) {
	a := Document{"minimum": int(0), "maximum": float64(10)}
	b := Document{"minimum": float64(0), "maximum": int64(10)}
	if !a.Equal(b) {
		t.Fatal("expected numeric values to compare equal across types")
	}
	c := Document{"minimum": int(1), "maximum": float64(10)}
	if a.Equal(c) {
		t.Fatal("expected differing numbers to compare unequal")
	}
}
