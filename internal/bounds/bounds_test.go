package bounds

import (
	"testing"

	"github.com/schemakit-dev/schemakit/internal/schema"
)

const (
	minSafe = -9007199254740991
	maxSafe = 9007199254740991
)

func TestEnforceInjectsMissingBounds(t *testing.T) {
	doc := schema.Document{
		"type": "object",
		"properties": map[string]any{
			"count": map[string]any{"type": "integer"},
		},
	}
	out := Enforce(doc, minSafe, maxSafe)
	count := out["properties"].(map[string]any)["count"].(map[string]any)
	if count["minimum"] != int64(minSafe) || count["maximum"] != int64(maxSafe) {
		t.Fatalf("expected injected bounds, got %v", count)
	}
}

func TestEnforcePreservesExplicitZeroMinimum(t *testing.T) {
	doc := schema.Document{
		"type":    "integer",
		"minimum": 0,
	}
	out := Enforce(doc, minSafe, maxSafe)
	if out["minimum"] != 0 {
		t.Fatalf("explicit minimum 0 was overwritten: %v", out["minimum"])
	}
	if out["maximum"] != int64(maxSafe) {
		t.Fatalf("expected injected maximum, got %v", out["maximum"])
	}
}

func TestEnforceNeverNarrowsExistingBounds(t *testing.T) {
	doc := schema.Document{
		"type":    "number",
		"minimum": -5,
		"maximum": 10,
	}
	out := Enforce(doc, minSafe, maxSafe)
	if out["minimum"] != -5 || out["maximum"] != 10 {
		t.Fatalf("existing bounds were changed: %v", out)
	}
}

func TestEnforceReachesNestedBranches(t *testing.T) {
	doc := schema.Document{
		"type": "object",
		"properties": map[string]any{
			"list": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "number"},
			},
		},
		"additionalProperties": map[string]any{"type": "integer"},
		"oneOf": []any{
			map[string]any{"type": "integer"},
		},
	}
	out := Enforce(doc, minSafe, maxSafe)

	paths := []string{
		"properties.list.items.minimum",
		"additionalProperties.maximum",
		"oneOf.0.minimum",
	}
	for _, path := range paths {
		if _, ok := out.Lookup(path); !ok {
			t.Fatalf("expected bound at %s, got %v", path, out)
		}
	}
}

func TestEnforceSkipsNonNumericNodes(t *testing.T) {
	doc := schema.Document{"type": "string"}
	out := Enforce(doc, minSafe, maxSafe)
	if _, ok := out["minimum"]; ok {
		t.Fatal("string node gained a minimum")
	}
}

func TestEnforceIsPure(t *testing.T) {
	doc := schema.Document{"type": "integer"}
	Enforce(doc, minSafe, maxSafe)
	if _, ok := doc["minimum"]; ok {
		t.Fatal("input document was mutated")
	}
}
