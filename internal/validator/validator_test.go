package validator

import (
	"strings"
	"testing"

	"github.com/schemakit-dev/schemakit/internal/schema"
)

func TestIsValid(t *testing.T) {
	good := schema.Document{
		"$id":  "/basic/1.0.0",
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
	}
	if result := IsValid(good); !result.Valid {
		t.Fatalf("expected valid schema, got %v", result.Errors)
	}

	bad := schema.Document{"type": 12}
	if result := IsValid(bad); result.Valid {
		t.Fatal("expected invalid schema for numeric type value")
	}
}

func TestIsSecure(t *testing.T) {
	safe := schema.Document{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "pattern": "^[a-z]+$"},
		},
	}
	if result := IsSecure(safe); !result.Valid {
		t.Fatalf("expected secure schema, got %v", result.Errors)
	}

	nested := schema.Document{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "pattern": "(a+)+b"},
		},
	}
	result := IsSecure(nested)
	if result.Valid {
		t.Fatal("expected nested unbounded repetition to fail")
	}
	if !strings.Contains(result.Errors[0], "nested repetition") {
		t.Fatalf("unexpected message: %v", result.Errors)
	}

	broken := schema.Document{"pattern": "(unclosed"}
	if result := IsSecure(broken); result.Valid {
		t.Fatal("expected uncompilable pattern to fail")
	}
}

func TestValidateInstance(t *testing.T) {
	doc := schema.Document{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
		"required": []any{"name"},
	}

	if result := ValidateInstance(doc, map[string]any{"name": "ok"}); !result.Valid {
		t.Fatalf("expected instance to validate, got %v", result.Errors)
	}
	if result := ValidateInstance(doc, map[string]any{}); result.Valid {
		t.Fatal("expected missing required property to fail")
	}
	if result := ValidateInstance(doc, map[string]any{"name": 7}); result.Valid {
		t.Fatal("expected type mismatch to fail")
	}
}
