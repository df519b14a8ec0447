// Package validator wraps the external JSON Schema validation capability:
// structural validity, security hardening, and instance validation.
package validator

import (
	"bytes"
	"fmt"
	"regexp/syntax"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/schemakit-dev/schemakit/internal/schema"
)

// Result is one capability verdict with human-readable findings.
type Result struct {
	Valid  bool
	Errors []string
}

func failure(format string, args ...any) Result {
	return Result{Errors: []string{fmt.Sprintf(format, args...)}}
}

// IsValid reports whether the document compiles as a JSON Schema.
// The $schema and $id members are stripped before compiling: repository
// schemas carry repo-local values the compiler would try to fetch or
// reject as non-absolute URIs.
func IsValid(doc schema.Document) Result {
	if _, err := compile(doc); err != nil {
		return failure("schema does not compile: %v", err)
	}
	return Result{Valid: true}
}

// IsSecure runs the hardening checks: every pattern and patternProperties
// regex must compile, and none may contain nested unbounded repetition
// (the classic catastrophic-backtracking shape).
func IsSecure(doc schema.Document) Result {
	var errs []string
	walkPatterns(map[string]any(doc), "", func(path, pattern string) {
		re, err := syntax.Parse(pattern, syntax.Perl)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: pattern %q does not compile: %v", path, pattern, err))
			return
		}
		if hasNestedRepeat(re, false) {
			errs = append(errs, fmt.Sprintf("%s: pattern %q has unbounded nested repetition", path, pattern))
		}
	})
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidateInstance validates one instance value against the schema.
func ValidateInstance(doc schema.Document, instance any) Result {
	compiled, err := compile(doc)
	if err != nil {
		return failure("schema does not compile: %v", err)
	}
	if err := compiled.Validate(normalizeInstance(instance)); err != nil {
		return failure("%v", err)
	}
	return Result{Valid: true}
}

func compile(doc schema.Document) (*jsonschema.Schema, error) {
	stripped := doc.Copy()
	delete(stripped, "$schema")
	delete(stripped, "$id")
	data, err := json.Marshal(map[string]any(stripped))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	const url = "schema.json"
	if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

// normalizeInstance round-trips the value through JSON so YAML-decoded
// integers validate the way the compiler expects.
func normalizeInstance(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func walkPatterns(v any, path string, visit func(path, pattern string)) {
	switch node := v.(type) {
	case map[string]any:
		if p, ok := node["pattern"].(string); ok {
			visit(path+"/pattern", p)
		}
		if props, ok := node["patternProperties"].(map[string]any); ok {
			for p := range props {
				visit(path+"/patternProperties", p)
			}
		}
		for k, vv := range node {
			walkPatterns(vv, path+"/"+k, visit)
		}
	case []any:
		for i, vv := range node {
			walkPatterns(vv, fmt.Sprintf("%s/%d", path, i), visit)
		}
	}
}

// hasNestedRepeat reports a star/plus nested inside another star/plus,
// e.g. (a+)+ or (.*)*.
func hasNestedRepeat(re *syntax.Regexp, inRepeat bool) bool {
	repeat := re.Op == syntax.OpStar || re.Op == syntax.OpPlus ||
		(re.Op == syntax.OpRepeat && re.Max < 0)
	if repeat && inRepeat {
		return true
	}
	for _, sub := range re.Sub {
		if hasNestedRepeat(sub, inRepeat || repeat) {
			return true
		}
	}
	return false
}
