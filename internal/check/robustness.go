package check

import (
	"fmt"
	"regexp"

	"github.com/schemakit-dev/schemakit/internal/repo"
	"github.com/schemakit-dev/schemakit/internal/schema"
	"github.com/schemakit-dev/schemakit/internal/validator"
)

var snakeCase = regexp.MustCompile(`^[$a-z][a-z0-9_]*$`)

// Robustness validates every materialized schema document in isolation:
// structural validity and security (delegated to the validator
// capability), naming, deterministic typing, and example conformance.
func (c *Checker) Robustness(infos []repo.Info) []Result {
	var results []Result
	for _, info := range infos {
		if info.Current {
			continue
		}
		results = c.robustnessOne(results, info)
	}
	return results
}

func (c *Checker) robustnessOne(results []Result, info repo.Info) []Result {
	id := info.Schema.ID()
	base := Result{Title: info.Title, Path: info.Path, Version: info.Version.String()}
	root := map[string]any(info.Schema)

	results = c.record(results, RuleValidSchema, id, base,
		validator.IsValid(info.Schema).Errors)
	results = c.record(results, RuleSecureSchema, id, base,
		validator.IsSecure(info.Schema).Errors)

	checks := []struct {
		rule  string
		visit func(path string, node map[string]any) []string
	}{
		{RuleSnakeCase, checkSnakeCase},
		{RuleDeterministicTypes, checkDeterministicType},
		{RuleArrayItems, checkArrayItems},
		{RuleObjectShape, checkObjectShape},
		{RuleAdditionalProperties, checkAdditionalProperties},
		{RuleOneOfConsistency, checkOneOf},
		{RuleRequiredDeclared, checkRequiredDeclared},
	}
	for _, chk := range checks {
		var violations []string
		walkSchema(root, "", func(path string, node map[string]any) {
			violations = append(violations, chk.visit(path, node)...)
		})
		results = c.record(results, chk.rule, id, base, violations)
	}

	if c.opts.BoundsEnabled() {
		min, max := c.opts.EnforcedNumericBounds[0], c.opts.EnforcedNumericBounds[1]
		var violations []string
		walkSchema(root, "", func(path string, node map[string]any) {
			violations = append(violations, checkNumericBounds(path, node, min, max)...)
		})
		results = c.record(results, RuleNumericBounds, id, base, violations)
	}

	results = c.record(results, RuleExamples, id, base, c.checkExamples(info.Schema))
	return results
}

// walkSchema visits every schema node: the root plus everything reachable
// through properties, items, additionalProperties, oneOf, and allOf.
func walkSchema(node map[string]any, path string, visit func(path string, node map[string]any)) {
	visit(path, node)
	if props, ok := node["properties"].(map[string]any); ok {
		for name, sub := range props {
			if subMap, ok := sub.(map[string]any); ok {
				walkSchema(subMap, path+"/properties/"+name, visit)
			}
		}
	}
	if items, ok := node["items"].(map[string]any); ok {
		walkSchema(items, path+"/items", visit)
	}
	if ap, ok := node["additionalProperties"].(map[string]any); ok {
		walkSchema(ap, path+"/additionalProperties", visit)
	}
	for _, key := range []string{"oneOf", "allOf"} {
		if branches, ok := node[key].([]any); ok {
			for i, branch := range branches {
				if branchMap, ok := branch.(map[string]any); ok {
					walkSchema(branchMap, fmt.Sprintf("%s/%s/%d", path, key, i), visit)
				}
			}
		}
	}
}

func checkSnakeCase(path string, node map[string]any) []string {
	props, ok := node["properties"].(map[string]any)
	if !ok {
		return nil
	}
	var violations []string
	for name := range props {
		if !snakeCase.MatchString(name) {
			violations = append(violations,
				fmt.Sprintf("%s/properties/%s: property name is not snake_case", path, name))
		}
	}
	return violations
}

func checkDeterministicType(path string, node map[string]any) []string {
	if _, ok := node["type"].([]any); ok {
		return []string{fmt.Sprintf("%s/type: union types are not allowed", path)}
	}
	return nil
}

func checkArrayItems(path string, node map[string]any) []string {
	if t, _ := node["type"].(string); t != "array" {
		return nil
	}
	items, ok := node["items"].(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("%s: array must declare items", path)}
	}
	if _, ok := items["type"]; !ok {
		return []string{fmt.Sprintf("%s/items: array items must declare a type", path)}
	}
	return nil
}

func checkObjectShape(path string, node map[string]any) []string {
	if t, _ := node["type"].(string); t != "object" {
		return nil
	}
	for _, key := range []string{"properties", "oneOf", "allOf", "additionalProperties"} {
		if _, ok := node[key]; ok {
			return nil
		}
	}
	return []string{fmt.Sprintf(
		"%s: object must declare properties, oneOf, allOf, or additionalProperties", path)}
}

func checkAdditionalProperties(path string, node map[string]any) []string {
	ap, ok := node["additionalProperties"].(map[string]any)
	if !ok {
		return nil
	}
	if _, union := ap["type"].([]any); union {
		return []string{fmt.Sprintf("%s/additionalProperties/type: union types are not allowed", path)}
	}
	if _, ok := ap["type"].(string); !ok {
		return []string{fmt.Sprintf("%s/additionalProperties: must declare a deterministic type", path)}
	}
	return nil
}

func checkOneOf(path string, node map[string]any) []string {
	branches, ok := node["oneOf"].([]any)
	if !ok || len(branches) == 0 {
		return nil
	}
	var violations []string
	firstType := ""
	var firstRequired map[string]bool
	for i, branch := range branches {
		branchMap, ok := branch.(map[string]any)
		if !ok {
			continue
		}
		t, _ := branchMap["type"].(string)
		if i == 0 {
			firstType = t
			firstRequired = stringSet(branchMap["required"])
			continue
		}
		if t != firstType {
			violations = append(violations, fmt.Sprintf(
				"%s/oneOf/%d: type %q differs from first branch type %q", path, i, t, firstType))
			continue
		}
		if t == "object" && !setsEqual(firstRequired, stringSet(branchMap["required"])) {
			violations = append(violations, fmt.Sprintf(
				"%s/oneOf/%d: required set differs from first branch", path, i))
		}
	}
	return violations
}

func checkRequiredDeclared(path string, node map[string]any) []string {
	required, ok := node["required"].([]any)
	if !ok {
		return nil
	}
	props, _ := node["properties"].(map[string]any)
	var violations []string
	for _, name := range required {
		s, ok := name.(string)
		if !ok {
			continue
		}
		if _, declared := props[s]; !declared {
			violations = append(violations, fmt.Sprintf(
				"%s/required: %q is not declared in properties", path, s))
		}
	}
	return violations
}

func checkNumericBounds(path string, node map[string]any, min, max float64) []string {
	t, _ := node["type"].(string)
	if t != "number" && t != "integer" {
		return nil
	}
	var violations []string
	lo, hasMin := numberAt(node, "minimum")
	hi, hasMax := numberAt(node, "maximum")
	if !hasMin {
		violations = append(violations, fmt.Sprintf("%s: missing minimum", path))
	} else if lo < min {
		violations = append(violations, fmt.Sprintf("%s/minimum: %v is below enforced %v", path, lo, min))
	}
	if !hasMax {
		violations = append(violations, fmt.Sprintf("%s: missing maximum", path))
	} else if hi > max {
		violations = append(violations, fmt.Sprintf("%s/maximum: %v is above enforced %v", path, hi, max))
	}
	return violations
}

func (c *Checker) checkExamples(doc schema.Document) []string {
	examples, ok := doc["examples"].([]any)
	if !ok {
		return nil
	}
	var violations []string
	for i, example := range examples {
		result := validator.ValidateInstance(doc, example)
		if !result.Valid {
			violations = append(violations, fmt.Sprintf(
				"/examples/%d: does not validate: %s", i, joinViolations(result.Errors)))
		}
		exampleMap, ok := example.(map[string]any)
		if !ok {
			continue
		}
		if exampleSchema, _ := exampleMap["$schema"].(string); exampleSchema != doc.ID() {
			violations = append(violations, fmt.Sprintf(
				"/examples/%d/$schema: %q does not match schema $id %q", i, exampleSchema, doc.ID()))
		}
	}
	return violations
}

func numberAt(node map[string]any, key string) (float64, bool) {
	switch v := node[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func stringSet(v any) map[string]bool {
	items, _ := v.([]any)
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			set[s] = true
		}
	}
	return set
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
