package check

import (
	"fmt"
	"sort"

	"github.com/schemakit-dev/schemakit/internal/repo"
	"github.com/schemakit-dev/schemakit/internal/schema"
)

// compatAllowList names fields that may freely change between versions.
var compatAllowList = map[string]bool{
	"$id":         true,
	"description": true,
	"examples":    true,
}

// Compatibility checks each consecutive pair of materialized versions
// within a title+major group, primary content type only: the newer schema
// must be backward-compatible with the older one.
func (c *Checker) Compatibility(infos []repo.Info) []Result {
	var results []Result
	groups := repo.GroupByTitleAndMajor(infos)
	for _, title := range sortedTitles(groups) {
		majors := groups[title]
		majorKeys := make([]uint64, 0, len(majors))
		for major := range majors {
			majorKeys = append(majorKeys, major)
		}
		sort.Slice(majorKeys, func(i, j int) bool { return majorKeys[i] < majorKeys[j] })
		for _, major := range majorKeys {
			results = c.compatGroup(results, title, majors[major])
		}
	}
	return results
}

func (c *Checker) compatGroup(results []Result, title string, group []repo.Info) []Result {
	versions := make([]repo.Info, 0, len(group))
	for _, info := range group {
		if !info.Current && info.ContentType == c.opts.PrimaryContentType() {
			versions = append(versions, info)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Version.LessThan(versions[j].Version)
	})

	for i := 1; i < len(versions); i++ {
		old, newer := versions[i-1], versions[i]
		base := Result{
			Title:   title,
			Path:    newer.Path,
			Version: fmt.Sprintf("%s -> %s", old.Version, newer.Version),
		}
		violations := compatible(map[string]any(old.Schema), map[string]any(newer.Schema), "")
		results = c.record(results, RuleBackwardCompatible, newer.Schema.ID(), base, violations)
	}
	return results
}

// compatible recursively verifies that everything the old schema declares
// survives unchanged in the new one, modulo the allow-list, the
// required set-equality rule, and the enum superset rule.
func compatible(oldNode, newNode map[string]any, path string) []string {
	var violations []string
	keys := make([]string, 0, len(oldNode))
	for k := range oldNode {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if compatAllowList[key] {
			continue
		}
		keyPath := path + "/" + key
		newVal, ok := newNode[key]
		if !ok {
			violations = append(violations, fmt.Sprintf("%s: removed", keyPath))
			continue
		}
		switch key {
		case "required":
			violations = append(violations, compatRequired(oldNode[key], newVal, keyPath)...)
		case "enum":
			violations = append(violations, compatEnum(oldNode[key], newVal, keyPath)...)
		default:
			violations = append(violations, compatValue(oldNode[key], newVal, keyPath)...)
		}
	}
	return violations
}

func compatValue(oldVal, newVal any, path string) []string {
	switch oldTyped := oldVal.(type) {
	case map[string]any:
		newMap, ok := newVal.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("%s: object became %T", path, newVal)}
		}
		return compatible(oldTyped, newMap, path)
	case []any:
		newList, ok := newVal.([]any)
		if !ok {
			return []string{fmt.Sprintf("%s: array became %T", path, newVal)}
		}
		if len(newList) < len(oldTyped) {
			return []string{fmt.Sprintf("%s: array shrank from %d to %d entries",
				path, len(oldTyped), len(newList))}
		}
		var violations []string
		for i := range oldTyped {
			violations = append(violations,
				compatValue(oldTyped[i], newList[i], fmt.Sprintf("%s/%d", path, i))...)
		}
		return violations
	default:
		if !scalarEqual(oldVal, newVal) {
			return []string{fmt.Sprintf("%s: expected %v, got %v", path, oldVal, newVal)}
		}
		return nil
	}
}

// compatRequired enforces exact set equality: adding or removing required
// properties both break compatibility.
func compatRequired(oldVal, newVal any, path string) []string {
	oldSet, newSet := stringSet(oldVal), stringSet(newVal)
	var violations []string
	for name := range oldSet {
		if !newSet[name] {
			violations = append(violations, fmt.Sprintf("%s: %q no longer required", path, name))
		}
	}
	for name := range newSet {
		if !oldSet[name] {
			violations = append(violations, fmt.Sprintf("%s: %q newly required", path, name))
		}
	}
	sort.Strings(violations)
	return violations
}

// compatEnum enforces the superset law: old values may never be removed,
// new values may be added, order is irrelevant.
func compatEnum(oldVal, newVal any, path string) []string {
	oldList, _ := oldVal.([]any)
	newList, ok := newVal.([]any)
	if !ok {
		return []string{fmt.Sprintf("%s: enum removed", path)}
	}
	var violations []string
	for _, want := range oldList {
		found := false
		for _, got := range newList {
			if scalarEqual(want, got) {
				found = true
				break
			}
		}
		if !found {
			violations = append(violations, fmt.Sprintf("%s: value %v removed", path, want))
		}
	}
	return violations
}

func scalarEqual(a, b any) bool {
	return schema.Document{"v": a}.Equal(schema.Document{"v": b})
}
