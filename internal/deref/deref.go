// Package deref expands $ref pointers and flattens allOf compositions.
package deref

import (
	"fmt"

	"github.com/schemakit-dev/schemakit/internal/fileutil"
	"github.com/schemakit-dev/schemakit/internal/resolver"
	"github.com/schemakit-dev/schemakit/internal/schema"
)

// Error wraps a resolution or merge failure, tagged with the $id of the
// schema being dereferenced.
type Error struct {
	ID  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to dereference schema %q: %v", e.ID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Dereferencer struct {
	res *resolver.Resolver
}

func New(res *resolver.Resolver) *Dereferencer {
	return &Dereferencer{res: res}
}

// Dereference returns a new document with every $ref (transitively)
// replaced by its resolved content and every allOf merged away. The input
// is never mutated.
func (d *Dereferencer) Dereference(doc schema.Document) (schema.Document, error) {
	expanded, err := d.expand(map[string]any(doc.Copy()), map[string]bool{})
	if err != nil {
		return nil, &Error{ID: doc.ID(), Err: err}
	}
	merged := mergeAllOf(expanded)
	root, ok := merged.(map[string]any)
	if !ok {
		return nil, &Error{ID: doc.ID(), Err: fmt.Errorf("dereferenced root is not a mapping")}
	}
	return schema.Document(root), nil
}

// expand walks the tree replacing $ref nodes with their resolved content,
// then descends into that content so transitive refs expand too. active
// holds the refs on the current expansion path; a ref re-entering it means
// a circular chain, which fails instead of recursing forever. The same ref
// may still appear on disjoint branches.
func (d *Dereferencer) expand(v any, active map[string]bool) (any, error) {
	switch node := v.(type) {
	case map[string]any:
		if ref, ok := node["$ref"].(string); ok {
			if active[ref] {
				return nil, fmt.Errorf("circular $ref chain at %q", ref)
			}
			resolved, err := d.res.Resolve(ref)
			if err != nil {
				return nil, err
			}
			active[ref] = true
			expanded, err := d.expand(map[string]any(resolved.Copy()), active)
			delete(active, ref)
			return expanded, err
		}
		for k, vv := range node {
			expanded, err := d.expand(vv, active)
			if err != nil {
				return nil, err
			}
			node[k] = expanded
		}
		return node, nil
	case []any:
		for i := range node {
			expanded, err := d.expand(node[i], active)
			if err != nil {
				return nil, err
			}
			node[i] = expanded
		}
		return node, nil
	default:
		return v, nil
	}
}

// mergeAllOf flattens allOf bottom-up. Sub-schemas merge into the parent
// sequentially in array order, so on a property-name conflict the last
// listed sub-schema wins. required lists concatenate with
// first-occurrence dedupe. Any other key keeps its first value, so the
// parent's $id and title survive and additionalProperties conflicts are
// ignored rather than raised.
func mergeAllOf(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, vv := range node {
			node[k] = mergeAllOf(vv)
		}
		subs, ok := node["allOf"].([]any)
		if !ok {
			return node
		}
		delete(node, "allOf")
		for _, sub := range subs {
			subMap, ok := sub.(map[string]any)
			if !ok {
				continue
			}
			mergeInto(node, subMap)
		}
		return node
	case []any:
		for i := range node {
			node[i] = mergeAllOf(node[i])
		}
		return node
	default:
		return v
	}
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		switch k {
		case "properties":
			srcProps, ok := v.(map[string]any)
			if !ok {
				dst[k] = v
				continue
			}
			dstProps, ok := dst["properties"].(map[string]any)
			if !ok {
				dstProps = make(map[string]any, len(srcProps))
				dst["properties"] = dstProps
			}
			for name, prop := range srcProps {
				dstProps[name] = prop
			}
		case "required":
			srcReq := stringList(v)
			dstReq := stringList(dst["required"])
			merged := fileutil.DedupeStrings(append(dstReq, srcReq...))
			req := make([]any, len(merged))
			for i, name := range merged {
				req[i] = name
			}
			dst["required"] = req
		default:
			if _, exists := dst[k]; !exists {
				dst[k] = v
			}
		}
	}
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
