package schema

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// keyPriority fixes the YAML key ordering for serialized schemas. Listed
// keys come first in this order; everything else follows alphabetically.
var keyPriority = []string{
	"title",
	"description",
	"$id",
	"$schema",
	"type",
	"format",
	"additionalProperties",
	"required",
	"enum",
	"items",
	"properties",
	"oneOf",
	"allOf",
	"examples",
	"minimum",
	"maximum",
}

var keyRank = func() map[string]int {
	m := make(map[string]int, len(keyPriority))
	for i, k := range keyPriority {
		m[k] = i
	}
	return m
}()

// Serialize encodes a document deterministically: YAML with the fixed
// key-priority ordering, JSON with 2-space indentation. The same document
// always yields the same bytes.
func Serialize(doc Document, contentType string) ([]byte, error) {
	switch contentType {
	case ContentTypeYAML:
		node, err := buildYAMLNode(map[string]any(doc))
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ContentTypeJSON:
		data, err := json.MarshalIndent(map[string]any(doc), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, &SerializationError{ContentType: contentType}
	}
}

// buildYAMLNode produces a yaml.Node tree with mapping keys emitted in
// priority order, so encoding is byte-stable across runs.
func buildYAMLNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case Document:
		return buildYAMLNode(map[string]any(t))
	case map[string]any:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range orderedKeys(t) {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
			valNode, err := buildYAMLNode(t[key])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, keyNode, valNode)
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			child, err := buildYAMLNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode yaml scalar %v: %w", v, err)
		}
		return node, nil
	}
}

func orderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := keyRank[keys[i]]
		rj, jok := keyRank[keys[j]]
		if iok && jok {
			return ri < rj
		}
		if iok != jok {
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}
