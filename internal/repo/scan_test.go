package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/schemakit-dev/schemakit/internal/config"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}

func schemaYAML(title, id string) string {
	return fmt.Sprintf("title: %s\n$id: %s\ntype: object\nproperties:\n  f:\n    type: string\n", title, id)
}

func newScanner(t *testing.T, opts config.Options) *Scanner {
	t.Helper()
	s, err := NewScanner(opts)
	if err != nil {
		t.Fatalf("failed to build scanner: %v", err)
	}
	return s
}

func TestFindAllSchemasInfoClassification(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "basic/current.yaml", schemaYAML("basic", "/basic/1.1.0"))
	writeFile(t, root, "basic/1.0.0.yaml", schemaYAML("basic", "/basic/1.0.0"))
	writeFile(t, root, "basic/1.1.0.yaml", schemaYAML("basic", "/basic/1.1.0"))
	writeFile(t, root, "basic/notes.yaml", schemaYAML("basic", "/basic/9.9.9"))
	writeFile(t, root, "basic/README.md", "not a schema\n")

	infos, err := newScanner(t, config.Default()).FindAllSchemasInfo(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 schemas, got %d: %+v", len(infos), infos)
	}

	currents := CurrentSources(infos)
	if len(currents) != 1 {
		t.Fatalf("expected 1 current source, got %d", len(currents))
	}
	if currents[0].Version.String() != "1.1.0" {
		t.Fatalf("expected current version from $id, got %s", currents[0].Version)
	}
	if currents[0].ContentType != "yaml" || currents[0].Title != "basic" {
		t.Fatalf("unexpected current info: %+v", currents[0])
	}
}

func TestFindAllSchemasInfoIgnorePattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "basic/1.0.0.yaml", schemaYAML("basic", "/basic/1.0.0"))
	writeFile(t, root, "vendor_thing/1.0.0.yaml", schemaYAML("vendor_thing", "/vendor/thing/1.0.0"))

	opts := config.Default()
	opts.IgnoreSchemas = []string{"^/vendor/"}
	infos, err := newScanner(t, opts).FindAllSchemasInfo(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 1 || infos[0].Title != "basic" {
		t.Fatalf("expected vendor schema to be ignored, got %+v", infos)
	}
}

func TestScanOrderingHeuristic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "deep/nested/thing/current.yaml", schemaYAML("thing", "/thing/1.0.0"))
	writeFile(t, root, "deep/nested/thing/1.0.0.yaml", schemaYAML("thing", "/thing/1.0.0"))
	writeFile(t, root, "common/current.yaml", schemaYAML("common", "/common/2.0.0"))
	writeFile(t, root, "common/2.0.0.yaml", schemaYAML("common", "/common/2.0.0"))

	infos, err := newScanner(t, config.Default()).FindAllSchemasInfo(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 4 {
		t.Fatalf("expected 4 schemas, got %d", len(infos))
	}

	// Marker titles sort first regardless of version or depth.
	if infos[0].Title != "common" || infos[1].Title != "common" {
		t.Fatalf("expected common schemas first, got %+v", infos)
	}
	// Current sources sort after the materialized artifact of the same version.
	if infos[0].Current || !infos[1].Current {
		t.Fatalf("expected materialized before current, got %+v %+v", infos[0], infos[1])
	}
	if infos[2].Current || !infos[3].Current {
		t.Fatalf("expected materialized before current for thing, got %+v %+v", infos[2], infos[3])
	}
}

func TestScanVersionOrdering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "basic/1.10.0.yaml", schemaYAML("basic", "/basic/1.10.0"))
	writeFile(t, root, "basic/1.2.0.yaml", schemaYAML("basic", "/basic/1.2.0"))
	writeFile(t, root, "basic/1.9.1.yaml", schemaYAML("basic", "/basic/1.9.1"))

	infos, err := newScanner(t, config.Default()).FindAllSchemasInfo(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{infos[0].Version.String(), infos[1].Version.String(), infos[2].Version.String()}
	want := []string{"1.2.0", "1.9.1", "1.10.0"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected semantic version order %v, got %v", want, got)
		}
	}
}

func TestGroupByTitleAndMajor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "basic/1.0.0.yaml", schemaYAML("basic", "/basic/1.0.0"))
	writeFile(t, root, "basic/1.1.0.yaml", schemaYAML("basic", "/basic/1.1.0"))
	writeFile(t, root, "basic/2.0.0.yaml", schemaYAML("basic", "/basic/2.0.0"))
	writeFile(t, root, "other/1.0.0.yaml", schemaYAML("other", "/other/1.0.0"))

	groups, err := newScanner(t, config.Default()).FindSchemasByTitleAndMajor(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(groups))
	}
	if len(groups["basic"][1]) != 2 || len(groups["basic"][2]) != 1 {
		t.Fatalf("unexpected major grouping: %+v", groups["basic"])
	}
	if len(groups["other"][1]) != 1 {
		t.Fatalf("unexpected grouping for other: %+v", groups["other"])
	}
}
