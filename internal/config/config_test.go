package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaults(t *testing.T) {
	opts := Default()
	if opts.CurrentName != "current.yaml" {
		t.Fatalf("expected default current name, got %q", opts.CurrentName)
	}
	if opts.SchemaVersionField != "$id" || opts.SchemaTitleField != "title" {
		t.Fatalf("unexpected default fields: %q %q", opts.SchemaVersionField, opts.SchemaTitleField)
	}
	if !opts.ShouldDereference || !opts.ShouldSymlinkExtensionless || !opts.ShouldSymlinkLatest {
		t.Fatal("expected transform and symlink behavior on by default")
	}
	if opts.BoundsEnabled() {
		t.Fatal("expected bounds enforcement off by default")
	}
	if opts.PrimaryContentType() != "yaml" {
		t.Fatalf("expected yaml primary, got %q", opts.PrimaryContentType())
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	opts, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(opts.SchemaBaseURIs, []string{dir}) {
		t.Fatalf("expected base URIs to default to root, got %v", opts.SchemaBaseURIs)
	}
	opts.SchemaBaseURIs = nil
	if !reflect.DeepEqual(opts, Default()) {
		t.Fatalf("expected defaults, got %+v", opts)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	content := "should_symlink_latest: false\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	opts, err := Load(dir, func(o *Options) {
		o.CurrentName = "current.yml"
		o.ShouldSymlinkLatest = true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.CurrentName != "current.yml" {
		t.Fatalf("expected override to apply, got %q", opts.CurrentName)
	}
	// Overrides take precedence over the file.
	if !opts.ShouldSymlinkLatest {
		t.Fatal("expected override to beat the file value")
	}
}

func TestLoadKeepsConfiguredBaseURIs(t *testing.T) {
	dir := t.TempDir()
	content := "schema_base_uris: [/schemas, https://schemas.example.com]\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	opts, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"/schemas", "https://schemas.example.com"}
	if !reflect.DeepEqual(opts.SchemaBaseURIs, want) {
		t.Fatalf("expected configured base URIs untouched, got %v", opts.SchemaBaseURIs)
	}
}

func TestLoadMergesFile(t *testing.T) {
	dir := t.TempDir()
	content := `content_types: [yaml, json]
should_symlink_latest: false
enforced_numeric_bounds: [-9007199254740991, 9007199254740991]
ignore_schemas: ["^/vendor/"]
skip_schema_test_cases:
  "^/legacy/": ["robustness/snake-case"]
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	opts, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(opts.ContentTypes, []string{"yaml", "json"}) {
		t.Fatalf("expected merged content types, got %v", opts.ContentTypes)
	}
	if opts.ShouldSymlinkLatest {
		t.Fatal("expected should_symlink_latest false from file")
	}
	if opts.ShouldDereference != true {
		t.Fatal("expected untouched option to keep its default")
	}
	if !opts.BoundsEnabled() || opts.EnforcedNumericBounds[1] != 9007199254740991 {
		t.Fatalf("expected bounds from file, got %v", opts.EnforcedNumericBounds)
	}
	if len(opts.SkipSchemaTestCases["^/legacy/"]) != 1 {
		t.Fatalf("expected skip cases from file, got %v", opts.SkipSchemaTestCases)
	}
	if opts.CurrentName != "current.yaml" {
		t.Fatalf("expected default current name, got %q", opts.CurrentName)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"empty content types", func(o *Options) { o.ContentTypes = nil }},
		{"unknown content type", func(o *Options) { o.ContentTypes = []string{"toml"} }},
		{"odd bounds", func(o *Options) { o.EnforcedNumericBounds = []float64{1} }},
		{"inverted bounds", func(o *Options) { o.EnforcedNumericBounds = []float64{10, -10} }},
		{"bad ignore regex", func(o *Options) { o.IgnoreSchemas = []string{"("} }},
		{"empty current name", func(o *Options) { o.CurrentName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Default()
			tt.mutate(&opts)
			if err := opts.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
