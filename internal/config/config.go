// Package config provides option loading and merging: built-in defaults,
// an optional .schemakit.yaml at the repository root, then caller overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = ".schemakit.yaml"

// Options is the single options structure threaded through every call.
// There is no ambient global; each invocation constructs one.
type Options struct {
	// ContentTypes lists serialization formats, primary first.
	ContentTypes []string `yaml:"content_types"`
	// SchemaVersionField is the dotted path of the version-bearing field.
	SchemaVersionField string `yaml:"schema_version_field"`
	// SchemaTitleField is the dotted path of the grouping title field.
	SchemaTitleField string `yaml:"schema_title_field"`

	ShouldDereference          bool `yaml:"should_dereference"`
	ShouldSymlinkExtensionless bool `yaml:"should_symlink_extensionless"`
	ShouldSymlinkLatest        bool `yaml:"should_symlink_latest"`

	// EnforcedNumericBounds is [min, max] for numeric nodes, or empty to
	// disable bounds enforcement.
	EnforcedNumericBounds []float64 `yaml:"enforced_numeric_bounds"`

	// IgnoreSchemas holds $id regexes excluded from scans.
	IgnoreSchemas []string `yaml:"ignore_schemas"`
	// SkipSchemaTestCases maps a $id regex to checker rule names to skip.
	SkipSchemaTestCases map[string][]string `yaml:"skip_schema_test_cases"`

	// SchemaBaseURIs is the ordered $ref resolution search list.
	SchemaBaseURIs []string `yaml:"schema_base_uris"`
	// CurrentName is the mutable source filename within a schema directory.
	CurrentName string `yaml:"current_name"`
	// DependencyMarkers are title substrings that sort first during scans,
	// a best-effort heuristic so likely dependencies materialize early.
	DependencyMarkers []string `yaml:"dependency_markers"`
}

// fileOptions mirrors Options with pointer fields so an absent key in the
// config file never clobbers a default.
type fileOptions struct {
	ContentTypes               []string            `yaml:"content_types"`
	SchemaVersionField         *string             `yaml:"schema_version_field"`
	SchemaTitleField           *string             `yaml:"schema_title_field"`
	ShouldDereference          *bool               `yaml:"should_dereference"`
	ShouldSymlinkExtensionless *bool               `yaml:"should_symlink_extensionless"`
	ShouldSymlinkLatest        *bool               `yaml:"should_symlink_latest"`
	EnforcedNumericBounds      []float64           `yaml:"enforced_numeric_bounds"`
	IgnoreSchemas              []string            `yaml:"ignore_schemas"`
	SkipSchemaTestCases        map[string][]string `yaml:"skip_schema_test_cases"`
	SchemaBaseURIs             []string            `yaml:"schema_base_uris"`
	CurrentName                *string             `yaml:"current_name"`
	DependencyMarkers          []string            `yaml:"dependency_markers"`
}

// Default returns the built-in option set.
func Default() Options {
	return Options{
		ContentTypes:               []string{"yaml"},
		SchemaVersionField:         "$id",
		SchemaTitleField:           "title",
		ShouldDereference:          true,
		ShouldSymlinkExtensionless: true,
		ShouldSymlinkLatest:        true,
		CurrentName:                "current.yaml",
		DependencyMarkers:          []string{"common"},
	}
}

// Load merges, in precedence order: defaults, the config file found in
// root (when present), then caller overrides. An empty base URI list
// defaults to root itself so bare $refs resolve against the repository.
func Load(root string, overrides ...func(*Options)) (Options, error) {
	opts := Default()
	path := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return opts, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err == nil {
		var file fileOptions
		if err := yaml.Unmarshal(data, &file); err != nil {
			return opts, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		applyFile(&opts, file)
	}
	for _, override := range overrides {
		override(&opts)
	}
	if len(opts.SchemaBaseURIs) == 0 {
		opts.SchemaBaseURIs = []string{root}
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return opts, nil
}

func applyFile(opts *Options, file fileOptions) {
	if len(file.ContentTypes) > 0 {
		opts.ContentTypes = file.ContentTypes
	}
	if file.SchemaVersionField != nil {
		opts.SchemaVersionField = *file.SchemaVersionField
	}
	if file.SchemaTitleField != nil {
		opts.SchemaTitleField = *file.SchemaTitleField
	}
	if file.ShouldDereference != nil {
		opts.ShouldDereference = *file.ShouldDereference
	}
	if file.ShouldSymlinkExtensionless != nil {
		opts.ShouldSymlinkExtensionless = *file.ShouldSymlinkExtensionless
	}
	if file.ShouldSymlinkLatest != nil {
		opts.ShouldSymlinkLatest = *file.ShouldSymlinkLatest
	}
	if len(file.EnforcedNumericBounds) > 0 {
		opts.EnforcedNumericBounds = file.EnforcedNumericBounds
	}
	if len(file.IgnoreSchemas) > 0 {
		opts.IgnoreSchemas = file.IgnoreSchemas
	}
	if len(file.SkipSchemaTestCases) > 0 {
		opts.SkipSchemaTestCases = file.SkipSchemaTestCases
	}
	if len(file.SchemaBaseURIs) > 0 {
		opts.SchemaBaseURIs = file.SchemaBaseURIs
	}
	if file.CurrentName != nil {
		opts.CurrentName = *file.CurrentName
	}
	if len(file.DependencyMarkers) > 0 {
		opts.DependencyMarkers = file.DependencyMarkers
	}
}

// Validate rejects option combinations the pipeline cannot honor.
func (o Options) Validate() error {
	if len(o.ContentTypes) == 0 {
		return fmt.Errorf("content_types must not be empty")
	}
	for _, ct := range o.ContentTypes {
		if ct != "yaml" && ct != "json" {
			return fmt.Errorf("unsupported content type %q", ct)
		}
	}
	if n := len(o.EnforcedNumericBounds); n != 0 && n != 2 {
		return fmt.Errorf("enforced_numeric_bounds must be [min, max], got %d values", n)
	}
	if len(o.EnforcedNumericBounds) == 2 && o.EnforcedNumericBounds[0] > o.EnforcedNumericBounds[1] {
		return fmt.Errorf("enforced_numeric_bounds min exceeds max")
	}
	for _, pattern := range o.IgnoreSchemas {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid ignore_schemas pattern %q: %w", pattern, err)
		}
	}
	for pattern := range o.SkipSchemaTestCases {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid skip_schema_test_cases pattern %q: %w", pattern, err)
		}
	}
	if o.CurrentName == "" {
		return fmt.Errorf("current_name must not be empty")
	}
	return nil
}

// PrimaryContentType is the first configured content type; symlinks and
// compatibility checks target its artifacts.
func (o Options) PrimaryContentType() string {
	return o.ContentTypes[0]
}

// BoundsEnabled reports whether numeric bounds enforcement is configured.
func (o Options) BoundsEnabled() bool {
	return len(o.EnforcedNumericBounds) == 2
}

// HasContentType reports whether ct is one of the configured formats.
func (o Options) HasContentType(ct string) bool {
	for _, c := range o.ContentTypes {
		if c == ct {
			return true
		}
	}
	return false
}
