package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VersionError means the configured version field was missing or held
// nothing that looks like a semantic version.
type VersionError struct {
	Field string
	Raw   string
}

func (e *VersionError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("no version found at field %q", e.Field)
	}
	return fmt.Sprintf("no semantic version in %q (field %q)", e.Raw, e.Field)
}

var versionRun = regexp.MustCompile(`\d+(\.\d+)?(\.\d+)?`)

// ExtractVersion derives a semantic version from the value at fieldPath,
// typically "$id". URI-like values contribute only their final path
// segment; partial versions are zero-padded ("1.2" becomes "1.2.0").
func ExtractVersion(doc Document, fieldPath string) (*semver.Version, error) {
	raw, ok := doc.Lookup(fieldPath)
	if !ok {
		return nil, &VersionError{Field: fieldPath}
	}
	s := fmt.Sprintf("%v", raw)
	if strings.Contains(s, "/") {
		parts := strings.Split(strings.TrimSuffix(s, "/"), "/")
		s = parts[len(parts)-1]
	}
	run := versionRun.FindString(s)
	if run == "" {
		return nil, &VersionError{Field: fieldPath, Raw: s}
	}
	for strings.Count(run, ".") < 2 {
		run += ".0"
	}
	v, err := semver.NewVersion(run)
	if err != nil {
		return nil, &VersionError{Field: fieldPath, Raw: s}
	}
	return v, nil
}
