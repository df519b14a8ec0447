// Package materialize turns a current schema source into immutable
// versioned artifacts plus convenience symlinks.
package materialize

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/schemakit-dev/schemakit/internal/bounds"
	"github.com/schemakit-dev/schemakit/internal/config"
	"github.com/schemakit-dev/schemakit/internal/deref"
	"github.com/schemakit-dev/schemakit/internal/fileutil"
	"github.com/schemakit-dev/schemakit/internal/resolver"
	"github.com/schemakit-dev/schemakit/internal/schema"
)

type Materializer struct {
	opts config.Options
	drf  *deref.Dereferencer
	log  zerolog.Logger
}

func New(opts config.Options, log zerolog.Logger) *Materializer {
	res := resolver.New(opts.SchemaBaseURIs, opts.ContentTypes)
	return &Materializer{
		opts: opts,
		drf:  deref.New(res),
		log:  log,
	}
}

// Transform applies the configured pipeline: dereference, then numeric
// bounds enforcement. The consistency checker runs the same pipeline when
// verifying the materialized round-trip.
func (m *Materializer) Transform(doc schema.Document) (schema.Document, error) {
	out := doc
	if m.opts.ShouldDereference {
		derefed, err := m.drf.Dereference(out)
		if err != nil {
			return nil, err
		}
		out = derefed
	}
	if m.opts.BoundsEnabled() {
		out = bounds.Enforce(out, m.opts.EnforcedNumericBounds[0], m.opts.EnforcedNumericBounds[1])
	}
	return out, nil
}

// MaterializeFile materializes the current source at path into its own
// directory.
func (m *Materializer) MaterializeFile(path string, dryRun bool) ([]string, error) {
	doc, err := schema.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return m.MaterializeToPath(filepath.Dir(path), doc, dryRun)
}

// MaterializeToPath writes one artifact per configured content type for
// the schema's extracted version, maintains the extensionless and latest
// symlinks, and returns every path written or linked. Dry-run performs
// every computation but skips filesystem writes. A failure on one content
// type aborts the rest; earlier artifacts from the same call stay on disk.
func (m *Materializer) MaterializeToPath(dir string, doc schema.Document, dryRun bool) ([]string, error) {
	version, err := schema.ExtractVersion(doc, m.opts.SchemaVersionField)
	if err != nil {
		return nil, err
	}
	out, err := m.Transform(doc)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, ct := range m.opts.ContentTypes {
		data, err := schema.Serialize(out, ct)
		if err != nil {
			return paths, fmt.Errorf("failed to serialize %s as %s: %w", version, ct, err)
		}
		path := filepath.Join(dir, version.String()+"."+ct)
		if !dryRun {
			if err := fileutil.WriteIfChanged(path, data); err != nil {
				return paths, fmt.Errorf("failed to write %s: %w", path, err)
			}
		}
		m.log.Debug().Str("path", path).Bool("dry_run", dryRun).Msg("materialized artifact")
		paths = append(paths, path)
	}

	linked, err := m.maintainSymlinks(dir, version, dryRun)
	paths = append(paths, linked...)
	if err != nil {
		return paths, err
	}
	return paths, nil
}

func (m *Materializer) maintainSymlinks(dir string, version *semver.Version, dryRun bool) ([]string, error) {
	primary := m.opts.PrimaryContentType()
	var paths []string

	link := func(target, linkPath string) error {
		if !dryRun {
			if err := fileutil.ReplaceSymlink(target, linkPath); err != nil {
				return err
			}
		}
		m.log.Debug().Str("link", linkPath).Str("target", target).Msg("updated symlink")
		paths = append(paths, linkPath)
		return nil
	}

	if m.opts.ShouldSymlinkExtensionless {
		if err := link(version.String()+"."+primary, filepath.Join(dir, version.String())); err != nil {
			return paths, err
		}
	}

	if m.opts.ShouldSymlinkLatest && m.shouldReplaceLatest(dir, version) {
		for _, ct := range m.opts.ContentTypes {
			if err := link(version.String()+"."+ct, filepath.Join(dir, "latest."+ct)); err != nil {
				return paths, err
			}
		}
		if m.opts.ShouldSymlinkExtensionless {
			if err := link("latest."+primary, filepath.Join(dir, "latest")); err != nil {
				return paths, err
			}
		}
	}
	return paths, nil
}

// shouldReplaceLatest compares against the version the existing latest
// symlink resolves to. A missing or broken symlink counts as "no latest
// yet", so the link is (re)created.
func (m *Materializer) shouldReplaceLatest(dir string, version *semver.Version) bool {
	target, err := fileutil.ReadSymlink(filepath.Join(dir, "latest."+m.opts.PrimaryContentType()))
	if err != nil || target == "" {
		return true
	}
	existing, err := VersionFromFilename(target)
	if err != nil {
		return true
	}
	return version.Compare(existing) >= 0
}

// VersionFromFilename parses "1.2.0.yaml" or "1.2.0" into a version.
func VersionFromFilename(name string) (*semver.Version, error) {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); ext != "" && !strings.ContainsAny(ext[1:], "0123456789") {
		base = strings.TrimSuffix(base, ext)
	}
	return semver.NewVersion(base)
}
