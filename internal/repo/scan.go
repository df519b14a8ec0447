// Package repo discovers schema files: it walks a directory tree,
// classifies versioned artifacts and current sources, and orders them
// for materialization.
package repo

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/schemakit-dev/schemakit/internal/config"
	"github.com/schemakit-dev/schemakit/internal/schema"
)

// Info is the derived metadata for one schema file on disk. Computed
// fresh on every scan, never persisted.
type Info struct {
	Title       string
	Path        string
	Version     *semver.Version
	Current     bool
	ContentType string
	Schema      schema.Document
}

var bareVersion = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

type Scanner struct {
	opts    config.Options
	ignores []*regexp.Regexp
}

func NewScanner(opts config.Options) (*Scanner, error) {
	ignores := make([]*regexp.Regexp, 0, len(opts.IgnoreSchemas))
	for _, pattern := range opts.IgnoreSchemas {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		ignores = append(ignores, re)
	}
	return &Scanner{opts: opts, ignores: ignores}, nil
}

// FindAllSchemasInfo walks basePath and returns every current source and
// versioned artifact, sorted by the dependency heuristic: marker titles
// first, then shallower paths, then ascending version, current sources
// after materialized artifacts. Best-effort ordering, not a topological
// sort.
func (s *Scanner) FindAllSchemasInfo(basePath string) ([]Info, error) {
	var infos []Info
	err := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != basePath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		info, ok, err := s.classify(path, d.Name())
		if err != nil {
			return err
		}
		if ok {
			infos = append(infos, info)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", basePath, err)
	}
	s.sortInfos(infos)
	return infos, nil
}

// classify keeps files whose extension is a configured content type and
// whose name is either the current source name or a bare semantic version.
func (s *Scanner) classify(path, name string) (Info, bool, error) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if !s.opts.HasContentType(ext) {
		return Info{}, false, nil
	}
	current := name == s.opts.CurrentName
	stem := strings.TrimSuffix(name, "."+ext)
	if !current && !bareVersion.MatchString(stem) {
		return Info{}, false, nil
	}

	doc, err := schema.ParseFile(path)
	if err != nil {
		return Info{}, false, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	if s.ignored(doc.ID()) {
		return Info{}, false, nil
	}

	var version *semver.Version
	if current {
		version, err = schema.ExtractVersion(doc, s.opts.SchemaVersionField)
		if err != nil {
			return Info{}, false, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		version, err = semver.NewVersion(stem)
		if err != nil {
			return Info{}, false, fmt.Errorf("%s: %w", path, err)
		}
	}

	return Info{
		Title:       doc.StringAt(s.opts.SchemaTitleField),
		Path:        path,
		Version:     version,
		Current:     current,
		ContentType: ext,
		Schema:      doc,
	}, true, nil
}

func (s *Scanner) ignored(id string) bool {
	for _, re := range s.ignores {
		if id != "" && re.MatchString(id) {
			return true
		}
	}
	return false
}

func (s *Scanner) sortInfos(infos []Info) {
	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		am, bm := s.hasMarker(a.Title), s.hasMarker(b.Title)
		if am != bm {
			return am
		}
		ad, bd := pathDepth(a.Path), pathDepth(b.Path)
		if ad != bd {
			return ad < bd
		}
		if cmp := a.Version.Compare(b.Version); cmp != 0 {
			return cmp < 0
		}
		if a.Current != b.Current {
			return b.Current
		}
		return a.Path < b.Path
	})
}

func (s *Scanner) hasMarker(title string) bool {
	for _, marker := range s.opts.DependencyMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

func pathDepth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}

// FindSchemasByTitleAndMajor groups scan results by title, then by the
// major component of the version.
func (s *Scanner) FindSchemasByTitleAndMajor(basePath string) (map[string]map[uint64][]Info, error) {
	infos, err := s.FindAllSchemasInfo(basePath)
	if err != nil {
		return nil, err
	}
	return GroupByTitleAndMajor(infos), nil
}

func GroupByTitleAndMajor(infos []Info) map[string]map[uint64][]Info {
	groups := make(map[string]map[uint64][]Info)
	for _, info := range infos {
		majors, ok := groups[info.Title]
		if !ok {
			majors = make(map[uint64][]Info)
			groups[info.Title] = majors
		}
		major := info.Version.Major()
		majors[major] = append(majors[major], info)
	}
	return groups
}

// GroupByTitle flattens the major-version split away.
func GroupByTitle(infos []Info) map[string][]Info {
	groups := make(map[string][]Info)
	for _, info := range infos {
		groups[info.Title] = append(groups[info.Title], info)
	}
	return groups
}

// CurrentSources filters a scan down to the mutable source files, keeping
// scan order.
func CurrentSources(infos []Info) []Info {
	out := make([]Info, 0, len(infos))
	for _, info := range infos {
		if info.Current {
			out = append(out, info)
		}
	}
	return out
}
