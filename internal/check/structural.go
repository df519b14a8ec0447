package check

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/schemakit-dev/schemakit/internal/fileutil"
	"github.com/schemakit-dev/schemakit/internal/repo"
)

// Structural validates the file layout of every title group: directory
// cohesion, current source presence, the current/materialized round-trip,
// and symlink correctness.
func (c *Checker) Structural(infos []repo.Info) []Result {
	var results []Result
	groups := repo.GroupByTitle(infos)
	for _, title := range sortedTitles(groups) {
		results = c.structuralGroup(results, title, groups[title])
	}
	return results
}

func (c *Checker) structuralGroup(results []Result, title string, group []repo.Info) []Result {
	dir := filepath.Dir(group[0].Path)
	current, hasCurrent := findCurrent(group)
	id := group[0].Schema.ID()
	if hasCurrent {
		id = current.Schema.ID()
	}
	base := Result{Title: title, Path: dir}

	var sameDir []string
	for _, info := range group {
		if filepath.Dir(info.Path) != dir {
			sameDir = append(sameDir, fmt.Sprintf("%s is outside %s", info.Path, dir))
		}
	}
	results = c.record(results, RuleSameDirectory, id, base, sameDir)

	var currentExists []string
	if !hasCurrent {
		currentExists = append(currentExists, fmt.Sprintf("no %s source in %s", c.opts.CurrentName, dir))
	}
	results = c.record(results, RuleCurrentExists, id, base, currentExists)

	var straySymlink []string
	stray := filepath.Join(dir, strings.TrimSuffix(c.opts.CurrentName, filepath.Ext(c.opts.CurrentName)))
	if fileutil.IsSymlink(stray) {
		straySymlink = append(straySymlink, fmt.Sprintf("stray extensionless current symlink %s", stray))
	}
	results = c.record(results, RuleNoCurrentSymlink, id, base, straySymlink)

	if hasCurrent {
		results = c.record(results, RuleCurrentMaterialized, id,
			Result{Title: title, Path: current.Path, Version: current.Version.String()},
			c.checkRoundTrip(dir, current, group))
	}

	if c.opts.ShouldSymlinkLatest {
		results = c.record(results, RuleLatestSymlinks, id, base, c.checkLatest(dir, group))
	}

	for _, version := range materializedVersions(group) {
		variants := variantsOf(group, version)
		vbase := Result{Title: title, Path: dir, Version: version}

		var missing []string
		for _, ct := range c.opts.ContentTypes {
			if variantWith(variants, ct) == nil {
				missing = append(missing, fmt.Sprintf("missing %s.%s", version, ct))
			}
		}
		results = c.record(results, RuleVersionContentTypes, id, vbase, missing)

		if c.opts.ShouldSymlinkExtensionless {
			results = c.record(results, RuleExtensionlessSymlink, id, vbase,
				c.checkSymlinkTarget(filepath.Join(dir, version), version+"."+c.opts.PrimaryContentType()))
		}

		var unequal []string
		for i := 1; i < len(variants); i++ {
			if !variants[0].Schema.Equal(variants[i].Schema) {
				unequal = append(unequal, fmt.Sprintf("%s and %s parse to different documents",
					variants[0].Path, variants[i].Path))
			}
		}
		results = c.record(results, RuleContentTypeEquality, id, vbase, unequal)
	}
	return results
}

// checkRoundTrip verifies the core property: the artifact matching the
// current source's version exists and, run through the same transform
// pipeline, is deep-equal to the transformed current source.
func (c *Checker) checkRoundTrip(dir string, current repo.Info, group []repo.Info) []string {
	var materialized *repo.Info
	for i := range group {
		info := &group[i]
		if !info.Current && info.ContentType == c.opts.PrimaryContentType() &&
			info.Version.Equal(current.Version) {
			materialized = info
			break
		}
	}
	if materialized == nil {
		return []string{fmt.Sprintf("version %s from %s is not materialized in %s",
			current.Version, current.Path, dir)}
	}
	wantDoc, err := c.mat.Transform(current.Schema)
	if err != nil {
		return []string{fmt.Sprintf("failed to transform current source: %v", err)}
	}
	gotDoc, err := c.mat.Transform(materialized.Schema)
	if err != nil {
		return []string{fmt.Sprintf("failed to transform %s: %v", materialized.Path, err)}
	}
	if !wantDoc.Equal(gotDoc) {
		return []string{fmt.Sprintf("%s does not round-trip to the current source", materialized.Path)}
	}
	return nil
}

func (c *Checker) checkLatest(dir string, group []repo.Info) []string {
	highest := highestMaterialized(group)
	if highest == nil {
		return nil
	}
	var violations []string
	for _, ct := range c.opts.ContentTypes {
		violations = append(violations,
			c.checkSymlinkTarget(filepath.Join(dir, "latest."+ct), highest.String()+"."+ct)...)
	}
	if c.opts.ShouldSymlinkExtensionless {
		violations = append(violations,
			c.checkSymlinkTarget(filepath.Join(dir, "latest"), "latest."+c.opts.PrimaryContentType())...)
	}
	return violations
}

func (c *Checker) checkSymlinkTarget(linkPath, want string) []string {
	target, err := fileutil.ReadSymlink(linkPath)
	if err != nil {
		return []string{fmt.Sprintf("failed to read symlink %s: %v", linkPath, err)}
	}
	if target == "" {
		return []string{fmt.Sprintf("missing symlink %s -> %s", linkPath, want)}
	}
	if filepath.Base(target) != want {
		return []string{fmt.Sprintf("symlink %s targets %s, expected %s", linkPath, target, want)}
	}
	return nil
}

func findCurrent(group []repo.Info) (repo.Info, bool) {
	for _, info := range group {
		if info.Current {
			return info, true
		}
	}
	return repo.Info{}, false
}

func materializedVersions(group []repo.Info) []string {
	seen := make(map[string]bool)
	var versions []*semver.Version
	for _, info := range group {
		if info.Current || seen[info.Version.String()] {
			continue
		}
		seen[info.Version.String()] = true
		versions = append(versions, info.Version)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].LessThan(versions[j]) })
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.String()
	}
	return out
}

func variantsOf(group []repo.Info, version string) []repo.Info {
	var out []repo.Info
	for _, info := range group {
		if !info.Current && info.Version.String() == version {
			out = append(out, info)
		}
	}
	return out
}

func variantWith(variants []repo.Info, contentType string) *repo.Info {
	for i := range variants {
		if variants[i].ContentType == contentType {
			return &variants[i]
		}
	}
	return nil
}

func highestMaterialized(group []repo.Info) *semver.Version {
	var highest *semver.Version
	for _, info := range group {
		if info.Current {
			continue
		}
		if highest == nil || info.Version.GreaterThan(highest) {
			highest = info.Version
		}
	}
	return highest
}
