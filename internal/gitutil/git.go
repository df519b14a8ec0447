// Package gitutil shells out to git for the narrow plumbing the tool
// needs: repo discovery, modified-file listing, and staging.
package gitutil

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// FindRepoRoot returns the top-level directory of the repository
// containing workingDir.
func FindRepoRoot(workingDir string) (string, error) {
	out, err := exec.Command("git", "-C", workingDir, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository")
	}
	return strings.TrimSpace(string(out)), nil
}

// GitDir resolves the .git directory for hook installation.
func GitDir(workingDir string) (string, error) {
	root, err := FindRepoRoot(workingDir)
	if err != nil {
		return "", err
	}
	out, err := exec.Command("git", "-C", workingDir, "rev-parse", "--git-dir").Output()
	if err != nil {
		return "", fmt.Errorf("failed to resolve git directory: %w", err)
	}
	gitDir := strings.TrimSpace(string(out))
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(root, gitDir)
	}
	return gitDir, nil
}

// ListModifiedPaths returns repo-relative paths that differ from HEAD.
// With staged=true only the index is consulted; otherwise unstaged
// changes and untracked files are included too.
func ListModifiedPaths(root string, staged bool) ([]string, error) {
	args := []string{"-C", root, "diff", "--name-only", "--diff-filter=d"}
	if staged {
		args = append(args, "--cached")
	}
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list modified files: %w", err)
	}
	paths := splitLines(string(out))

	if !staged {
		out, err := exec.Command("git", "-C", root, "ls-files", "--others", "--exclude-standard").Output()
		if err != nil {
			return nil, fmt.Errorf("failed to list untracked files: %w", err)
		}
		paths = append(paths, splitLines(string(out))...)
	}
	return paths, nil
}

// Stage adds paths to the index.
func Stage(root string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"-C", root, "add", "--"}, paths...)
	if out, err := exec.Command("git", args...).CombinedOutput(); err != nil {
		return fmt.Errorf("failed to stage files: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
