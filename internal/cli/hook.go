package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemakit-dev/schemakit/internal/fileutil"
	"github.com/schemakit-dev/schemakit/internal/gitutil"
)

const (
	HookStart = "# >>> schemakit materialize hook >>>"
	HookEnd   = "# <<< schemakit materialize hook <<<"
)

func RunInstallHook(cmd *cobra.Command, args []string) error {
	workingDir, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	repoRoot, err := gitutil.FindRepoRoot(workingDir)
	if err != nil {
		return err
	}
	gitDir, err := gitutil.GitDir(workingDir)
	if err != nil {
		return err
	}

	hookPath := filepath.Join(gitDir, "hooks", "pre-commit")
	if err := os.MkdirAll(filepath.Dir(hookPath), 0755); err != nil {
		return fmt.Errorf("failed to create hook directory: %w", err)
	}

	existing := ""
	if data, err := os.ReadFile(hookPath); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read existing hook: %w", err)
	}

	updated := UpsertMaterializeHook(existing, repoRoot)
	if err := os.WriteFile(hookPath, []byte(updated), 0755); err != nil {
		return fmt.Errorf("failed to write hook: %w", err)
	}

	fmt.Printf("Installed pre-commit hook at %s\n", hookPath)
	return nil
}

// UpsertMaterializeHook inserts or replaces the marker-delimited hook
// block, preserving anything else already in the user's pre-commit hook.
func UpsertMaterializeHook(existingHook, repoRoot string) string {
	block := BuildMaterializeHookBlock(repoRoot)

	if existingHook == "" {
		return "#!/bin/sh\n\n" + block + "\n"
	}

	start := strings.Index(existingHook, HookStart)
	end := strings.Index(existingHook, HookEnd)
	if start >= 0 && end >= start {
		end += len(HookEnd)
		updated := existingHook[:start] + block + existingHook[end:]
		return fileutil.EnsureTrailingNewline(updated)
	}

	base := fileutil.EnsureTrailingNewline(existingHook)
	if !strings.HasPrefix(base, "#!") {
		base = "#!/bin/sh\n" + base
	}
	return base + "\n" + block + "\n"
}

func BuildMaterializeHookBlock(repoRoot string) string {
	return fmt.Sprintf(
		"%s\nrepo_root=%q\nif command -v schemakit >/dev/null 2>&1; then\n  (cd \"$repo_root\" && schemakit materialize-modified --staged --stage) || exit 1\nfi\n%s",
		HookStart,
		repoRoot,
		HookEnd,
	)
}
