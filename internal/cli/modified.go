package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schemakit-dev/schemakit/internal/gitutil"
	"github.com/schemakit-dev/schemakit/internal/materialize"
)

// RunMaterializeModified materializes every current source git reports as
// modified, in working-tree order. Used directly and from the pre-commit
// hook.
func RunMaterializeModified(cmd *cobra.Command, args []string) error {
	staged, err := cmd.Flags().GetBool("staged")
	if err != nil {
		return fmt.Errorf("failed to read --staged flag: %w", err)
	}
	stage, err := cmd.Flags().GetBool("stage")
	if err != nil {
		return fmt.Errorf("failed to read --stage flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to read --dry-run flag: %w", err)
	}

	workingDir, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	root, err := gitutil.FindRepoRoot(workingDir)
	if err != nil {
		return err
	}
	opts, err := loadOptions(workingDir)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	modified, err := gitutil.ListModifiedPaths(root, staged)
	if err != nil {
		return err
	}
	var sources []string
	for _, path := range modified {
		if filepath.Base(path) == opts.CurrentName {
			sources = append(sources, filepath.Join(root, path))
		}
	}
	if len(sources) == 0 {
		logger.Info().Msg("no modified current schemas")
		return nil
	}

	m := materialize.New(opts, logger)
	var written []string
	for _, path := range sources {
		paths, err := m.MaterializeFile(path, dryRun)
		if err != nil {
			logger.Error().Str("path", path).Err(err).Msg("materialization failed")
			return fmt.Errorf("failed to materialize %s: %w", path, err)
		}
		printWritten(paths, dryRun)
		written = append(written, paths...)
	}

	if stage && !dryRun {
		if err := gitutil.Stage(root, written); err != nil {
			return err
		}
	}
	return nil
}
