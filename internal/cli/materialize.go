package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schemakit-dev/schemakit/internal/materialize"
)

func RunMaterialize(cmd *cobra.Command, args []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to read --dry-run flag: %w", err)
	}

	workingDir, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	opts, err := loadOptions(workingDir)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	m := materialize.New(opts, logger)

	for _, arg := range args {
		path, err := resolveCurrentPath(arg, opts.CurrentName)
		if err != nil {
			return err
		}
		written, err := m.MaterializeFile(path, dryRun)
		if err != nil {
			logger.Error().Str("path", path).Err(err).Msg("materialization failed")
			return fmt.Errorf("failed to materialize %s: %w", path, err)
		}
		printWritten(written, dryRun)
	}
	return nil
}

// resolveCurrentPath accepts either a current source file or a schema
// directory containing one.
func resolveCurrentPath(arg, currentName string) (string, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return "", fmt.Errorf("failed to access %q: %w", arg, err)
	}
	if info.IsDir() {
		return filepath.Join(arg, currentName), nil
	}
	return arg, nil
}

func printWritten(paths []string, dryRun bool) {
	prefix := ""
	if dryRun {
		prefix = "(dry-run) "
	}
	for _, path := range paths {
		fmt.Printf("%s%s\n", prefix, path)
	}
}
