package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/schemakit-dev/schemakit/internal/config"
	"github.com/schemakit-dev/schemakit/internal/gitutil"
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// newLogger builds the injected logger for one invocation. Console output
// on stderr, info level unless --verbose.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// loadOptions merges defaults with the config file at the repo root, or
// at the working directory when not inside a git repository.
func loadOptions(workingDir string) (config.Options, error) {
	root, err := gitutil.FindRepoRoot(workingDir)
	if err != nil {
		root = workingDir
	}
	return config.Load(root)
}
