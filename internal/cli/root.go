package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schemakit",
		Short: "Materialize and validate versioned JSON Schema repositories",
		Long: `Schemakit turns mutable "current" schema sources into immutable,
semantically versioned, dereferenced artifacts, maintains extensionless
and "latest" symlinks, and checks that the materialized repository is
structurally sound, robust, and backward-compatible across versions.`,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	materializeCmd := &cobra.Command{
		Use:   "materialize <path>...",
		Short: "Materialize current schema sources into versioned artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE:  RunMaterialize,
	}
	materializeCmd.Flags().Bool("dry-run", false, "Compute artifacts without writing anything")

	modifiedCmd := &cobra.Command{
		Use:   "materialize-modified",
		Short: "Materialize current sources modified in the working tree",
		RunE:  RunMaterializeModified,
	}
	modifiedCmd.Flags().Bool("staged", false, "Consider staged changes only")
	modifiedCmd.Flags().Bool("stage", false, "git add written artifacts")
	modifiedCmd.Flags().Bool("dry-run", false, "Compute artifacts without writing anything")

	checkCmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Run structural, robustness, and compatibility checks",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunCheck,
	}
	checkCmd.Flags().Bool("json", false, "Print machine-readable results")

	dereferenceCmd := &cobra.Command{
		Use:   "dereference <path>...",
		Short: "Print the transformed (dereferenced) form of schema sources",
		Args:  cobra.MinimumNArgs(1),
		RunE:  RunDereference,
	}

	installHookCmd := &cobra.Command{
		Use:   "install-hook",
		Short: "Install git pre-commit hook that materializes modified schemas",
		RunE:  RunInstallHook,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("schemakit %s\n", version)
		},
	}

	rootCmd.AddCommand(
		materializeCmd,
		modifiedCmd,
		checkCmd,
		dereferenceCmd,
		installHookCmd,
		versionCmd,
	)

	return rootCmd
}
