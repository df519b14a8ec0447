package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/schemakit-dev/schemakit/internal/check"
)

func RunCheck(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}

	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	basePath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", path, err)
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

	checker, err := check.New(opts, logger)
	if err != nil {
		return err
	}
	results, err := checker.Run(basePath)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printResults(results)
	}

	if failed := check.Failures(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
	}
	return nil
}

func printResults(results []check.Result) {
	for _, r := range results {
		label := map[check.Status]string{
			check.StatusPass: "PASS",
			check.StatusFail: "FAIL",
			check.StatusSkip: "SKIP",
		}[r.Status]
		line := fmt.Sprintf("%s  %-36s %s", label, r.Rule, r.Path)
		if r.Version != "" {
			line += " @" + r.Version
		}
		if r.Message != "" {
			line += "\n      " + r.Message
		}
		fmt.Fprintln(os.Stdout, line)
	}
}
