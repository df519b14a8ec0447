package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemakit-dev/schemakit/internal/materialize"
	"github.com/schemakit-dev/schemakit/internal/schema"
)

// RunDereference prints the fully transformed form of each source so the
// result of a materialization can be inspected without writing files.
func RunDereference(cmd *cobra.Command, args []string) error {
	workingDir, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	opts, err := loadOptions(workingDir)
	if err != nil {
		return err
	}
	m := materialize.New(opts, newLogger(cmd))

	for _, arg := range args {
		doc, err := schema.ParseFile(arg)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", arg, err)
		}
		out, err := m.Transform(doc)
		if err != nil {
			return fmt.Errorf("failed to dereference %s: %w", arg, err)
		}
		data, err := schema.Serialize(out, opts.PrimaryContentType())
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
	}
	return nil
}
