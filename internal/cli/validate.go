package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arborlogic/arbor/compiler"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <tree.yaml>",
		Short: "Compile a tree file and report errors",
		Long: `Parse and compile a behavior tree file against the built-in vocabulary
plus the example leaf behaviors, reporting the first compile error found.

Example:
  arbor validate ./patrol.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := compileTree(args[0]); err != nil {
				if ce, ok := compiler.AsError(err); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", ce.Error())
					return NewExitError(ExitFailure, "tree is invalid")
				}
				return WrapExitError(ExitCommandError, "validate failed", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
