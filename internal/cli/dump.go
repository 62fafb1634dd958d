package cli

import (
	"github.com/spf13/cobra"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <tree.yaml>",
		Short: "Print the compiled form of a tree file",
		Long: `Compile a behavior tree file and print its compiled form as JSON:
assigned node identities, tags, and option classification (concrete value
or deferred binding kind).

Example:
  arbor dump ./patrol.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := compileTree(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "compile failed", err)
			}
			out, err := root.Dump()
			if err != nil {
				return WrapExitError(ExitCommandError, "dump failed", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
