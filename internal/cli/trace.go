package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arborlogic/arbor/internal/store"
)

// TraceCmdOptions holds flags for the trace command.
type TraceCmdOptions struct {
	*RootOptions
	Database string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceCmdOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-token]",
		Short: "Print the tick trace of a recorded run",
		Long: `Print the per-node dispatch trace of a recorded evaluation, one line
per tick in dispatch order. Without a run token the most recent run is
shown.

Example:
  arbor trace --db agent.db
  arbor trace --db agent.db 0d9f1c2a-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			}
			return showTrace(cmd, opts, token)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showTrace(cmd *cobra.Command, opts *TraceCmdOptions, token string) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if token == "" {
		info, ok, err := st.LatestRun(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "find latest run", err)
		}
		if !ok {
			return NewExitError(ExitCommandError, "no recorded runs")
		}
		token = info.Token
		fmt.Fprintf(cmd.OutOrStdout(), "run %s (%s, %s)\n", info.Token, info.TreePath, info.Status)
	}

	events, err := st.Ticks(ctx, token)
	if err != nil {
		return WrapExitError(ExitCommandError, "read ticks", err)
	}
	if len(events) == 0 {
		return NewExitError(ExitFailure, "no ticks recorded for run "+token)
	}
	for _, ev := range events {
		line := fmt.Sprintf("%4d  node=%-4d %-20s %s", ev.Seq, int64(ev.NodeID), ev.Tag, ev.Status.String())
		if ev.Err != "" {
			line += "  err=" + ev.Err
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
