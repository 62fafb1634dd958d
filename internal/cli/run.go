package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arborlogic/arbor/engine"
	"github.com/arborlogic/arbor/internal/store"
	"github.com/arborlogic/arbor/tree"
)

// RunCmdOptions holds flags for the run command.
type RunCmdOptions struct {
	*RootOptions
	Database string
	State    string
	Ticks    int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunCmdOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <tree.yaml>",
		Short: "Evaluate a tree against a state snapshot",
		Long: `Compile a behavior tree file and evaluate it one or more times.

Without --db the evaluation starts from an empty state and the final state
is printed to stdout. With --db the named state snapshot is loaded first,
the updated snapshot is written back, and the tick trace is recorded for
"arbor trace".

Example:
  arbor run ./patrol.yaml --ticks 3
  arbor run ./patrol.yaml --db agent.db --state guard`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (optional)")
	cmd.Flags().StringVar(&opts.State, "state", "default", "name of the state snapshot in the database")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 1, "number of top-level evaluations")

	return cmd
}

func runTree(cmd *cobra.Command, opts *RunCmdOptions, treePath string) error {
	if opts.Ticks < 1 {
		return NewExitError(ExitCommandError, "--ticks must be at least 1")
	}

	root, err := compileTree(treePath)
	if err != nil {
		return WrapExitError(ExitFailure, "compile failed", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	state := tree.State{}
	var st *store.Store
	var recorder *store.Recorder
	engineOpts := []engine.Option{}

	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("closing database", "error", closeErr)
			}
		}()

		loaded, ok, err := st.LoadState(ctx, opts.State)
		if err != nil {
			return WrapExitError(ExitCommandError, "load state", err)
		}
		if ok {
			state = loaded
		}
		recorder = st.NewRecorder()
		engineOpts = append(engineOpts, engine.WithTracer(recorder))
	}

	eng := engine.New(mustRegistry(), engineOpts...)

	var last tree.TickResult
	for i := 0; i < opts.Ticks; i++ {
		last, err = eng.Run(ctx, state, root, nil)
		if err != nil {
			return WrapExitError(ExitFailure, "evaluation failed", err)
		}
		state = last.State
	}

	if st != nil {
		if err := persistRun(ctx, st, recorder, treePath, opts.State, state); err != nil {
			return WrapExitError(ExitCommandError, "persist run", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), last.Status.String())
	if st == nil {
		body, err := json.Marshal(map[string]any(state))
		if err != nil {
			return WrapExitError(ExitCommandError, "marshal final state", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
	}

	if last.Status.Failed() {
		return NewExitError(ExitFailure, "evaluation ended in "+last.Status.String())
	}
	return nil
}

// persistRun writes the updated snapshot plus one run row per recorded
// run token. Ticks are traced post-order, so the last event of a token is
// the root's result — that becomes the run's recorded status.
func persistRun(ctx context.Context, st *store.Store, recorder *store.Recorder, treePath, stateName string, state tree.State) error {
	order := []string{}
	final := map[string]tree.Status{}
	for _, ev := range recorder.Events() {
		if _, seen := final[ev.RunToken]; !seen {
			order = append(order, ev.RunToken)
		}
		final[ev.RunToken] = ev.Status
	}
	for _, token := range order {
		if err := st.BeginRun(ctx, token, treePath); err != nil {
			return err
		}
	}
	if err := recorder.Flush(ctx); err != nil {
		return err
	}
	for _, token := range order {
		if err := st.FinishRun(ctx, token, strings.ToLower(final[token].String())); err != nil {
			return err
		}
	}
	return st.SaveState(ctx, stateName, state)
}

// mustRegistry builds the CLI registry; registration of static built-ins
// and example behaviors cannot fail at runtime.
func mustRegistry() *engine.Registry {
	reg, err := newRegistry()
	if err != nil {
		panic(err)
	}
	return reg
}
