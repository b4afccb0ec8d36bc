package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/uiharness/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the steps and artifacts of a recorded run",
		Long: `Show a recorded run: its status, each numbered step, and every
screenshot or video it produced, including captures that failed.

Examples:
  uiharness trace --db ./runs.db --run 0192f1e4-7c3a-7d2e-9b1a-2f6c8d4e5a10
  uiharness trace --db ./runs.db --run 0192f1e4-7c3a-7d2e-9b1a-2f6c8d4e5a10 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to show (required)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	st, err := openHistory(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(cmd.Context(), opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		if opts.Format == "json" {
			formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
			_ = formatter.Error(ErrCodeRun, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "No run found: %s\n", opts.RunID)
		}
		return WrapExitError(ExitCommandError, "failed to get run", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to get run", err)
	}

	if opts.Format == "json" {
		formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
		return formatter.Success(run)
	}

	formatTraceText(cmd.OutOrStdout(), run)
	return nil
}

// formatTraceText renders a run for humans.
func formatTraceText(w io.Writer, r *store.Run) {
	fmt.Fprintf(w, "Run: %s\n", r.ID)
	fmt.Fprintf(w, "Scenario: %s\n", r.Scenario)
	if r.Replay != "" {
		fmt.Fprintf(w, "Replay: %s\n", r.Replay)
	}
	fmt.Fprintf(w, "Status: %s (exit %d)\n", r.Status, r.ExitCode)
	fmt.Fprintf(w, "Started: %s\n", r.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Duration: %s\n", r.Duration().Round(time.Millisecond))
	if r.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", r.Error)
	}
	fmt.Fprintln(w)

	byStep := make(map[int][]store.Artifact)
	for _, a := range r.Artifacts {
		byStep[a.Step] = append(byStep[a.Step], a)
	}

	fmt.Fprintln(w, "Steps:")
	for _, s := range r.Steps {
		fmt.Fprintf(w, "  [%d] %s (+%s)\n", s.Seq, s.Title, s.StartedAt.Sub(r.StartedAt).Round(time.Millisecond))
		for _, a := range byStep[s.Seq] {
			fmt.Fprintf(w, "       %s\n", formatArtifact(a))
		}
		delete(byStep, s.Seq)
	}

	// Captures taken before the first step banner, e.g. a fatal error.
	for _, a := range byStep[0] {
		fmt.Fprintf(w, "  %s\n", formatArtifact(a))
	}
	fmt.Fprintln(w)

	ok := 0
	for _, a := range r.Artifacts {
		if a.OK {
			ok++
		}
	}
	fmt.Fprintln(w, "Stats:")
	fmt.Fprintf(w, "  Steps:     %d\n", len(r.Steps))
	fmt.Fprintf(w, "  Artifacts: %d (%d saved)\n", len(r.Artifacts), ok)
	if r.Video != "" {
		fmt.Fprintf(w, "  Video:     %s\n", r.Video)
	}
}

func formatArtifact(a store.Artifact) string {
	if !a.OK {
		return fmt.Sprintf("%s %s FAILED: %s", a.Kind, a.Label, a.Error)
	}
	return fmt.Sprintf("%s %s -> %s", a.Kind, a.Label, a.Path)
}
