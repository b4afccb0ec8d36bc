package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/uiharness/internal/window"
)

// WindowsOptions holds flags for the windows command.
type WindowsOptions struct {
	*RootOptions
	Scope    string
	All      bool
	Scenario string

	// Lister allows overriding the window registry (for testing).
	// If nil, defaults to window.NewLister.
	Lister window.Lister
}

// WindowsResult is the JSON payload of the windows command.
type WindowsResult struct {
	Scope   string              `json:"scope"`
	Windows []window.Descriptor `json:"windows"`
	Match   *window.Descriptor  `json:"match,omitempty"`
}

// NewWindowsCommand creates the windows command.
func NewWindowsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WindowsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List the OS window registry",
		Long: `List the windows the window server reports, one per line, and show
which one the scenario's window rules would pick.

Use this to tune window.owner_hint and window.title_hints when a run
times out waiting for the app window.

Example:
  uiharness windows
  uiharness windows --all --scenario ./ui.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindows(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scope, "scope", "", "window scope (onscreen|all, default: scenario's)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "list windows on every space (same as --scope all)")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "scenario whose window rules are applied")

	return cmd
}

func runWindows(opts *WindowsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sc, err := loadScenario(opts.Scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	scopeName := sc.Window.Scope
	if opts.Scope != "" {
		scopeName = opts.Scope
	}
	if opts.All {
		scopeName = string(window.ScopeAll)
	}
	scope, err := window.ParseScope(scopeName)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid option", err)
	}

	matcher, err := sc.WindowRules().Compile()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid window rules", err)
	}

	lister := opts.Lister
	if lister == nil {
		lister, err = window.NewLister()
		if err != nil {
			return WrapExitError(ExitCommandError, "window listing unavailable", err)
		}
	}

	windows, err := lister.List(cmd.Context(), scope)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list windows", err)
	}
	formatter.VerboseLog("listed %d windows (scope %s)", len(windows), scope)

	result := WindowsResult{Scope: string(scope), Windows: windows}
	if d, ok := matcher.First(windows); ok {
		result.Match = &d
	}
	if result.Windows == nil {
		result.Windows = []window.Descriptor{}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Windows (%s):\n", scope)
	if err := window.Dump(w, windows); err != nil {
		return err
	}
	if result.Match != nil {
		fmt.Fprintf(w, "\nMatch for %s: %s\n", sc.Name, result.Match)
	} else {
		fmt.Fprintf(w, "\nNo window matches %s\n", sc.Name)
	}
	return nil
}
