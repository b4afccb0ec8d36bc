package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the uiharness CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "uiharness",
		Short: "uiharness - end-to-end GUI test harness",
		Long: `Build a desktop application, launch it, find its window, drive it with
synthetic input and capture a screenshot after every step.

Runs are described by scenario files. Without --scenario the embedded
BotOrNot scenario is used.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateRootOptions(opts)
		},
	}

	addRootFlags(cmd, opts)

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewWindowsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewStitchCommand(opts))

	return cmd
}

// NewRunUITestCommand creates the standalone run_ui_test command:
// run_ui_test [path/to/replay] behaves like uiharness run.
func NewRunUITestCommand() *cobra.Command {
	opts := &RootOptions{}
	cmd := NewRunCommand(opts)
	cmd.Use = "run_ui_test [path/to/replay]"
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return validateRootOptions(opts)
	}
	addRootFlags(cmd, opts)
	return cmd
}

func addRootFlags(cmd *cobra.Command, opts *RootOptions) {
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
}

func validateRootOptions(opts *RootOptions) error {
	if !isValidFormat(opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
