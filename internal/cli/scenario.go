package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/uiharness/internal/scenario"
)

// NewScenarioCommand creates the scenario command, which prints the
// embedded scenario as a starting point for custom ones.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Print the embedded default scenario",
		Long: `Print the YAML of the embedded ` + scenario.BuiltinName + ` scenario.

Redirect it to a file, edit it and pass it back with --scenario:
  uiharness scenario > ui.yaml
  uiharness run --scenario ui.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := scenario.BuiltinSource()
			if rootOpts.Format == "json" {
				formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
				return formatter.Success(map[string]string{
					"name": scenario.BuiltinName,
					"yaml": string(src),
				})
			}
			_, err := cmd.OutOrStdout().Write(src)
			return err
		},
	}
}
