package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/uiharness/internal/scenario"
)

// ValidationError is one problem found in a scenario.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Scenario string            `json:"scenario,omitempty"`
	Steps    int               `json:"steps,omitempty"`
	Actions  int               `json:"actions,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [scenario.yaml]",
		Short: "Validate a scenario file",
		Long: `Validate a scenario without running it.

Checks that the YAML has no unknown fields, that every click target and
sort column exists in the layout, and that values satisfy the scenario
schema. Without an argument the embedded scenario is checked.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	data := scenario.BuiltinSource()
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return outputValidateError(formatter, ErrCodeGeneric, fmt.Sprintf("cannot read scenario: %v", err), nil)
		}
		formatter.VerboseLog("Read %d bytes from %s", len(data), path)
	} else {
		formatter.VerboseLog("Validating embedded scenario %q", scenario.BuiltinName)
	}

	sc, err := scenario.Parse(data)
	if err != nil {
		return outputValidationErrors(formatter, validationErrors(err))
	}

	return outputValidateSuccess(formatter, sc)
}

// validationErrors flattens a Parse error. Schema errors carry one
// entry per violation.
func validationErrors(err error) []ValidationError {
	var schemaErr *scenario.SchemaError
	if errors.As(err, &schemaErr) && len(schemaErr.Issues) > 0 {
		errs := make([]ValidationError, 0, len(schemaErr.Issues))
		for _, issue := range schemaErr.Issues {
			errs = append(errs, ValidationError{Code: ErrCodeSchema, Message: issue})
		}
		return errs
	}
	return []ValidationError{{Code: ErrCodeScenario, Message: err.Error()}}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, sc *scenario.Scenario) error {
	actions := 0
	for _, step := range sc.Script {
		actions += len(step.Actions)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:    true,
			Scenario: sc.Name,
			Steps:    len(sc.Script),
			Actions:  actions,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Scenario %s valid (%d steps, %d actions)\n", sc.Name, len(sc.Script), actions)
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs the problems found in a scenario.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
