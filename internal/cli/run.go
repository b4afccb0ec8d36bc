package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/uiharness/internal/harness"
	"github.com/roach88/uiharness/internal/scenario"
	"github.com/roach88/uiharness/internal/store"
	"github.com/roach88/uiharness/internal/window"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Scenario      string
	ProjectRoot   string
	Screenshots   string
	Database      string
	Record        string
	Scope         string
	WindowTimeout time.Duration
	NoBuild       bool
	Driver        string

	// NewDeps allows overriding the run collaborators (for testing).
	// If nil, defaults to harness.NewDeps.
	NewDeps func(harness.DepsOptions) (harness.Deps, error)
}

// RunSummary is the JSON payload of a finished run.
type RunSummary struct {
	RunID         string   `json:"run_id"`
	Scenario      string   `json:"scenario"`
	Replay        string   `json:"replay"`
	Pass          bool     `json:"pass"`
	ExitCode      int      `json:"exit_code"`
	DurationMS    int64    `json:"duration_ms"`
	Steps         int      `json:"steps"`
	Screenshots   []string `json:"screenshots"`
	ScreenshotDir string   `json:"screenshot_dir"`
	Video         string   `json:"video,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [path/to/replay]",
		Short: "Build, launch and drive the application under test",
		Long: `Run a GUI test: build the solution, launch the app, find its window,
drive the scripted interactions and capture a screenshot after each step.

The replay path defaults to the scenario's defaults.input. Screenshots are
written to the scenario's capture directory, which is emptied of PNGs
first. The app is always terminated before the command returns.

Example:
  uiharness run
  uiharness run ~/replays/match.replay --record off
  uiharness run --scenario ./ui.yaml --project-root ~/src/BotOrNot --db runs.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			replay := ""
			if len(args) == 1 {
				replay = args[0]
			}
			return runUITest(opts, replay, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "scenario file (default: embedded "+scenario.BuiltinName+" scenario)")
	cmd.Flags().StringVar(&opts.ProjectRoot, "project-root", "", "project root for ${project_root} and relative paths (default: working directory)")
	cmd.Flags().StringVar(&opts.Screenshots, "screenshots", "", "screenshot directory (overrides capture.dir)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.Record, "record", "", "video mode (off|live|stitch|auto)")
	cmd.Flags().StringVar(&opts.Scope, "scope", "", "window scope (onscreen|all)")
	cmd.Flags().DurationVar(&opts.WindowTimeout, "window-timeout", 0, "how long to wait for the app window")
	cmd.Flags().BoolVar(&opts.NoBuild, "no-build", false, "skip the build step")
	cmd.Flags().StringVar(&opts.Driver, "driver", "", "input driver (auto|xdotool|cliclick|record)")

	return cmd
}

func runUITest(opts *RunOptions, replay string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	out := cmd.OutOrStdout()
	formatter := newFormatter(opts.RootOptions, out, cmd.ErrOrStderr())

	stepLog := stepWriter(opts.RootOptions, cmd)

	sc, err := loadScenario(opts.Scenario)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load scenario", err)
	}
	if err := applyOverrides(sc, opts); err != nil {
		return WrapExitError(ExitFailure, "invalid option", err)
	}

	resolved, vars, err := sc.Resolve(scenario.Vars{
		ProjectRoot: opts.ProjectRoot,
		Replay:      replay,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to resolve scenario", err)
	}
	logger.Debug("scenario resolved",
		"scenario", resolved.Name,
		"project_root", vars.ProjectRoot,
		"replay", vars.Replay,
		"screenshots", resolved.Capture.Dir)

	info, err := os.Stat(vars.Replay)
	if err != nil {
		fmt.Fprintf(stepLog, "ERROR: Replay file not found: %s\n", vars.Replay)
		return WrapExitError(ExitFailure, "replay file not found", err)
	}
	if info.IsDir() {
		fmt.Fprintf(stepLog, "ERROR: Replay path is a directory: %s\n", vars.Replay)
		return NewExitError(ExitFailure, "replay path is a directory: "+vars.Replay)
	}

	newDeps := opts.NewDeps
	if newDeps == nil {
		newDeps = harness.NewDeps
	}
	deps, err := newDeps(harness.DepsOptions{
		Driver: resolved.Input.Driver,
		Stdout: stepLog,
		Logger: logger,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to set up harness", err)
	}

	ctx, stop := signalContext(cmd.Context(), logger)
	defer stop()

	res := harness.Run(ctx, deps, resolved, harness.Options{
		Vars:    vars,
		NoBuild: opts.NoBuild,
	})

	if opts.Database != "" {
		saveHistory(ctx, opts.Database, res, logger)
	}

	if opts.Format == "json" {
		if err := formatter.Run(res.RunID, summarize(res)); err != nil {
			return err
		}
	}

	if !res.Pass {
		msg := "ui test failed"
		if len(res.Errors) > 0 {
			msg = fmt.Sprintf("ui test failed: %s", res.Errors[0])
		}
		return NewExitError(ExitFailure, msg)
	}
	return nil
}

// loadScenario returns the scenario at path, or the embedded one.
func loadScenario(path string) (*scenario.Scenario, error) {
	if path == "" {
		return scenario.Builtin()
	}
	return scenario.Load(path)
}

// applyOverrides copies command-line settings onto sc and revalidates it.
func applyOverrides(sc *scenario.Scenario, opts *RunOptions) error {
	if opts.Screenshots != "" {
		// Command-line paths are relative to the working directory.
		dir, err := filepath.Abs(opts.Screenshots)
		if err != nil {
			return fmt.Errorf("resolve screenshot directory: %w", err)
		}
		sc.Capture.Dir = dir
	}
	if opts.Record != "" {
		sc.Record.Mode = strings.ToLower(opts.Record)
	}
	if opts.Scope != "" {
		scope, err := window.ParseScope(opts.Scope)
		if err != nil {
			return err
		}
		sc.Window.Scope = string(scope)
	}
	if opts.WindowTimeout < 0 {
		return fmt.Errorf("invalid window timeout %s: must be positive", opts.WindowTimeout)
	}
	if opts.WindowTimeout > 0 {
		sc.Window.Timeout = scenario.Duration(opts.WindowTimeout)
	}
	if opts.Driver != "" {
		sc.Input.Driver = opts.Driver
	}

	if err := sc.Validate(); err != nil {
		return err
	}
	return scenario.CheckSchema(sc)
}

func saveHistory(ctx context.Context, path string, res *harness.Result, logger *slog.Logger) {
	st, err := store.Open(path)
	if err != nil {
		logger.Error("failed to open history database", "path", path, "error", err)
		return
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	// The run may have been interrupted; history is still written.
	if err := harness.Save(context.WithoutCancel(ctx), st, res); err != nil {
		logger.Error("failed to save run", "run_id", res.RunID, "error", err)
		return
	}
	logger.Debug("run saved", "run_id", res.RunID, "db", path)
}

func summarize(res *harness.Result) RunSummary {
	return RunSummary{
		RunID:         res.RunID,
		Scenario:      res.Scenario,
		Replay:        res.Replay,
		Pass:          res.Pass,
		ExitCode:      res.ExitCode,
		DurationMS:    res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
		Steps:         len(res.Steps),
		Screenshots:   res.ScreenshotLabels(),
		ScreenshotDir: res.ScreenshotDir,
		Video:         res.Video,
		Errors:        res.Errors,
	}
}

// stepWriter is where the run step log goes. It would corrupt JSON
// output on stdout.
func stepWriter(opts *RootOptions, cmd *cobra.Command) io.Writer {
	if opts.Format == "json" {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
