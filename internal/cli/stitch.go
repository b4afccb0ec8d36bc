package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/uiharness/internal/capture"
	"github.com/roach88/uiharness/internal/proc"
)

// StitchOptions holds flags for the stitch command.
type StitchOptions struct {
	*RootOptions
	Output        string
	FrameDuration time.Duration
	FFmpeg        string

	// Runner and LookPath allow overriding ffmpeg execution (for testing).
	Runner   proc.Runner
	LookPath capture.LookPathFunc
}

// NewStitchCommand creates the stitch command.
func NewStitchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StitchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stitch <screenshot-dir>",
		Short: "Turn a directory of screenshots into a video",
		Long: `Stitch the PNG screenshots in a directory, in name order, into an MP4.

This is the video step of a run on its own, useful after a run with
--record off or when ffmpeg was installed afterwards.

Example:
  uiharness stitch UITests/screenshots -o UITests/test_run.mp4
  uiharness stitch ./shots --frame-duration 3s`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStitch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output video (default: test_run.mp4 next to the directory)")
	cmd.Flags().DurationVar(&opts.FrameDuration, "frame-duration", capture.DefaultFrameDuration, "how long each screenshot is shown")
	cmd.Flags().StringVar(&opts.FFmpeg, "ffmpeg", "", "ffmpeg executable (default: ffmpeg on PATH)")

	return cmd
}

func runStitch(opts *StitchOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	info, err := os.Stat(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "screenshot directory not found", err)
	}
	if !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("not a directory: %s", dir))
	}
	if opts.FrameDuration <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid frame duration %s: must be positive", opts.FrameDuration))
	}

	out := opts.Output
	if out == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to resolve screenshot directory", err)
		}
		out = filepath.Join(filepath.Dir(abs), "test_run.mp4")
	}

	formatter.VerboseLog("Stitching %s -> %s", dir, out)
	res, err := capture.Stitch(cmd.Context(), dir, out, capture.StitchOptions{
		FFmpeg:        opts.FFmpeg,
		FrameDuration: opts.FrameDuration,
		Runner:        opts.Runner,
		LookPath:      opts.LookPath,
	})
	switch {
	case errors.Is(err, capture.ErrToolUnavailable):
		return WrapExitError(ExitFailure, "ffmpeg not found", err)
	case errors.Is(err, capture.ErrNotEnoughFrames):
		return WrapExitError(ExitFailure, "not enough screenshots", err)
	case err != nil:
		return WrapExitError(ExitFailure, "video generation failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Video saved: %s (%d frames, %d bytes)\n", res.Output, res.Frames, res.Bytes)
	return nil
}
