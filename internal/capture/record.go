package capture

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/roach88/uiharness/internal/proc"
)

// Recorder defaults.
const (
	DefaultFramerate  = 30
	DefaultStopGrace  = 5 * time.Second
	defaultMacDevice  = "1"
	defaultX11Display = ":0.0"
)

// RecorderOptions configures a live ffmpeg screen recording.
type RecorderOptions struct {
	// GOOS selects the input format. Empty means runtime.GOOS.
	GOOS string

	// FFmpeg overrides the executable name.
	FFmpeg string

	// Device is the avfoundation screen index on macOS or the X11
	// display on Linux. Empty picks "1" or $DISPLAY.
	Device string

	Framerate int
	Output    string
	Logger    *slog.Logger
	LookPath  LookPathFunc
}

// Recording is a running screen recorder.
type Recording struct {
	child  *proc.Child
	output string
	grace  time.Duration
}

// RecorderCommand returns the ffmpeg invocation for opts.
func RecorderCommand(opts RecorderOptions) (proc.Command, error) {
	if opts.Output == "" {
		return proc.Command{}, fmt.Errorf("recording output path is required")
	}
	name := opts.FFmpeg
	if name == "" {
		name = "ffmpeg"
	}
	tool, err := resolve(opts.LookPath, name)
	if err != nil {
		return proc.Command{}, err
	}

	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	rate := opts.Framerate
	if rate <= 0 {
		rate = DefaultFramerate
	}

	args := []string{"-y"}
	switch goos {
	case "darwin":
		device := opts.Device
		if device == "" {
			device = defaultMacDevice
		}
		args = append(args, "-f", "avfoundation", "-capture_cursor", "1",
			"-framerate", strconv.Itoa(rate), "-i", device+":none")
	case "linux":
		device := opts.Device
		if device == "" {
			device = os.Getenv("DISPLAY")
		}
		if device == "" {
			device = defaultX11Display
		}
		args = append(args, "-f", "x11grab", "-framerate", strconv.Itoa(rate), "-i", device)
	default:
		return proc.Command{}, fmt.Errorf("%w: no screen recorder input for %s", ErrToolUnavailable, goos)
	}
	args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p", opts.Output)

	return proc.Command{Path: tool, Args: args}, nil
}

// StartRecording launches the recorder in its own process group.
func StartRecording(opts RecorderOptions) (*Recording, error) {
	c, err := RecorderCommand(opts)
	if err != nil {
		return nil, err
	}
	child, err := proc.Start(c, proc.StartOptions{Logger: opts.Logger})
	if err != nil {
		return nil, fmt.Errorf("start recorder: %w", err)
	}
	return &Recording{child: child, output: opts.Output, grace: DefaultStopGrace}, nil
}

// Output returns the video path.
func (r *Recording) Output() string {
	return r.output
}

// Pid returns the recorder's process id.
func (r *Recording) Pid() int {
	return r.child.Pid()
}

// Stop interrupts ffmpeg so it finalises the container, killing it after
// the grace period. It reports an error when no video was written.
func (r *Recording) Stop() error {
	if err := r.child.Stop(syscall.SIGINT, r.grace); err != nil {
		return fmt.Errorf("stop recorder: %w", err)
	}
	info, err := os.Stat(r.output)
	if err != nil || info.Size() == 0 {
		_, stderr := r.child.Output()
		return fmt.Errorf("recording not finalised: %s: %s", r.output, stderr)
	}
	return nil
}
