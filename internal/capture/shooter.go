package capture

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/roach88/uiharness/internal/proc"
)

// DefaultShotTimeout bounds one screenshot invocation.
const DefaultShotTimeout = 10 * time.Second

// Shooter takes full-screen or single-window screenshots with the
// platform tool: screencapture on macOS, ImageMagick import on X11.
type Shooter struct {
	// GOOS selects the tool. Empty means runtime.GOOS.
	GOOS string

	// Tool overrides the executable.
	Tool string

	// Timeout bounds each capture. Zero means DefaultShotTimeout.
	Timeout time.Duration

	Runner   proc.Runner
	LookPath LookPathFunc
}

// Command returns the capture invocation for path. A windowID of zero
// captures the whole screen.
func (s *Shooter) Command(path string, windowID int) (proc.Command, error) {
	goos := s.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	switch goos {
	case "darwin":
		tool, err := s.tool("/usr/sbin/screencapture")
		if err != nil {
			return proc.Command{}, err
		}
		args := []string{"-x"}
		if windowID != 0 {
			args = append(args, "-l"+strconv.Itoa(windowID))
		}
		return proc.Command{Path: tool, Args: append(args, path)}, nil

	case "linux":
		tool, err := s.tool("import")
		if err != nil {
			return proc.Command{}, err
		}
		target := "root"
		if windowID != 0 {
			target = fmt.Sprintf("0x%08x", windowID)
		}
		return proc.Command{Path: tool, Args: []string{"-window", target, path}}, nil

	default:
		return proc.Command{}, fmt.Errorf("%w: no screenshot tool for %s", ErrToolUnavailable, goos)
	}
}

func (s *Shooter) tool(def string) (string, error) {
	name := s.Tool
	if name == "" {
		name = def
	}
	return resolve(s.LookPath, name)
}

// Capture writes a PNG to path and verifies it exists.
func (s *Shooter) Capture(ctx context.Context, path string, windowID int) error {
	c, err := s.Command(path, windowID)
	if err != nil {
		return err
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultShotTimeout
	}
	runner := s.Runner
	if runner == nil {
		runner = proc.Run
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := runner(ctx, c); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrNotSaved, path)
	}
	return nil
}
