package proc

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

var (
	// ErrBuildFailed is returned when the build exits non-zero or cannot start.
	ErrBuildFailed = errors.New("build failed")

	// ErrBuildTimeout is returned when the build exceeds its timeout.
	ErrBuildTimeout = errors.New("build timed out")
)

// BuildResult captures the outcome of a build invocation.
type BuildResult struct {
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout,omitempty"` // last DefaultTailBytes
	Stderr   string        `json:"stderr,omitempty"` // last DefaultTailBytes
	Duration time.Duration `json:"duration"`
}

// Build runs c to completion, bounded by timeout (zero means no bound).
//
// The result is returned even on failure so callers can report the output
// tail. On timeout the whole process group is killed. Cancellation of ctx
// itself is reported as ctx.Err(), not as a build failure.
func Build(ctx context.Context, c Command, timeout time.Duration) (*BuildResult, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := c.exec()
	configureGroup(cmd)
	stdout := NewTailBuffer(DefaultTailBytes)
	stderr := NewTailBuffer(DefaultTailBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = pipeWaitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return &BuildResult{ExitCode: -1, Duration: time.Since(start)},
			fmt.Errorf("%w: %s: %v", ErrBuildFailed, c.Path, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-runCtx.Done():
		_ = signalGroup(cmd.Process.Pid, syscall.SIGKILL)
		err = <-done
	}

	res := &BuildResult{
		ExitCode: exitCode(cmd),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%w after %s", ErrBuildTimeout, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, fmt.Errorf("%w: exit code %d", ErrBuildFailed, res.ExitCode)
		}
		return res, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	return res, nil
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
