package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// pipeWaitDelay bounds how long a wait lingers on output pipes after the
// process has exited or been killed. Grandchildren can hold them open.
var pipeWaitDelay = 2 * time.Second

// Runner executes a short-lived command and returns its stdout.
//
// Packages that shell out to OS tools take a Runner so tests can
// substitute canned output.
type Runner func(ctx context.Context, c Command) ([]byte, error)

// Run is the default Runner. A non-zero exit is reported together with
// the tail of stderr.
func Run(ctx context.Context, c Command) ([]byte, error) {
	cmd := c.exec()
	var stdout bytes.Buffer
	stderr := NewTailBuffer(DefaultTailBytes)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = pipeWaitDelay

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s: %w", c.Path, err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return stdout.Bytes(), fmt.Errorf("%s: %w", c.Path, ctx.Err())
	}

	// The tool exited cleanly; a descendant kept the pipes open.
	if errors.Is(err, exec.ErrWaitDelay) {
		err = nil
	}

	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w: %s", c.Path, err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", c.Path, err)
	}
	return stdout.Bytes(), nil
}

// Available reports whether name resolves to an executable.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
