package proc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// killWait bounds how long Stop waits after SIGKILL.
const killWait = 2 * time.Second

// Child is a detached process started in its own process group.
//
// A waiter goroutine reaps the process as soon as it exits, so the handle
// never leaves a zombie behind.
type Child struct {
	cmd    *exec.Cmd
	pid    int
	stdout *TailBuffer
	stderr *TailBuffer
	logger *slog.Logger

	done     chan struct{}
	mu       sync.Mutex
	exitCode int
	ended    time.Time
}

// StartOptions configures Start.
type StartOptions struct {
	// Logger receives lifecycle events. Nil discards them.
	Logger *slog.Logger
}

// Start launches c detached from the caller's process group and returns
// immediately.
func Start(c Command, opts StartOptions) (*Child, error) {
	if c.Path == "" {
		return nil, errors.New("command is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cmd := c.exec()
	configureGroup(cmd)
	stdout := NewTailBuffer(DefaultTailBytes)
	stderr := NewTailBuffer(DefaultTailBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", c.Path, err)
	}

	ch := &Child{
		cmd:      cmd,
		pid:      cmd.Process.Pid,
		stdout:   stdout,
		stderr:   stderr,
		logger:   logger.With("pid", cmd.Process.Pid),
		done:     make(chan struct{}),
		exitCode: -1,
	}
	ch.logger.Debug("process started", "command", c.String())

	go ch.reap()

	return ch, nil
}

func (c *Child) reap() {
	err := c.cmd.Wait()

	c.mu.Lock()
	c.exitCode = exitCode(c.cmd)
	c.ended = time.Now()
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("process finished", "error", err)
	} else {
		c.logger.Debug("process finished without error")
	}
	close(c.done)
}

// Pid returns the process id.
func (c *Child) Pid() int {
	return c.pid
}

// Done is closed once the process has exited and been reaped.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// Alive reports whether the process, or anything left in its process
// group, is still running. A leader that exits early can leave members
// behind.
func (c *Child) Alive() bool {
	if c.leaderAlive() {
		return true
	}
	return len(groupMembers(c.pid)) > 0
}

func (c *Child) leaderAlive() bool {
	select {
	case <-c.done:
		return false
	default:
	}
	return IsRunning(c.pid)
}

// ExitCode returns the exit code, or -1 while running or when killed by a signal.
func (c *Child) ExitCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitCode
}

// Output returns the retained tail of stdout and stderr.
func (c *Child) Output() (stdout, stderr string) {
	return c.stdout.String(), c.stderr.String()
}

// Stop terminates the process group: sig first, SIGKILL after grace.
//
// The group is signalled even after the leader has exited. Descendants
// and group members are snapshotted before signalling and any survivor
// is killed afterwards, covering children that moved to another group.
// Stop is idempotent.
func (c *Child) Stop(sig syscall.Signal, grace time.Duration) error {
	if !c.Alive() {
		return nil
	}

	survivors := append(descendants(c.pid), groupMembers(c.pid)...)

	c.logger.Debug("stopping process", "signal", sig, "grace", grace,
		"leader_exited", !c.leaderAlive())
	if err := signalGroup(c.pid, sig); err != nil {
		c.logger.Debug("signal failed", "signal", sig, "error", err)
	}

	if !c.settle(grace) {
		c.logger.Warn("process ignored signal, killing", "signal", sig)
		if err := signalGroup(c.pid, syscall.SIGKILL); err != nil {
			c.logger.Debug("kill failed", "error", err)
		}
		if !c.settle(killWait) {
			killAll(survivors, c.logger)
			return fmt.Errorf("process group %d still running after SIGKILL", c.pid)
		}
	}

	killAll(survivors, c.logger)
	return nil
}

// settlePoll is how often settle rechecks group liveness.
const settlePoll = 50 * time.Millisecond

// settle waits up to d for the leader and its group to be gone.
func (c *Child) settle(d time.Duration) bool {
	deadline := time.NewTimer(d)
	defer deadline.Stop()
	tick := time.NewTicker(settlePoll)
	defer tick.Stop()
	done := c.done
	for {
		if !c.Alive() {
			return true
		}
		select {
		case <-deadline.C:
			return !c.Alive()
		case <-done:
			done = nil
		case <-tick.C:
		}
	}
}
