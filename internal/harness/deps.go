package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/roach88/uiharness/internal/capture"
	"github.com/roach88/uiharness/internal/input"
	"github.com/roach88/uiharness/internal/proc"
	"github.com/roach88/uiharness/internal/window"
)

// Process is the launched application.
type Process interface {
	Pid() int
	Alive() bool

	// ExitCode is -1 while running or after a kill by signal.
	ExitCode() int

	// Terminate sends SIGTERM to the process group and SIGKILL after grace.
	Terminate(grace time.Duration) error
}

// Recording is a live screen recording.
type Recording interface {
	Pid() int
	Output() string
	Stop() error
}

// Shooter writes one screenshot. windowID zero captures the screen.
type Shooter interface {
	Capture(ctx context.Context, path string, windowID int) error
}

// BuildFunc runs the build command to completion.
type BuildFunc func(ctx context.Context, c proc.Command, timeout time.Duration) (*proc.BuildResult, error)

// LaunchFunc starts the application without waiting for it.
type LaunchFunc func(c proc.Command) (Process, error)

// RecordFunc starts a live screen recording.
type RecordFunc func(opts capture.RecorderOptions) (Recording, error)

// StitchFunc turns the screenshots in dir into a video at out.
type StitchFunc func(ctx context.Context, dir, out string, opts capture.StitchOptions) (*capture.StitchResult, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Deps are the collaborators of a run.
type Deps struct {
	Build   BuildFunc
	Launch  LaunchFunc
	Lister  window.Lister
	Driver  input.Driver
	Focuser input.Focuser
	Shooter Shooter
	Record  RecordFunc
	Stitch  StitchFunc
	Sleep   SleepFunc
	Now     func() time.Time
	IDs     RunIDGenerator

	// Stdout receives the step log. Nil discards it.
	Stdout io.Writer
	Logger *slog.Logger
}

// DepsOptions selects the real collaborators.
type DepsOptions struct {
	// Driver is an input driver name registered with the input package.
	Driver string
	Stdout io.Writer
	Logger *slog.Logger
}

// NewDeps wires the real collaborators for the running OS.
func NewDeps(opts DepsOptions) (Deps, error) {
	lister, err := window.NewLister()
	if err != nil {
		return Deps{}, err
	}
	focuser, err := input.NewFocuser()
	if err != nil {
		return Deps{}, err
	}
	name := opts.Driver
	if name == "" {
		name = input.DriverAuto
	}
	driver, err := input.Open(name)
	if err != nil {
		return Deps{}, err
	}

	logger := opts.Logger
	return Deps{
		Build: proc.Build,
		Launch: func(c proc.Command) (Process, error) {
			child, err := proc.Start(c, proc.StartOptions{Logger: logger})
			if err != nil {
				return nil, err
			}
			return childProcess{child}, nil
		},
		Lister:  lister,
		Driver:  driver,
		Focuser: focuser,
		Shooter: &capture.Shooter{},
		Record: func(o capture.RecorderOptions) (Recording, error) {
			rec, err := capture.StartRecording(o)
			if err != nil {
				return nil, err
			}
			return rec, nil
		},
		Stitch: capture.Stitch,
		Sleep:  Sleep,
		Now:    time.Now,
		IDs:    UUIDv7Generator{},
		Stdout: opts.Stdout,
		Logger: logger,
	}, nil
}

// withDefaults rejects missing collaborators and fills in the optional ones.
func (d Deps) withDefaults() (Deps, error) {
	switch {
	case d.Build == nil:
		return d, fmt.Errorf("harness: Build is required")
	case d.Launch == nil:
		return d, fmt.Errorf("harness: Launch is required")
	case d.Lister == nil:
		return d, fmt.Errorf("harness: Lister is required")
	case d.Driver == nil:
		return d, fmt.Errorf("harness: Driver is required")
	case d.Focuser == nil:
		return d, fmt.Errorf("harness: Focuser is required")
	case d.Shooter == nil:
		return d, fmt.Errorf("harness: Shooter is required")
	}
	if d.Record == nil {
		d.Record = func(capture.RecorderOptions) (Recording, error) {
			return nil, fmt.Errorf("%w: no recorder configured", capture.ErrToolUnavailable)
		}
	}
	if d.Stitch == nil {
		d.Stitch = capture.Stitch
	}
	if d.Sleep == nil {
		d.Sleep = Sleep
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.IDs == nil {
		d.IDs = UUIDv7Generator{}
	}
	if d.Stdout == nil {
		d.Stdout = io.Discard
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d, nil
}

// Sleep waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type childProcess struct {
	*proc.Child
}

func (c childProcess) Terminate(grace time.Duration) error {
	return c.Stop(syscall.SIGTERM, grace)
}

// fileSize returns the size of path, or -1 when it cannot be read.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}
