package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/uiharness/internal/capture"
	"github.com/roach88/uiharness/internal/harness"
	"github.com/roach88/uiharness/internal/input"
	"github.com/roach88/uiharness/internal/proc"
	"github.com/roach88/uiharness/internal/testutil"
	"github.com/roach88/uiharness/internal/window"
)

var errInjected = errors.New("injected failure")

var appWindow = window.Descriptor{
	ID: 7, PID: 4242, Owner: "dotnet", Title: "BotOrNot",
	X: 40, Y: 60, Width: 1200, Height: 800,
}

type fakeApp struct {
	mu    sync.Mutex
	alive bool
}

func (a *fakeApp) Pid() int { return 4242 }

func (a *fakeApp) ExitCode() int { return -1 }

func (a *fakeApp) Alive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alive
}

func (a *fakeApp) Terminate(time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alive = false
	return nil
}

type nopFocuser struct{}

func (nopFocuser) Focus(context.Context, input.Target) error { return nil }
func (nopFocuser) Raise(context.Context, input.Target) error { return nil }

type fileShooter struct{}

func (fileShooter) Capture(_ context.Context, path string, _ int) error {
	return os.WriteFile(path, []byte("png"), 0o644)
}

// runFixture is a project root with a replay file and fakes for every
// collaborator of a run.
type runFixture struct {
	root    string
	replay  string
	app     *fakeApp
	driver  *input.Recorder
	buildOK bool
	deps    harness.Deps
}

func newRunFixture(t *testing.T) *runFixture {
	t.Helper()

	root := t.TempDir()
	replay := filepath.Join(root, "match.replay")
	require.NoError(t, os.WriteFile(replay, []byte("replay"), 0o644))

	f := &runFixture{
		root:    root,
		replay:  replay,
		app:     &fakeApp{alive: true},
		driver:  &input.Recorder{},
		buildOK: true,
	}
	f.deps = harness.Deps{
		Build: func(context.Context, proc.Command, time.Duration) (*proc.BuildResult, error) {
			if !f.buildOK {
				return &proc.BuildResult{ExitCode: 1, Stderr: "error CS1002"}, proc.ErrBuildFailed
			}
			return &proc.BuildResult{}, nil
		},
		Launch: func(proc.Command) (harness.Process, error) {
			return f.app, nil
		},
		Lister: window.ListerFunc(func(context.Context, window.Scope) ([]window.Descriptor, error) {
			return []window.Descriptor{appWindow}, nil
		}),
		Driver:  f.driver,
		Focuser: nopFocuser{},
		Shooter: fileShooter{},
		Stitch: func(context.Context, string, string, capture.StitchOptions) (*capture.StitchResult, error) {
			return nil, capture.ErrToolUnavailable
		},
		Sleep: func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
		Now:   testutil.NewDeterministicClock().Now,
		IDs:   testutil.NewFixedRunIDGenerator("run-cli"),
	}
	return f
}

// newDeps returns a RunOptions.NewDeps hook that hands out the fakes.
func (f *runFixture) newDeps(opts harness.DepsOptions) (harness.Deps, error) {
	d := f.deps
	d.Stdout = opts.Stdout
	d.Logger = opts.Logger
	return d, nil
}
