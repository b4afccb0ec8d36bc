package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/uiharness/internal/capture"
	"github.com/roach88/uiharness/internal/input"
	"github.com/roach88/uiharness/internal/proc"
	"github.com/roach88/uiharness/internal/scenario"
	"github.com/roach88/uiharness/internal/testutil"
	"github.com/roach88/uiharness/internal/window"
)

type fakeProcess struct {
	mu         sync.Mutex
	pid        int
	alive      bool
	exitCode   int
	terminated int
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.alive {
		return -1
	}
	return p.exitCode
}

func (p *fakeProcess) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

func (p *fakeProcess) Terminate(time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive = false
	p.terminated++
	return nil
}

type fakeLister struct {
	mu      sync.Mutex
	windows []window.Descriptor
	err     error
	calls   int
}

func (l *fakeLister) List(ctx context.Context, _ window.Scope) ([]window.Descriptor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.windows, l.err
}

type fakeFocuser struct {
	focus, raise int
	err          error
}

func (f *fakeFocuser) Focus(context.Context, input.Target) error {
	f.focus++
	return f.err
}

func (f *fakeFocuser) Raise(context.Context, input.Target) error {
	f.raise++
	return f.err
}

// fakeShooter writes a small file for every capture unless the label's
// path is listed in skip.
type fakeShooter struct {
	skip  func(path string) bool
	paths []string
}

func (s *fakeShooter) Capture(_ context.Context, path string, _ int) error {
	s.paths = append(s.paths, path)
	if s.skip != nil && s.skip(path) {
		return capture.ErrNotSaved
	}
	return os.WriteFile(path, []byte("png"), 0o644)
}

type fakeSleeper struct {
	mu    sync.Mutex
	slept []time.Duration

	// hook runs before each sleep returns.
	hook func(d time.Duration)
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.slept = append(s.slept, d)
	s.mu.Unlock()
	if s.hook != nil {
		s.hook(d)
	}
	return ctx.Err()
}

type fakeRecording struct {
	output  string
	stopped int
	err     error
}

func (r *fakeRecording) Pid() int { return 5151 }

func (r *fakeRecording) Output() string { return r.output }

func (r *fakeRecording) Stop() error {
	r.stopped++
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(r.output, []byte("mp4 data"), 0o644)
}

type fixture struct {
	sc       *scenario.Scenario
	vars     scenario.Vars
	deps     Deps
	app      *fakeProcess
	lister   *fakeLister
	driver   *input.Recorder
	focuser  *fakeFocuser
	shooter  *fakeShooter
	sleeper  *fakeSleeper
	builds   []proc.Command
	launches []proc.Command
	stdout   *safeBuffer
}

type safeBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

var appWindow = window.Descriptor{
	ID: 7, PID: 4242, Owner: "dotnet", Title: "BotOrNot",
	X: 40, Y: 60, Width: 1200, Height: 800,
}

// newFixture resolves the built-in scenario against a temp project root
// and wires fakes that succeed.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	sc, err := scenario.Builtin()
	require.NoError(t, err)
	resolved, vars, err := sc.Resolve(scenario.Vars{
		ProjectRoot: t.TempDir(),
		Home:        "/home/test",
		Replay:      "/replays/match.replay",
	})
	require.NoError(t, err)

	f := &fixture{
		sc:      resolved,
		vars:    vars,
		app:     &fakeProcess{pid: 4242, alive: true},
		lister:  &fakeLister{windows: []window.Descriptor{{Owner: "Dock", Layer: 20, Width: 1920, Height: 80}, appWindow}},
		driver:  &input.Recorder{},
		focuser: &fakeFocuser{},
		shooter: &fakeShooter{},
		sleeper: &fakeSleeper{},
		stdout:  &safeBuffer{},
	}
	f.deps = Deps{
		Build: func(_ context.Context, c proc.Command, _ time.Duration) (*proc.BuildResult, error) {
			f.builds = append(f.builds, c)
			return &proc.BuildResult{}, nil
		},
		Launch: func(c proc.Command) (Process, error) {
			f.launches = append(f.launches, c)
			return f.app, nil
		},
		Lister:  f.lister,
		Driver:  f.driver,
		Focuser: f.focuser,
		Shooter: f.shooter,
		Record: func(capture.RecorderOptions) (Recording, error) {
			return nil, fmt.Errorf("%w: ffmpeg not found", capture.ErrToolUnavailable)
		},
		Stitch: func(_ context.Context, dir, out string, _ capture.StitchOptions) (*capture.StitchResult, error) {
			pngs, err := capture.ListPNGs(dir)
			if err != nil {
				return nil, err
			}
			if len(pngs) < 2 {
				return nil, capture.ErrNotEnoughFrames
			}
			return &capture.StitchResult{Output: out, Frames: len(pngs), Bytes: 2048}, nil
		},
		Sleep:  f.sleeper.Sleep,
		Now:    testutil.NewDeterministicClock().Now,
		IDs:    testutil.NewFixedRunIDGenerator("run-fixture"),
		Stdout: f.stdout,
	}
	return f
}

func (f *fixture) run(ctx context.Context) *Result {
	return Run(ctx, f.deps, f.sc, Options{Vars: f.vars})
}

var errInjected = errors.New("injected")
