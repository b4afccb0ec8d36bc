package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/roach88/uiharness/internal/capture"
	"github.com/roach88/uiharness/internal/input"
	"github.com/roach88/uiharness/internal/proc"
	"github.com/roach88/uiharness/internal/scenario"
	"github.com/roach88/uiharness/internal/window"
)

const bannerRule = "============================================================"

// Options adjusts a single run.
type Options struct {
	// Vars are the resolved variables, shown in the run header.
	Vars scenario.Vars

	// NoBuild skips the build step. The step is still numbered.
	NoBuild bool
}

// run is the state of one Run call.
//
// Stages run strictly in order on the calling goroutine, so none of the
// fields need locking. The step counter advances at each banner and is
// never reset; screenshots and trace events reference its current value.
type run struct {
	deps   Deps
	sc     *scenario.Scenario
	opts   Options
	out    io.Writer
	logger *slog.Logger

	result *Result
	steps  StepCounter
	seq    int
	namer  *capture.Namer

	matcher   *window.Matcher
	scope     window.Scope
	app       Process
	win       window.Descriptor
	recording Recording
	mode      string

	// appStopped is set once the app's process group has been terminated.
	appStopped bool
}

// Run executes sc, which must already be loaded and resolved.
//
// The stages are: purge the screenshot directory, build, launch, wait for
// the window, normalise it, start recording, play the script, capture the
// final state, produce the video and shut the app down. The first fatal
// error stops the sequence; cleanup then stops the recorder and the app
// whatever happened, and assertions are checked only on a passing run.
//
// Run never returns a nil Result. An invalid Deps is reported as a failed
// result without any step being run.
func Run(ctx context.Context, deps Deps, sc *scenario.Scenario, opts Options) *Result {
	deps, err := deps.withDefaults()
	if err != nil {
		res := NewResult("", sc.Name, deps.nowOrZero())
		res.AddError(err.Error())
		return res
	}

	r := &run{
		deps:   deps,
		sc:     sc,
		opts:   opts,
		out:    deps.Stdout,
		logger: deps.Logger.With("scenario", sc.Name),
		result: NewResult(deps.IDs.Generate(), sc.Name, deps.Now()),
		namer:  capture.NewNamer(sc.Capture.Dir, deps.Now),
		mode:   sc.Record.Mode,
	}
	r.result.Replay = opts.Vars.Replay
	r.result.ScreenshotDir = sc.Capture.Dir
	r.logger = r.logger.With("run_id", r.result.RunID)

	r.header()
	if err := r.execute(ctx); err != nil {
		r.fail(ctx, err)
	}
	r.cleanup()
	if r.result.Pass {
		r.check()
	}
	r.result.FinishedAt = r.deps.Now()
	r.logger.Info("run finished", "pass", r.result.Pass, "exit_code", r.result.ExitCode)
	return r.result
}

func (d Deps) nowOrZero() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Time{}
}

// header prints the run banner before any step.
func (r *run) header() {
	fmt.Fprintf(r.out, "%s GUI Test Harness\n", r.sc.App.Name)
	fmt.Fprintf(r.out, "  Run    : %s\n", r.result.RunID)
	fmt.Fprintf(r.out, "  Replay : %s\n", r.opts.Vars.Replay)
	fmt.Fprintf(r.out, "  Project: %s\n", r.opts.Vars.ProjectRoot)
	fmt.Fprintf(r.out, "  Screenshots: %s\n", r.sc.Capture.Dir)
}

// execute runs every stage in order. A panic is returned as *PanicError.
func (r *run) execute(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()

	if err := capture.Purge(r.sc.Capture.Dir); err != nil {
		return &StageError{Stage: StagePrepare, Err: err}
	}
	if err := r.build(ctx); err != nil {
		return err
	}
	if err := r.launch(); err != nil {
		return err
	}
	if err := r.locate(ctx); err != nil {
		return err
	}
	if err := r.normalize(ctx); err != nil {
		return err
	}
	r.startRecording()

	for _, st := range r.sc.Script {
		r.beginStep(st.Title)
		for _, a := range st.Actions {
			if err := r.do(ctx, a); err != nil {
				return &StageError{Stage: StageInteract, Step: r.steps.Current(), Err: err}
			}
		}
	}

	r.beginStep("Capturing final state")
	if err := r.focus(ctx); err != nil {
		return &StageError{Stage: StageInteract, Step: r.steps.Current(), Err: err}
	}
	r.screenshot(ctx, "final_state")

	if err := r.video(ctx); err != nil {
		return &StageError{Stage: StageVideo, Step: r.steps.Current(), Err: err}
	}

	r.shutdown()
	fmt.Fprintf(r.out, "\nAll steps complete. Screenshots in: %s\n", r.namer.Dir())
	return nil
}

// fail records err and prints what the stage itself did not.
func (r *run) fail(ctx context.Context, err error) {
	r.result.AddError(err.Error())

	var pe *PanicError
	switch {
	case errors.As(err, &pe):
		fmt.Fprintf(r.out, "\nFATAL: %v\n%s", pe.Value, pe.Stack)
		r.trace(KindFatal, "", err)
		r.screenshot(context.WithoutCancel(ctx), "fatal_error")
	case ctx.Err() != nil:
		fmt.Fprintf(r.out, "\nInterrupted: %v\n", context.Cause(ctx))
		r.trace(KindFatal, "interrupted", ctx.Err())
	case IsStage(err, StageInteract), IsStage(err, StageNormalize), IsStage(err, StagePrepare):
		fmt.Fprintf(r.out, "\nFATAL: %v\n", errors.Unwrap(err))
		r.trace(KindFatal, "", err)
		r.screenshot(context.WithoutCancel(ctx), "fatal_error")
	}
	r.logger.Error("run failed", "error", err)
}

// cleanup stops whatever is still running. It is a no-op after a
// successful shutdown step.
func (r *run) cleanup() {
	if r.recording != nil {
		fmt.Fprintln(r.out, "\n[cleanup] Stopping screen recording …")
		if err := r.recording.Stop(); err != nil {
			r.logger.Warn("stop recording failed", "error", err)
		}
		r.recording = nil
	}
	if r.app != nil && !r.appStopped {
		if r.app.Alive() {
			fmt.Fprintln(r.out, "\n[cleanup] Terminating app process …")
		}
		// The leader may be gone while its process group lives on.
		if err := r.app.Terminate(r.sc.App.Launch.StopGrace.D()); err != nil {
			r.logger.Warn("terminate app failed", "error", err)
		}
		r.appStopped = true
	}
}

// beginStep advances the step counter, prints the step banner and opens
// a StepRecord. Screenshots and trace events taken afterwards carry the
// new step number.
func (r *run) beginStep(title string) {
	n := r.steps.Next()
	fmt.Fprintf(r.out, "\n%s\n  Step %d: %s\n%s\n", bannerRule, n, title, bannerRule)
	r.result.Steps = append(r.result.Steps, StepRecord{Seq: n, Title: title, StartedAt: r.deps.Now()})
	r.trace(KindStep, title, nil)
}

// trace appends an event to the run trace. Sequence numbers are dense
// and start at 1.
func (r *run) trace(kind, detail string, err error) {
	r.seq++
	e := TraceEvent{Seq: r.seq, Step: r.steps.Current(), Kind: kind, Detail: detail}
	if err != nil {
		e.Error = err.Error()
	}
	r.result.Trace = append(r.result.Trace, e)
}

// artifact records a produced (or attempted) file.
func (r *run) artifact(kind, label, path string, err error) {
	a := Artifact{
		Seq:   len(r.result.Artifacts) + 1,
		Step:  r.steps.Current(),
		Kind:  kind,
		Label: label,
		Path:  path,
		OK:    err == nil,
	}
	if err != nil {
		a.Error = err.Error()
	}
	r.result.Artifacts = append(r.result.Artifacts, a)
}

func (r *run) sleep(ctx context.Context, d scenario.Duration) error {
	return r.deps.Sleep(ctx, d.D())
}

// build runs the scenario's build command. A missing build section or
// NoBuild skips it; the step number is consumed either way.
func (r *run) build(ctx context.Context) error {
	r.beginStep("Building the solution")
	b := r.sc.App.Build
	if b == nil || r.opts.NoBuild {
		fmt.Fprintln(r.out, "  Build skipped")
		r.trace(KindBuild, "skipped", nil)
		return nil
	}

	c := command(*b)
	r.logger.Debug("building", "command", c.String(), "timeout", b.Timeout)
	res, err := r.deps.Build(ctx, c, b.Timeout.D())
	if err != nil {
		if ctx.Err() == nil {
			fmt.Fprintf(r.out, "  BUILD FAILED:\n%s\n%s\n", tailOf(res, true), tailOf(res, false))
		}
		r.trace(KindBuild, "failed", err)
		return &StageError{Stage: StageBuild, Step: r.steps.Current(), Err: err}
	}
	fmt.Fprintln(r.out, "  Build succeeded")
	r.trace(KindBuild, "ok", nil)
	return nil
}

func tailOf(res *proc.BuildResult, stdout bool) string {
	if res == nil {
		return ""
	}
	if stdout {
		return res.Stdout
	}
	return res.Stderr
}

// launch starts the app detached. The process is owned by the run from
// here on and is always terminated by shutdown or cleanup.
func (r *run) launch() error {
	r.beginStep("Launching " + r.sc.App.Name)
	app, err := r.deps.Launch(command(r.sc.App.Launch))
	if err != nil {
		fmt.Fprintf(r.out, "  FAILED: %v\n", err)
		r.trace(KindLaunch, "failed", err)
		return &StageError{Stage: StageLaunch, Step: r.steps.Current(), Err: err}
	}
	r.app = app
	fmt.Fprintf(r.out, "  PID: %d\n", app.Pid())
	r.trace(KindLaunch, fmt.Sprintf("pid %d", app.Pid()), nil)
	return nil
}

// command converts an argv-style CommandSpec into a proc.Command.
func command(c scenario.CommandSpec) proc.Command {
	out := proc.Command{Dir: c.Dir, Env: c.Env}
	if len(c.Command) > 0 {
		out.Path = c.Command[0]
		out.Args = c.Command[1:]
	}
	return out
}

func bounds(d window.Descriptor) string {
	return fmt.Sprintf("pos=(%d,%d) size=(%dx%d)", d.X, d.Y, d.Width, d.Height)
}

// locate waits for the app's main window using the scenario's rules.
//
// On timeout it captures the screen and dumps every visible window so a
// failed run explains itself.
func (r *run) locate(ctx context.Context) error {
	r.beginStep("Waiting for app window")
	fail := func(err error) error {
		return &StageError{Stage: StageWindow, Step: r.steps.Current(), Err: err}
	}

	m, err := r.sc.WindowRules().Compile()
	if err != nil {
		return fail(err)
	}
	scope, err := window.ParseScope(r.sc.Window.Scope)
	if err != nil {
		return fail(err)
	}
	r.matcher, r.scope = m, scope

	fmt.Fprintf(r.out, "  Waiting up to %s for window …\n", r.sc.Window.Timeout)
	d, err := window.Find(ctx, r.deps.Lister, m, window.FindOptions{
		Scope:    scope,
		Timeout:  r.sc.Window.Timeout.D(),
		Interval: r.sc.Window.Interval.D(),
		Logger:   r.logger,
	})
	if err != nil {
		r.trace(KindWindow, "not found", err)
		if !window.IsNotFound(err) {
			return fail(err)
		}
		fmt.Fprintf(r.out, "  FAILED: %v\n", err)
		r.screenshot(ctx, "timeout_no_window")
		alive := r.app.Alive()
		fmt.Fprintf(r.out, "  Process alive: %t\n", alive)
		if !alive {
			fmt.Fprintf(r.out, "  Exit code: %d\n", r.app.ExitCode())
		}
		fmt.Fprintln(r.out, "  Visible windows:")
		ds, lerr := r.deps.Lister.List(ctx, scope)
		if lerr != nil {
			fmt.Fprintf(r.out, "  (window listing failed: %v)\n", lerr)
		} else {
			_ = window.Dump(r.out, ds)
		}
		return fail(err)
	}

	r.win = d
	fmt.Fprintf(r.out, "  Window found: %s\n", bounds(d))
	r.trace(KindWindow, bounds(d), nil)
	r.logger.Debug("window", "descriptor", d.String())

	if err := r.sleep(ctx, r.sc.Window.Settle); err != nil {
		return fail(err)
	}
	if err := r.focus(ctx); err != nil {
		return fail(err)
	}
	r.screenshot(ctx, "app_launched")
	return nil
}

// normalize raises and maximises the window when the scenario asks for it.
func (r *run) normalize(ctx context.Context) error {
	n := r.sc.Window.Normalize
	if !n.Raise && !n.Maximize {
		return nil
	}
	fail := func(err error) error {
		return &StageError{Stage: StageNormalize, Step: r.steps.Current(), Err: err}
	}

	if n.Raise {
		err := r.deps.Focuser.Raise(ctx, r.target())
		if err != nil {
			r.logger.Warn("raise failed", "error", err)
		}
		r.trace(KindNormalize, "raise", err)
	}
	if n.Maximize {
		p, ok := r.sc.Layout.Anchor(n.Anchor)
		if !ok {
			return fail(fmt.Errorf("unknown anchor %q", n.Anchor))
		}
		x, y := p.Offset(r.win.X, r.win.Y)
		fmt.Fprintf(r.out, "  [double-click] (%d, %d) – maximise window\n", x, y)
		if err := r.deps.Driver.DoubleClick(ctx, x, y); err != nil {
			return fail(fmt.Errorf("maximise: %w", err))
		}
		r.trace(KindNormalize, "maximize", nil)
		if err := r.sleep(ctx, r.sc.Window.Settle); err != nil {
			return fail(err)
		}
		if err := r.refresh(ctx); err != nil {
			return fail(err)
		}
	}
	return nil
}

// refresh re-reads the window bounds, keeping the previous ones when the
// window is not listed.
func (r *run) refresh(ctx context.Context) error {
	ds, err := r.deps.Lister.List(ctx, r.scope)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Warn("window refresh failed, keeping previous bounds", "error", err)
		r.trace(KindRefresh, bounds(r.win), err)
		return nil
	}
	if d, ok := r.matcher.First(ds); ok {
		r.win = d
		r.trace(KindRefresh, bounds(d), nil)
		return nil
	}
	r.logger.Warn("window not listed on refresh, keeping previous bounds")
	r.trace(KindRefresh, bounds(r.win), window.ErrNotFound)
	return nil
}

// target identifies the app for focus and raise.
func (r *run) target() input.Target {
	t := input.Target{ProcessHint: r.sc.App.ProcessHint, WindowID: r.win.ID}
	if r.app != nil {
		t.PID = r.app.Pid()
	}
	return t
}

// focus is best effort; only cancellation is returned.
func (r *run) focus(ctx context.Context) error {
	err := r.deps.Focuser.Focus(ctx, r.target())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Warn("focus failed", "error", err)
	}
	r.trace(KindFocus, "", err)
	return r.sleep(ctx, r.sc.Input.FocusSettle)
}

// screenshot never fails the run.
func (r *run) screenshot(ctx context.Context, label string) {
	path := r.namer.Next(r.steps.Current(), label)
	name := filepath.Base(path)

	windowID := 0
	if r.sc.Capture.WindowOnly {
		windowID = r.win.ID
	}
	err := r.deps.Shooter.Capture(ctx, path, windowID)
	switch {
	case err == nil:
		fmt.Fprintf(r.out, "  [screenshot] %s\n", name)
	case errors.Is(err, capture.ErrNotSaved):
		fmt.Fprintf(r.out, "  [screenshot] FAILED to save %s\n", name)
	default:
		fmt.Fprintf(r.out, "  [screenshot] ERROR: %v\n", err)
	}
	if err != nil {
		r.logger.Warn("screenshot failed", "label", label, "error", err)
	}
	r.artifact(ArtifactScreenshot, label, path, err)
	r.trace(KindScreenshot, label, err)
}

// startRecording starts a live recording when the record mode asks for
// one. In auto mode an unavailable recorder switches the run to stitching.
func (r *run) startRecording() {
	if r.mode != scenario.RecordLive && r.mode != scenario.RecordAuto {
		return
	}
	rec, err := r.deps.Record(capture.RecorderOptions{
		Device:    r.sc.Record.Device,
		Framerate: r.sc.Record.Framerate,
		Output:    r.sc.Record.Output,
		Logger:    r.logger,
	})
	if err != nil {
		if r.mode == scenario.RecordAuto {
			r.logger.Info("screen recorder unavailable, stitching screenshots instead", "error", err)
			r.mode = scenario.RecordStitch
			r.trace(KindRecord, "stitch fallback", nil)
			return
		}
		fmt.Fprintf(r.out, "  Screen recording unavailable (non-fatal): %v\n", err)
		r.trace(KindRecord, "unavailable", err)
		return
	}
	r.mode = scenario.RecordLive
	r.recording = rec
	fmt.Fprintf(r.out, "  [record] Recording screen to %s\n", rec.Output())
	r.logger.Info("screen recording started", "recorder_pid", rec.Pid(), "output", rec.Output())
	r.trace(KindRecord, "started", nil)
}

// video produces the session video. Only cancellation is returned.
func (r *run) video(ctx context.Context) error {
	switch r.mode {
	case scenario.RecordLive:
		r.beginStep("Stopping screen recording")
		if r.recording == nil {
			fmt.Fprintln(r.out, "  No recording in progress – skipping video")
			r.trace(KindVideo, "skipped", nil)
			return nil
		}
		rec := r.recording
		r.recording = nil
		if err := rec.Stop(); err != nil {
			fmt.Fprintln(r.out, "  Recording failed (non-fatal)")
			r.logger.Warn("recording failed", "error", err)
			r.artifact(ArtifactVideo, "recording", rec.Output(), err)
			r.trace(KindVideo, "recording failed", err)
			return nil
		}
		fmt.Fprintf(r.out, "  Video saved (%d bytes)\n", fileSize(rec.Output()))
		r.result.Video = rec.Output()
		r.artifact(ArtifactVideo, "recording", rec.Output(), nil)
		r.trace(KindVideo, "recorded", nil)
		return nil

	case scenario.RecordOff:
		r.beginStep("Generating video from screenshots")
		fmt.Fprintln(r.out, "  Video disabled – skipping video generation")
		r.trace(KindVideo, "disabled", nil)
		return nil
	}

	r.beginStep("Generating video from screenshots")
	out := r.sc.Record.Output
	res, err := r.deps.Stitch(ctx, r.sc.Capture.Dir, out, capture.StitchOptions{
		FrameDuration: r.sc.Record.FrameDuration.D(),
	})
	switch {
	case err == nil:
		fmt.Fprintf(r.out, "  Generating video: %s\n", res.Output)
		fmt.Fprintf(r.out, "  Video saved (%d bytes)\n", res.Bytes)
		r.result.Video = res.Output
		r.artifact(ArtifactVideo, "stitched", res.Output, nil)
		r.trace(KindVideo, fmt.Sprintf("stitched %d frames", res.Frames), nil)
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, capture.ErrToolUnavailable):
		fmt.Fprintln(r.out, "  ffmpeg not found – skipping video generation")
		r.trace(KindVideo, "skipped", err)
	case errors.Is(err, capture.ErrNotEnoughFrames):
		fmt.Fprintln(r.out, "  Not enough screenshots for a video")
		r.trace(KindVideo, "skipped", err)
	default:
		fmt.Fprintf(r.out, "  Generating video: %s\n", out)
		fmt.Fprintln(r.out, "  Video generation failed (non-fatal)")
		r.logger.Warn("video generation failed", "error", err)
		r.artifact(ArtifactVideo, "stitched", out, err)
		r.trace(KindVideo, "failed", err)
	}
	return nil
}

// shutdown terminates the app's process group. The group is signalled
// even when the leader has already exited.
func (r *run) shutdown() {
	r.beginStep("Shutting down")
	wasAlive := r.app.Alive()
	err := r.app.Terminate(r.sc.App.Launch.StopGrace.D())
	r.appStopped = true
	if err != nil {
		r.logger.Warn("terminate app failed", "error", err)
	}
	r.logger.Info("app stopped", "pid", r.app.Pid(), "was_alive", wasAlive, "exit_code", r.app.ExitCode())
	if !wasAlive {
		fmt.Fprintln(r.out, "  App already exited")
		r.trace(KindShutdown, "already exited", err)
		return
	}
	fmt.Fprintln(r.out, "  App terminated")
	r.trace(KindShutdown, "app terminated", err)
}
