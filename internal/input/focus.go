package input

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/roach88/uiharness/internal/osa"
	"github.com/roach88/uiharness/internal/proc"
)

// FocusTimeout bounds each focus attempt.
const FocusTimeout = 5 * time.Second

// Target identifies the application window to focus.
type Target struct {
	// ProcessHint is a substring of the process name (e.g. "dotnet").
	ProcessHint string

	// PID of the launched process. Zero when unknown.
	PID int

	// WindowID from the window registry. Zero when unknown.
	WindowID int
}

// Focuser brings the application to the front.
//
// Callers treat errors as diagnostics: focus is best effort.
type Focuser interface {
	Focus(ctx context.Context, t Target) error
	Raise(ctx context.Context, t Target) error
}

// NewFocuser returns the Focuser for the running OS.
func NewFocuser() (Focuser, error) {
	return FocuserFor(runtime.GOOS, osa.New(), proc.Run)
}

// FocuserFor returns the Focuser for goos.
func FocuserFor(goos string, bridge *osa.Bridge, runner proc.Runner) (Focuser, error) {
	switch goos {
	case "darwin":
		return &OSAFocuser{Bridge: bridge.WithTimeout(FocusTimeout)}, nil
	case "linux":
		return &WmctrlFocuser{Runner: runner}, nil
	default:
		return nil, fmt.Errorf("window focus is not supported on %s", goos)
	}
}

// OSAFocuser focuses through the macOS scripting bridge. It tries, in
// order: NSRunningApplication by pid, System Events by process name, and
// System Events by unix id. None of these need Accessibility permission
// except Raise.
type OSAFocuser struct {
	Bridge *osa.Bridge
}

// Focus implements Focuser.
func (f *OSAFocuser) Focus(ctx context.Context, t Target) error {
	var errs []error

	if t.PID > 0 {
		_, err := f.Bridge.JavaScript(ctx, fmt.Sprintf(`ObjC.import('AppKit');
var app = $.NSRunningApplication.runningApplicationWithProcessIdentifier(%d);
if (!app || app.isNil()) { throw new Error('no application for pid'); }
app.activateWithOptions($.NSApplicationActivateIgnoringOtherApps);`, t.PID))
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}

	if t.ProcessHint != "" {
		_, err := f.Bridge.AppleScript(ctx, fmt.Sprintf(
			`tell application "System Events" to set frontmost of first process whose name contains %s to true`,
			osa.Quote(t.ProcessHint)))
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}

	if t.PID > 0 {
		_, err := f.Bridge.AppleScript(ctx, fmt.Sprintf(
			`tell application "System Events" to set frontmost of first process whose unix id is %d to true`, t.PID))
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return errors.New("focus: target has neither pid nor process hint")
	}
	return fmt.Errorf("focus: %w", errors.Join(errs...))
}

// Raise implements Focuser with AXRaise on the front window of the process.
func (f *OSAFocuser) Raise(ctx context.Context, t Target) error {
	selector := "first process whose name contains " + osa.Quote(t.ProcessHint)
	if t.PID > 0 {
		selector = "first process whose unix id is " + strconv.Itoa(t.PID)
	}
	_, err := f.Bridge.AppleScript(ctx,
		`tell application "System Events" to perform action "AXRaise" of window 1 of (`+selector+`)`)
	if err != nil {
		return fmt.Errorf("raise: %w", err)
	}
	return nil
}

// WmctrlFocuser focuses X11 windows with wmctrl.
type WmctrlFocuser struct {
	// Path is the wmctrl executable. Empty means "wmctrl".
	Path string

	// Runner executes wmctrl. Nil means proc.Run.
	Runner proc.Runner
}

// Focus implements Focuser. It activates the window by id, falling back to
// the first window whose title contains the hint.
func (f *WmctrlFocuser) Focus(ctx context.Context, t Target) error {
	switch {
	case t.WindowID != 0:
		return f.run(ctx, "-ia", fmt.Sprintf("0x%08x", t.WindowID))
	case t.ProcessHint != "":
		return f.run(ctx, "-a", t.ProcessHint)
	default:
		return errors.New("focus: target has neither window id nor process hint")
	}
}

// Raise implements Focuser. Activation already raises on X11.
func (f *WmctrlFocuser) Raise(ctx context.Context, t Target) error {
	return f.Focus(ctx, t)
}

func (f *WmctrlFocuser) run(ctx context.Context, args ...string) error {
	path := f.Path
	if path == "" {
		path = "wmctrl"
	}
	runner := f.Runner
	if runner == nil {
		runner = proc.Run
	}

	ctx, cancel := context.WithTimeout(ctx, FocusTimeout)
	defer cancel()
	if _, err := runner(ctx, proc.Command{Path: path, Args: args}); err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	return nil
}
