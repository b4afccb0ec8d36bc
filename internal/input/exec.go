package input

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/uiharness/internal/proc"
)

// CommandTimeout bounds a single input tool invocation.
const CommandTimeout = 10 * time.Second

// Registered driver names.
const (
	DriverAuto     = "auto"
	DriverXdotool  = "xdotool"
	DriverCliclick = "cliclick"
	DriverRecord   = "record"
	DriverRobotgo  = "robotgo"
)

func init() {
	Register(DriverXdotool, func() (Driver, error) { return newToolDriver("xdotool", xdotoolSyntax{}) })
	Register(DriverCliclick, func() (Driver, error) { return newToolDriver("cliclick", cliclickSyntax{}) })
	Register(DriverRecord, func() (Driver, error) { return &Recorder{}, nil })
	Register(DriverAuto, func() (Driver, error) { return openFirst(autoCandidates(runtime.GOOS)) })
}

// autoCandidates lists the drivers auto tries on goos, most capable first.
// The in-process robotgo driver exists only in cgo builds.
func autoCandidates(goos string) []string {
	var names []string
	if registered(DriverRobotgo) {
		names = append(names, DriverRobotgo)
	}
	switch goos {
	case "darwin":
		names = append(names, DriverCliclick)
	case "linux":
		names = append(names, DriverXdotool)
	}
	return names
}

// openFirst returns the first of names that opens.
func openFirst(names []string) (Driver, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no input driver for %s", runtime.GOOS)
	}
	var errs []error
	for _, name := range names {
		d, err := Open(name)
		if err == nil {
			return d, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// syntax renders driver calls as tool arguments.
type syntax interface {
	move(x, y int) []string
	click(x, y int) []string
	doubleClick(x, y int) []string
	keyTap(key string, modifiers []string) []string
	typeText(text string) []string
}

// ToolDriver injects input by running a command-line tool per event.
type ToolDriver struct {
	Path   string
	Runner proc.Runner
	syntax syntax
}

func newToolDriver(name string, s syntax) (*ToolDriver, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", name, err)
	}
	return &ToolDriver{Path: path, Runner: proc.Run, syntax: s}, nil
}

// NewXdotool returns an X11 driver that runs path with runner.
func NewXdotool(path string, runner proc.Runner) *ToolDriver {
	return &ToolDriver{Path: path, Runner: runner, syntax: xdotoolSyntax{}}
}

// NewCliclick returns a macOS driver that runs path with runner.
func NewCliclick(path string, runner proc.Runner) *ToolDriver {
	return &ToolDriver{Path: path, Runner: runner, syntax: cliclickSyntax{}}
}

func (d *ToolDriver) run(ctx context.Context, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()
	if _, err := d.Runner(ctx, proc.Command{Path: d.Path, Args: args}); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	return nil
}

// Move positions the pointer without clicking.
func (d *ToolDriver) Move(ctx context.Context, x, y int) error {
	return d.run(ctx, d.syntax.move(x, y))
}

// Click moves to (x, y) and clicks the primary button.
func (d *ToolDriver) Click(ctx context.Context, x, y int) error {
	return d.run(ctx, d.syntax.click(x, y))
}

// DoubleClick moves to (x, y) and double-clicks the primary button.
func (d *ToolDriver) DoubleClick(ctx context.Context, x, y int) error {
	return d.run(ctx, d.syntax.doubleClick(x, y))
}

// KeyTap presses key with modifiers held. Key names are translated to
// the tool's spelling; unknown names are passed through.
func (d *ToolDriver) KeyTap(ctx context.Context, key string, modifiers ...string) error {
	return d.run(ctx, d.syntax.keyTap(key, modifiers))
}

// Type enters text in a single tool invocation. Empty text runs nothing.
func (d *ToolDriver) Type(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	return d.run(ctx, d.syntax.typeText(text))
}

type xdotoolSyntax struct{}

var xdotoolKeys = map[string]string{
	"cmd":       "super",
	"enter":     "Return",
	"escape":    "Escape",
	"tab":       "Tab",
	"space":     "space",
	"backspace": "BackSpace",
	"delete":    "Delete",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"home":      "Home",
	"end":       "End",
}

func xdotoolKey(k string) string {
	if name, ok := xdotoolKeys[k]; ok {
		return name
	}
	return k
}

func (xdotoolSyntax) move(x, y int) []string {
	return []string{"mousemove", strconv.Itoa(x), strconv.Itoa(y)}
}

func (xdotoolSyntax) click(x, y int) []string {
	return []string{"mousemove", strconv.Itoa(x), strconv.Itoa(y), "click", "1"}
}

func (xdotoolSyntax) doubleClick(x, y int) []string {
	return []string{"mousemove", strconv.Itoa(x), strconv.Itoa(y), "click", "--repeat", "2", "1"}
}

func (xdotoolSyntax) keyTap(key string, modifiers []string) []string {
	parts := make([]string, 0, len(modifiers)+1)
	for _, m := range modifiers {
		parts = append(parts, xdotoolKey(m))
	}
	return []string{"key", "--clearmodifiers", strings.Join(append(parts, xdotoolKey(key)), "+")}
}

func (xdotoolSyntax) typeText(text string) []string {
	return []string{"type", "--delay", "0", "--", text}
}

type cliclickSyntax struct{}

// cliclickKeys are the special keys cliclick presses with kp:.
var cliclickKeys = map[string]string{
	"enter":     "return",
	"escape":    "esc",
	"tab":       "tab",
	"space":     "space",
	"backspace": "delete",
	"delete":    "fwd-delete",
	"up":        "arrow-up",
	"down":      "arrow-down",
	"left":      "arrow-left",
	"right":     "arrow-right",
	"home":      "home",
	"end":       "end",
}

func point(x, y int) string {
	return strconv.Itoa(x) + "," + strconv.Itoa(y)
}

func (cliclickSyntax) move(x, y int) []string {
	return []string{"m:" + point(x, y)}
}

func (cliclickSyntax) click(x, y int) []string {
	return []string{"c:" + point(x, y)}
}

func (cliclickSyntax) doubleClick(x, y int) []string {
	return []string{"dc:" + point(x, y)}
}

func (cliclickSyntax) keyTap(key string, modifiers []string) []string {
	press := "t:" + key
	if name, ok := cliclickKeys[key]; ok {
		press = "kp:" + name
	}
	if len(modifiers) == 0 {
		return []string{press}
	}
	mods := strings.Join(modifiers, ",")
	return []string{"kd:" + mods, press, "ku:" + mods}
}

func (cliclickSyntax) typeText(text string) []string {
	return []string{"t:" + text}
}
