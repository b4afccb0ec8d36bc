// Package scenario describes a GUI test run: how to build and launch the
// application, how to recognise its window, where its controls are, and
// the interaction script to drive against it.
//
// Scenarios are YAML documents. Load decodes strictly, fills defaults and
// validates the result twice: once against an embedded CUE schema for
// shape and value ranges, once in Go for cross references such as click
// targets and sort columns.
package scenario

// Scenario is a complete run description.
type Scenario struct {
	// Name identifies the scenario in history and logs.
	Name string `yaml:"name" json:"name"`

	// Description explains what the run exercises.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	App        App         `yaml:"app" json:"app"`
	Defaults   Defaults    `yaml:"defaults,omitempty" json:"defaults"`
	Window     Window      `yaml:"window,omitempty" json:"window"`
	Input      Input       `yaml:"input,omitempty" json:"input"`
	Layout     Layout      `yaml:"layout,omitempty" json:"layout"`
	Script     []Step      `yaml:"script" json:"script"`
	Record     Record      `yaml:"record,omitempty" json:"record"`
	Capture    Capture     `yaml:"capture,omitempty" json:"capture"`
	Assertions []Assertion `yaml:"assertions,omitempty" json:"assertions,omitempty"`
}

// App describes the application under test.
type App struct {
	// Name is used in step banners. Defaults to the scenario name.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// ProcessHint is a substring of the running process name, used to
	// focus the application. Defaults to the launch executable's base name.
	ProcessHint string `yaml:"process_hint,omitempty" json:"process_hint,omitempty"`

	// Build is optional; without it the build stage is skipped.
	Build *CommandSpec `yaml:"build,omitempty" json:"build,omitempty"`

	Launch CommandSpec `yaml:"launch" json:"launch"`
}

// CommandSpec is an external command. Command[0] is the executable.
type CommandSpec struct {
	Command []string `yaml:"command" json:"command"`
	Dir     string   `yaml:"dir,omitempty" json:"dir,omitempty"`
	Env     []string `yaml:"env,omitempty" json:"env,omitempty"`

	// Timeout bounds a build. Zero means DefaultBuildTimeout.
	Timeout Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// StopGrace is how long a launched app gets between SIGTERM and
	// SIGKILL. Zero means DefaultStopGrace.
	StopGrace Duration `yaml:"stop_grace,omitempty" json:"stop_grace,omitempty"`
}

// Defaults holds values used when the command line omits them.
type Defaults struct {
	// Input is the default replay path.
	Input string `yaml:"input,omitempty" json:"input,omitempty"`
}

// Window describes how to find the application window.
type Window struct {
	OwnerHint  string   `yaml:"owner_hint,omitempty" json:"owner_hint,omitempty"`
	TitleHints []string `yaml:"title_hints,omitempty" json:"title_hints,omitempty"`
	MinWidth   int      `yaml:"min_width,omitempty" json:"min_width"`
	MinHeight  int      `yaml:"min_height,omitempty" json:"min_height"`

	// Scope is "onscreen" or "all".
	Scope string `yaml:"scope,omitempty" json:"scope"`

	// Match is an optional expression that must also hold, e.g.
	// `width > 800 && title contains "Replay"`.
	Match string `yaml:"match,omitempty" json:"match,omitempty"`

	Timeout  Duration `yaml:"timeout,omitempty" json:"timeout"`
	Interval Duration `yaml:"interval,omitempty" json:"interval"`

	// Settle is the pause between finding the window and the first capture.
	Settle Duration `yaml:"settle,omitempty" json:"settle"`

	Normalize Normalize `yaml:"normalize,omitempty" json:"normalize"`
}

// Normalize controls window placement before interaction.
type Normalize struct {
	Raise    bool `yaml:"raise,omitempty" json:"raise,omitempty"`
	Maximize bool `yaml:"maximize,omitempty" json:"maximize,omitempty"`

	// Anchor is double-clicked to maximise. Defaults to "title_bar".
	Anchor string `yaml:"anchor,omitempty" json:"anchor,omitempty"`
}

// Input holds input timing and the driver choice.
type Input struct {
	Driver      string   `yaml:"driver,omitempty" json:"driver"`
	Pause       Duration `yaml:"pause,omitempty" json:"pause"`
	ClickSettle Duration `yaml:"click_settle,omitempty" json:"click_settle"`
	FocusSettle Duration `yaml:"focus_settle,omitempty" json:"focus_settle"`
}

// Point is an offset from the window origin.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Layout is the map of named click targets within the window.
type Layout struct {
	Anchors map[string]Point `yaml:"anchors,omitempty" json:"anchors,omitempty"`
	Columns Columns          `yaml:"columns,omitempty" json:"columns"`
}

// Columns describes a grid header row: its left edge and column widths
// in display order.
type Columns struct {
	Origin Point    `yaml:"origin" json:"origin"`
	Widths []Column `yaml:"widths,omitempty" json:"widths,omitempty"`
}

// Column is one grid column.
type Column struct {
	Name  string `yaml:"name" json:"name"`
	Width int    `yaml:"width" json:"width"`
}

// Step is one numbered phase of the script.
type Step struct {
	Title   string   `yaml:"step" json:"step"`
	Actions []Action `yaml:"actions" json:"actions"`
}

// Action kinds.
const (
	ActionFocus         = "focus"
	ActionClick         = "click"
	ActionDoubleClick   = "double_click"
	ActionMove          = "move"
	ActionKey           = "key"
	ActionPress         = "press"
	ActionType          = "type"
	ActionSleep         = "sleep"
	ActionScreenshot    = "screenshot"
	ActionRefreshWindow = "refresh_window"
	ActionSort          = "sort"
)

// Action is a single script instruction. Which fields apply depends on Do.
type Action struct {
	Do string `yaml:"do" json:"do"`

	// Target names a layout anchor (click, double_click, move).
	Target string `yaml:"target,omitempty" json:"target,omitempty"`

	// Note is printed with the click log line.
	Note string `yaml:"note,omitempty" json:"note,omitempty"`

	// Keys is a combo such as "cmd+shift+g" (key, press).
	Keys string `yaml:"keys,omitempty" json:"keys,omitempty"`

	// Text is typed after variable expansion (type).
	Text string `yaml:"text,omitempty" json:"text,omitempty"`

	// Interval types one character at a time with this delay (type).
	Interval Duration `yaml:"interval,omitempty" json:"interval,omitempty"`

	// Duration of a sleep.
	Duration Duration `yaml:"duration,omitempty" json:"duration,omitempty"`

	// Label names a screenshot.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`

	// Columns to sort, each clicked once per direction (sort).
	Columns []string `yaml:"columns,omitempty" json:"columns,omitempty"`

	// Settle is the wait after each sort click. Zero means DefaultSortSettle.
	Settle Duration `yaml:"settle,omitempty" json:"settle,omitempty"`
}

// Recording modes.
const (
	RecordOff    = "off"
	RecordLive   = "live"
	RecordStitch = "stitch"
	RecordAuto   = "auto"
)

// Record selects how the session video is produced.
type Record struct {
	Mode          string   `yaml:"mode,omitempty" json:"mode"`
	Device        string   `yaml:"device,omitempty" json:"device,omitempty"`
	Framerate     int      `yaml:"framerate,omitempty" json:"framerate,omitempty"`
	Output        string   `yaml:"output,omitempty" json:"output,omitempty"`
	FrameDuration Duration `yaml:"frame_duration,omitempty" json:"frame_duration"`
}

// Capture configures screenshots.
type Capture struct {
	Dir string `yaml:"dir,omitempty" json:"dir"`

	// WindowOnly captures the application window instead of the screen.
	WindowOnly bool `yaml:"window_only,omitempty" json:"window_only,omitempty"`
}

// Assertion types.
const (
	AssertScreenshotOrder = "screenshot_order"
	AssertScreenshotCount = "screenshot_count"
	AssertStepCount       = "step_count"
	AssertTraceContains   = "trace_contains"
)

// Assertion is checked against the run trace after teardown.
type Assertion struct {
	Type   string   `yaml:"type" json:"type"`
	Label  string   `yaml:"label,omitempty" json:"label,omitempty"`
	Labels []string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Count  int      `yaml:"count,omitempty" json:"count,omitempty"`
}
