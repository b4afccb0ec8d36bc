package harness

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Trace event kinds.
const (
	KindStep        = "step"
	KindBuild       = "build"
	KindLaunch      = "launch"
	KindWindow      = "window"
	KindNormalize   = "normalize"
	KindRecord      = "record"
	KindFocus       = "focus"
	KindClick       = "click"
	KindDoubleClick = "double_click"
	KindMove        = "move"
	KindKey         = "key"
	KindPress       = "press"
	KindType        = "type"
	KindSleep       = "sleep"
	KindScreenshot  = "screenshot"
	KindRefresh     = "refresh_window"
	KindSort        = "sort"
	KindVideo       = "video"
	KindShutdown    = "shutdown"
	KindFatal       = "fatal"
)

// TraceEvent is one observable thing the run did.
type TraceEvent struct {
	Seq    int    `json:"seq"`
	Step   int    `json:"step"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// String renders e as "NN kind detail ! error".
func (e TraceEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d %s", e.Step, e.Kind)
	if e.Detail != "" {
		b.WriteString(" " + e.Detail)
	}
	if e.Error != "" {
		b.WriteString(" ! " + e.Error)
	}
	return b.String()
}

// Artifact kinds.
const (
	ArtifactScreenshot = "screenshot"
	ArtifactVideo      = "video"
)

// Artifact is a file the run tried to produce.
type Artifact struct {
	Seq   int    `json:"seq"`
	Step  int    `json:"step"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Path  string `json:"path"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// StepRecord is a numbered step banner.
type StepRecord struct {
	Seq       int       `json:"seq"`
	Title     string    `json:"title"`
	StartedAt time.Time `json:"started_at"`
}

// Result is the outcome of a run.
type Result struct {
	RunID         string       `json:"run_id"`
	Scenario      string       `json:"scenario"`
	Replay        string       `json:"replay,omitempty"`
	Pass          bool         `json:"pass"`
	ExitCode      int          `json:"exit_code"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
	ScreenshotDir string       `json:"screenshot_dir"`
	Video         string       `json:"video,omitempty"`
	Steps         []StepRecord `json:"steps"`
	Trace         []TraceEvent `json:"trace"`
	Artifacts     []Artifact   `json:"artifacts"`
	Errors        []string     `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult(runID, scenario string, started time.Time) *Result {
	return &Result{
		RunID:     runID,
		Scenario:  scenario,
		Pass:      true,
		StartedAt: started,
		Steps:     []StepRecord{},
		Trace:     []TraceEvent{},
		Artifacts: []Artifact{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
	r.ExitCode = 1
}

// ScreenshotLabels returns the labels of every screenshot attempt in order,
// including attempts whose file was not written.
func (r *Result) ScreenshotLabels() []string {
	var labels []string
	for _, a := range r.Artifacts {
		if a.Kind == ArtifactScreenshot {
			labels = append(labels, a.Label)
		}
	}
	return labels
}

// StageError is a fatal failure of one run stage.
type StageError struct {
	Stage string
	Step  int
	Err   error
}

// Stages.
const (
	StagePrepare   = "prepare"
	StageBuild     = "build"
	StageLaunch    = "launch"
	StageWindow    = "window"
	StageNormalize = "normalize"
	StageInteract  = "interact"
	StageVideo     = "video"
)

func (e *StageError) Error() string {
	return fmt.Sprintf("%s (step %d): %v", e.Stage, e.Step, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panic during the run.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// IsStage reports whether err is a StageError for stage.
func IsStage(err error, stage string) bool {
	var se *StageError
	return errors.As(err, &se) && se.Stage == stage
}

// StepCounter numbers step banners. It only moves forward.
type StepCounter struct {
	n atomic.Int64
}

// Next advances the counter and returns the new step number.
func (c *StepCounter) Next() int {
	return int(c.n.Add(1))
}

// Current returns the current step number, zero before the first step.
func (c *StepCounter) Current() int {
	return int(c.n.Load())
}

// RunIDGenerator produces run identifiers.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs, so history
// listings sort by creation time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7. Panics if generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
