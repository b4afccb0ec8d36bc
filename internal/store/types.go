package store

import "time"

// Run statuses.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Artifact kinds.
const (
	KindScreenshot = "screenshot"
	KindVideo      = "video"
)

// Run is one recorded harness run.
type Run struct {
	ID            string     `json:"id"`
	Scenario      string     `json:"scenario"`
	Replay        string     `json:"replay,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    time.Time  `json:"finished_at"`
	Status        string     `json:"status"`
	ExitCode      int        `json:"exit_code"`
	Error         string     `json:"error,omitempty"`
	ScreenshotDir string     `json:"screenshot_dir,omitempty"`
	Video         string     `json:"video,omitempty"`
	Steps         []Step     `json:"steps,omitempty"`
	Artifacts     []Artifact `json:"artifacts,omitempty"`
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Step is a numbered step banner.
type Step struct {
	Seq       int       `json:"seq"`
	Title     string    `json:"title"`
	StartedAt time.Time `json:"started_at"`
}

// Artifact is a file produced by a run.
type Artifact struct {
	Seq   int    `json:"seq"`
	Step  int    `json:"step"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Path  string `json:"path"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
