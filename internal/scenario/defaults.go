package scenario

import (
	"path/filepath"
	"time"
)

// Defaults applied by Load to zero-valued fields.
const (
	DefaultBuildTimeout   = 120 * time.Second
	DefaultStopGrace      = 5 * time.Second
	DefaultMinSize        = 100
	DefaultWindowTimeout  = 30 * time.Second
	DefaultWindowInterval = time.Second
	DefaultWindowSettle   = 2 * time.Second
	DefaultPause          = 300 * time.Millisecond
	DefaultClickSettle    = 500 * time.Millisecond
	DefaultFocusSettle    = 500 * time.Millisecond
	DefaultSortSettle     = time.Second
	DefaultFrameDuration  = 1500 * time.Millisecond
	DefaultCaptureDir     = "screenshots"
	DefaultMaximizeAnchor = "title_bar"
	DefaultDriver         = "auto"
	DefaultScope          = "onscreen"
	DefaultRecordMode     = RecordStitch
)

// ApplyDefaults fills zero-valued fields in place.
func (s *Scenario) ApplyDefaults() {
	if s.App.Name == "" {
		s.App.Name = s.Name
	}
	if s.App.ProcessHint == "" && len(s.App.Launch.Command) > 0 {
		s.App.ProcessHint = filepath.Base(s.App.Launch.Command[0])
	}
	if s.App.Build != nil && s.App.Build.Timeout == 0 {
		s.App.Build.Timeout = Duration(DefaultBuildTimeout)
	}
	if s.App.Launch.StopGrace == 0 {
		s.App.Launch.StopGrace = Duration(DefaultStopGrace)
	}

	w := &s.Window
	if w.MinWidth == 0 {
		w.MinWidth = DefaultMinSize
	}
	if w.MinHeight == 0 {
		w.MinHeight = DefaultMinSize
	}
	if w.Scope == "" {
		w.Scope = DefaultScope
	}
	setDuration(&w.Timeout, DefaultWindowTimeout)
	setDuration(&w.Interval, DefaultWindowInterval)
	setDuration(&w.Settle, DefaultWindowSettle)
	if w.Normalize.Maximize && w.Normalize.Anchor == "" {
		w.Normalize.Anchor = DefaultMaximizeAnchor
	}

	in := &s.Input
	if in.Driver == "" {
		in.Driver = DefaultDriver
	}
	setDuration(&in.Pause, DefaultPause)
	setDuration(&in.ClickSettle, DefaultClickSettle)
	setDuration(&in.FocusSettle, DefaultFocusSettle)

	for i := range s.Script {
		for j := range s.Script[i].Actions {
			a := &s.Script[i].Actions[j]
			if a.Do == ActionSort {
				setDuration(&a.Settle, DefaultSortSettle)
			}
		}
	}

	if s.Record.Mode == "" {
		s.Record.Mode = DefaultRecordMode
	}
	setDuration(&s.Record.FrameDuration, DefaultFrameDuration)

	if s.Capture.Dir == "" {
		s.Capture.Dir = DefaultCaptureDir
	}
}

func setDuration(d *Duration, def time.Duration) {
	if *d == 0 {
		*d = Duration(def)
	}
}
