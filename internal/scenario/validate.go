package scenario

import (
	"errors"
	"fmt"

	"github.com/roach88/uiharness/internal/input"
	"github.com/roach88/uiharness/internal/window"
)

// Validate checks required fields and cross references that the schema
// cannot express. It returns the first problem found, prefixed with its
// location, e.g. "script[3].actions[1]: unknown anchor \"ok_button\"".
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.App.Launch.Command) == 0 {
		return errors.New("app.launch.command is required")
	}
	if s.App.Build != nil && len(s.App.Build.Command) == 0 {
		return errors.New("app.build.command is required when app.build is set")
	}
	if len(s.Script) == 0 {
		return errors.New("script is required and must be non-empty")
	}

	if _, err := window.ParseScope(s.Window.Scope); err != nil {
		return fmt.Errorf("window.scope: %w", err)
	}
	if _, err := s.WindowRules().Compile(); err != nil {
		return fmt.Errorf("window.match: %w", err)
	}
	if s.Window.Normalize.Maximize {
		if _, ok := s.Layout.Anchor(s.Window.Normalize.Anchor); !ok {
			return fmt.Errorf("window.normalize.anchor: unknown anchor %q", s.Window.Normalize.Anchor)
		}
	}

	seen := make(map[string]bool)
	for _, col := range s.Layout.Columns.Widths {
		if seen[col.Name] {
			return fmt.Errorf("layout.columns.widths: duplicate column %q", col.Name)
		}
		seen[col.Name] = true
	}

	for i, step := range s.Script {
		if step.Title == "" {
			return fmt.Errorf("script[%d]: step title is required", i)
		}
		if len(step.Actions) == 0 {
			return fmt.Errorf("script[%d]: actions list is required and must be non-empty", i)
		}
		for j, a := range step.Actions {
			if err := s.validateAction(a); err != nil {
				return fmt.Errorf("script[%d].actions[%d]: %w", i, j, err)
			}
		}
	}

	switch s.Record.Mode {
	case RecordOff, RecordLive, RecordStitch, RecordAuto:
	default:
		return fmt.Errorf("record.mode: unknown mode %q", s.Record.Mode)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func (s *Scenario) validateAction(a Action) error {
	switch a.Do {
	case ActionFocus, ActionRefreshWindow:
	case ActionClick, ActionDoubleClick, ActionMove:
		if a.Target == "" {
			return fmt.Errorf("target is required for %s", a.Do)
		}
		if _, ok := s.Layout.Anchor(a.Target); !ok {
			return fmt.Errorf("unknown anchor %q", a.Target)
		}
	case ActionKey, ActionPress:
		if a.Keys == "" {
			return fmt.Errorf("keys is required for %s", a.Do)
		}
		if _, err := input.ParseCombo(a.Keys); err != nil {
			return err
		}
	case ActionType:
		if a.Text == "" {
			return errors.New("text is required for type")
		}
	case ActionSleep:
		if a.Duration <= 0 {
			return errors.New("duration must be positive for sleep")
		}
	case ActionScreenshot:
		if a.Label == "" {
			return errors.New("label is required for screenshot")
		}
	case ActionSort:
		if len(a.Columns) == 0 {
			return errors.New("columns list is required for sort")
		}
		for _, name := range a.Columns {
			if !s.Layout.Columns.HasColumn(name) {
				return fmt.Errorf("unknown column %q", name)
			}
		}
	case "":
		return errors.New("do is required")
	default:
		return fmt.Errorf("unknown action %q", a.Do)
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertScreenshotOrder:
		if len(a.Labels) == 0 {
			return errors.New("labels list is required for screenshot_order")
		}
	case AssertScreenshotCount, AssertStepCount:
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative for %s", a.Type)
		}
	case AssertTraceContains:
		if a.Label == "" {
			return errors.New("label is required for trace_contains")
		}
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// WindowRules converts the window section to match rules.
func (s *Scenario) WindowRules() window.Rules {
	return window.Rules{
		OwnerHint:  s.Window.OwnerHint,
		TitleHints: s.Window.TitleHints,
		MinWidth:   s.Window.MinWidth,
		MinHeight:  s.Window.MinHeight,
		Match:      s.Window.Match,
	}
}
