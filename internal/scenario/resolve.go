package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Vars are the values available to ${...} expansion. Environment
// variables are also visible; these take precedence.
type Vars struct {
	// ProjectRoot anchors relative paths. Empty means the working directory.
	ProjectRoot string

	// Home replaces a leading "~/". Empty means the user's home directory.
	Home string

	// Replay is the input file. Empty means defaults.input.
	Replay string
}

func (v Vars) lookup(name string) (string, bool) {
	switch name {
	case "replay":
		return v.Replay, true
	case "project_root":
		return v.ProjectRoot, true
	case "home":
		return v.Home, true
	case "$":
		return "$", true
	}
	return os.LookupEnv(name)
}

type expander struct {
	vars    Vars
	missing map[string]bool
}

func (e *expander) expand(s string) string {
	return os.Expand(s, func(name string) string {
		val, ok := e.vars.lookup(name)
		if !ok {
			e.missing[name] = true
		}
		return val
	})
}

// path expands s and makes it absolute relative to the project root.
func (e *expander) path(s string) string {
	if s == "" {
		return ""
	}
	s = e.expand(s)
	if s == "~" {
		return e.vars.Home
	}
	if strings.HasPrefix(s, "~/") {
		s = filepath.Join(e.vars.Home, s[2:])
	}
	if !filepath.IsAbs(s) {
		s = filepath.Join(e.vars.ProjectRoot, s)
	}
	return filepath.Clean(s)
}

// executable expands a command name. Bare names stay bare so PATH lookup
// applies; anything with a separator or "~" becomes a path.
func (e *expander) executable(s string) string {
	s = e.expand(s)
	if strings.HasPrefix(s, "~") || strings.ContainsRune(s, filepath.Separator) {
		return e.path(s)
	}
	return s
}

func (e *expander) command(c CommandSpec) CommandSpec {
	out := c
	out.Command = make([]string, len(c.Command))
	for i, arg := range c.Command {
		if i == 0 {
			out.Command[i] = e.executable(arg)
			continue
		}
		out.Command[i] = e.expand(arg)
	}
	if c.Dir != "" {
		out.Dir = e.path(c.Dir)
	}
	if len(c.Env) > 0 {
		out.Env = make([]string, len(c.Env))
		for i, kv := range c.Env {
			out.Env[i] = e.expand(kv)
		}
	}
	return out
}

func (e *expander) err() error {
	if len(e.missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(e.missing))
	for name := range e.missing {
		names = append(names, "${"+name+"}")
	}
	sort.Strings(names)
	return fmt.Errorf("undefined variables: %s", strings.Join(names, ", "))
}

// Resolve returns a copy of s with variables expanded in commands, paths
// and typed text, and relative paths anchored at the project root. The
// returned Vars carry the effective project root, home and replay path.
func (s *Scenario) Resolve(v Vars) (*Scenario, Vars, error) {
	if v.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, v, fmt.Errorf("resolve home directory: %w", err)
		}
		v.Home = home
	}
	if v.ProjectRoot == "" {
		v.ProjectRoot = "."
	}
	root, err := filepath.Abs(v.ProjectRoot)
	if err != nil {
		return nil, v, fmt.Errorf("resolve project root: %w", err)
	}
	v.ProjectRoot = root

	e := &expander{vars: v, missing: make(map[string]bool)}

	if v.Replay == "" {
		if s.Defaults.Input == "" {
			return nil, v, errors.New("no replay path given and the scenario has no defaults.input")
		}
		v.Replay = e.path(s.Defaults.Input)
	} else {
		// Command-line paths are relative to the working directory.
		abs, err := filepath.Abs(v.Replay)
		if err != nil {
			return nil, v, fmt.Errorf("resolve replay path: %w", err)
		}
		v.Replay = abs
	}
	e.vars = v

	out := *s
	if s.App.Build != nil {
		b := e.command(*s.App.Build)
		out.App.Build = &b
	}
	out.App.Launch = e.command(s.App.Launch)
	out.Defaults.Input = v.Replay
	out.Capture.Dir = e.path(s.Capture.Dir)
	if s.Record.Output == "" {
		out.Record.Output = filepath.Join(filepath.Dir(out.Capture.Dir), "test_run.mp4")
	} else {
		out.Record.Output = e.path(s.Record.Output)
	}

	out.Script = make([]Step, len(s.Script))
	for i, step := range s.Script {
		out.Script[i] = Step{Title: e.expand(step.Title), Actions: make([]Action, len(step.Actions))}
		for j, a := range step.Actions {
			if a.Do == ActionType {
				a.Text = e.expand(a.Text)
			}
			out.Script[i].Actions[j] = a
		}
	}

	if err := e.err(); err != nil {
		return nil, v, err
	}
	return &out, v, nil
}
