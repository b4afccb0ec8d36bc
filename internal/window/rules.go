package window

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Rules decide which registry entry is the application window.
type Rules struct {
	// OwnerHint is matched case-insensitively against owner and title.
	OwnerHint string `json:"owner_hint,omitempty"`

	// TitleHints are matched case-insensitively against the title.
	TitleHints []string `json:"title_hints,omitempty"`

	// MinWidth and MinHeight are exclusive lower bounds.
	MinWidth  int `json:"min_width"`
	MinHeight int `json:"min_height"`

	// Match is an optional boolean expression over the descriptor fields
	// (id, pid, owner, title, layer, x, y, width, height). When set it
	// must also hold.
	Match string `json:"match,omitempty"`
}

// matchEnv is the expression environment.
type matchEnv struct {
	ID     int    `expr:"id"`
	PID    int    `expr:"pid"`
	Owner  string `expr:"owner"`
	Title  string `expr:"title"`
	Layer  int    `expr:"layer"`
	X      int    `expr:"x"`
	Y      int    `expr:"y"`
	Width  int    `expr:"width"`
	Height int    `expr:"height"`
}

// Matcher is a compiled Rules.
type Matcher struct {
	rules   Rules
	hints   []string
	program *vm.Program
}

// Compile validates the rules and compiles the match expression.
func (r Rules) Compile() (*Matcher, error) {
	m := &Matcher{rules: r}
	for _, h := range r.TitleHints {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m.hints = append(m.hints, h)
		}
	}

	if r.Match != "" {
		program, err := expr.Compile(r.Match, expr.Env(matchEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile window match %q: %w", r.Match, err)
		}
		m.program = program
	}
	return m, nil
}

// Match reports whether d is the application window: a normal-layer
// window above the minimum size whose owner or title carries a hint.
func (m *Matcher) Match(d Descriptor) bool {
	if d.Layer != 0 {
		return false
	}
	if d.Width <= m.rules.MinWidth || d.Height <= m.rules.MinHeight {
		return false
	}
	if !m.hinted(d) {
		return false
	}
	if m.program == nil {
		return true
	}

	result, err := expr.Run(m.program, matchEnv{
		ID:     d.ID,
		PID:    d.PID,
		Owner:  d.Owner,
		Title:  d.Title,
		Layer:  d.Layer,
		X:      d.X,
		Y:      d.Y,
		Width:  d.Width,
		Height: d.Height,
	})
	if err != nil {
		return false
	}
	ok, _ := result.(bool)
	return ok
}

func (m *Matcher) hinted(d Descriptor) bool {
	owner := strings.ToLower(d.Owner)
	title := strings.ToLower(d.Title)

	hint := strings.ToLower(m.rules.OwnerHint)
	if hint == "" && len(m.hints) == 0 {
		return true
	}
	if hint != "" && (strings.Contains(owner, hint) || strings.Contains(title, hint)) {
		return true
	}
	for _, h := range m.hints {
		if strings.Contains(title, h) {
			return true
		}
	}
	return false
}

// First returns the first descriptor matching m.
func (m *Matcher) First(ds []Descriptor) (Descriptor, bool) {
	for _, d := range ds {
		if m.Match(d) {
			return d, true
		}
	}
	return Descriptor{}, false
}
