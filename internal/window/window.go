// Package window queries the OS window registry and locates the window of
// the application under test.
package window

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Find when no window matched before the timeout.
var ErrNotFound = errors.New("window not found")

// Scope selects which windows a Lister enumerates.
type Scope string

const (
	// ScopeOnScreen lists on-screen windows only, excluding desktop elements.
	ScopeOnScreen Scope = "onscreen"

	// ScopeAll lists windows on every space, including off-screen ones.
	ScopeAll Scope = "all"
)

// ParseScope validates s. Empty means ScopeOnScreen.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(s)) {
	case "", ScopeOnScreen:
		return ScopeOnScreen, nil
	case ScopeAll:
		return ScopeAll, nil
	default:
		return "", fmt.Errorf("invalid window scope %q: must be 'onscreen' or 'all'", s)
	}
}

// Descriptor is one entry of the window registry. Coordinates are in
// screen points with the origin at the top-left of the main display.
type Descriptor struct {
	ID     int    `json:"id"`
	PID    int    `json:"pid"`
	Owner  string `json:"owner"`
	Title  string `json:"title"`
	Layer  int    `json:"layer"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// String renders d as a diagnostic line: owner | 'title' | layer=N | {X,Y,W,H}.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s | '%s' | layer=%d | {X:%d,Y:%d,W:%d,H:%d}",
		d.Owner, d.Title, d.Layer, d.X, d.Y, d.Width, d.Height)
}

// Lister enumerates the window registry.
type Lister interface {
	List(ctx context.Context, scope Scope) ([]Descriptor, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context, scope Scope) ([]Descriptor, error)

// List implements Lister.
func (f ListerFunc) List(ctx context.Context, scope Scope) ([]Descriptor, error) {
	return f(ctx, scope)
}
