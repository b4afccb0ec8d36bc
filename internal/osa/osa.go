// Package osa runs AppleScript and JavaScript for Automation through
// osascript, the macOS scripting bridge.
package osa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/uiharness/internal/proc"
)

// DefaultTimeout bounds a single osascript invocation.
const DefaultTimeout = 30 * time.Second

// Bridge invokes osascript.
type Bridge struct {
	// Path is the osascript executable. Empty means "osascript".
	Path string

	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration

	// Runner executes the command. Nil means proc.Run.
	Runner proc.Runner
}

// New returns a Bridge with defaults.
func New() *Bridge {
	return &Bridge{}
}

// AppleScript runs src as AppleScript and returns trimmed stdout.
func (b *Bridge) AppleScript(ctx context.Context, src string) (string, error) {
	return b.run(ctx, []string{"-e", src})
}

// JavaScript runs src as JavaScript for Automation and returns trimmed stdout.
func (b *Bridge) JavaScript(ctx context.Context, src string) (string, error) {
	return b.run(ctx, []string{"-l", "JavaScript", "-e", src})
}

// WithTimeout returns a copy of b bounded by d.
func (b *Bridge) WithTimeout(d time.Duration) *Bridge {
	c := *b
	c.Timeout = d
	return &c
}

func (b *Bridge) run(ctx context.Context, args []string) (string, error) {
	path := b.Path
	if path == "" {
		path = "osascript"
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runner := b.Runner
	if runner == nil {
		runner = proc.Run
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := runner(ctx, proc.Command{Path: path, Args: args})
	if err != nil {
		return "", fmt.Errorf("osascript: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Quote renders s as an AppleScript string literal.
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
