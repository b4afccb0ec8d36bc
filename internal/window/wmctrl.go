package window

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/uiharness/internal/proc"
)

// WmctrlLister lists X11 client windows with wmctrl.
//
// wmctrl has no notion of window layers; sticky windows (desktop -1, such
// as panels and docks) are reported on layer 1 so the default match rules
// skip them.
type WmctrlLister struct {
	// Path is the wmctrl executable. Empty means "wmctrl".
	Path string

	// Runner executes wmctrl. Nil means proc.Run.
	Runner proc.Runner

	// OwnerName resolves a pid to a process name. Nil uses proc.ProcessName.
	OwnerName func(pid int) string
}

// List implements Lister. ScopeOnScreen keeps windows on the current
// desktop and sticky windows.
func (l *WmctrlLister) List(ctx context.Context, scope Scope) ([]Descriptor, error) {
	out, err := l.run(ctx, "-lGp")
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	entries, err := parseWmctrl(out)
	if err != nil {
		return nil, err
	}

	current := -1
	if scope != ScopeAll {
		if desktops, err := l.run(ctx, "-d"); err == nil {
			current = currentDesktop(desktops)
		}
	}

	ownerName := l.OwnerName
	if ownerName == nil {
		ownerName = proc.ProcessName
	}

	result := make([]Descriptor, 0, len(entries))
	for _, e := range entries {
		if current >= 0 && e.desktop >= 0 && e.desktop != current {
			continue
		}
		d := e.Descriptor
		if d.PID > 0 {
			d.Owner = ownerName(d.PID)
		}
		result = append(result, d)
	}
	return result, nil
}

func (l *WmctrlLister) run(ctx context.Context, args ...string) ([]byte, error) {
	path := l.Path
	if path == "" {
		path = "wmctrl"
	}
	runner := l.Runner
	if runner == nil {
		runner = proc.Run
	}
	return runner(ctx, proc.Command{Path: path, Args: args})
}

type wmctrlEntry struct {
	Descriptor
	desktop int
}

// parseWmctrl parses `wmctrl -lGp` output:
//
//	0x03c00007  0 4242   10   40   1280 800  host Window title
func parseWmctrl(data []byte) ([]wmctrlEntry, error) {
	var out []wmctrlEntry
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 8 {
			return nil, fmt.Errorf("wmctrl line %d: expected at least 8 fields, got %d", line, len(fields))
		}

		id, err := strconv.ParseInt(fields[0], 0, 64)
		if err != nil {
			return nil, fmt.Errorf("wmctrl line %d: window id: %w", line, err)
		}
		nums := make([]int, 6)
		for i := range nums {
			n, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return nil, fmt.Errorf("wmctrl line %d: field %d: %w", line, i+2, err)
			}
			nums[i] = n
		}

		layer := 0
		if nums[0] < 0 {
			layer = 1
		}
		out = append(out, wmctrlEntry{
			Descriptor: Descriptor{
				ID:     int(id),
				PID:    nums[1],
				Title:  titleAfter(text, 8),
				Layer:  layer,
				X:      nums[2],
				Y:      nums[3],
				Width:  nums[4],
				Height: nums[5],
			},
			desktop: nums[0],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read wmctrl output: %w", err)
	}
	return out, nil
}

// titleAfter returns the remainder of line after skipping n fields,
// preserving internal spacing.
func titleAfter(line string, n int) string {
	rest := line
	for i := 0; i < n; i++ {
		rest = strings.TrimLeft(rest, " \t")
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			return ""
		}
		rest = rest[idx:]
	}
	return strings.TrimSpace(rest)
}

// currentDesktop finds the desktop marked '*' in `wmctrl -d` output.
func currentDesktop(data []byte) int {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && fields[1] == "*" {
			if n, err := strconv.Atoi(fields[0]); err == nil {
				return n
			}
		}
	}
	return -1
}
