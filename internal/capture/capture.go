// Package capture produces the visual artifacts of a run: per-step
// screenshots, a live screen recording, and a video stitched from the
// screenshots.
package capture

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrToolUnavailable is returned when a capture tool is not installed.
// Callers treat it as "skip this artifact", never as a run failure.
var ErrToolUnavailable = errors.New("tool unavailable")

// ErrNotSaved is returned when a capture tool ran but wrote no file.
var ErrNotSaved = errors.New("screenshot not saved")

// LookPathFunc resolves an executable name. exec.LookPath is the default.
type LookPathFunc func(file string) (string, error)

func resolve(lookPath LookPathFunc, name string) (string, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrToolUnavailable, name)
	}
	return path, nil
}
