package window

import (
	"fmt"
	"runtime"

	"github.com/roach88/uiharness/internal/osa"
	"github.com/roach88/uiharness/internal/proc"
)

// NewLister returns the registry lister for the running OS.
func NewLister() (Lister, error) {
	return ListerFor(runtime.GOOS, osa.New(), proc.Run)
}

// ListerFor returns the lister for goos. macOS goes through the scripting
// bridge; Linux reads the X11 registry with wmctrl.
func ListerFor(goos string, bridge *osa.Bridge, runner proc.Runner) (Lister, error) {
	switch goos {
	case "darwin":
		return &QuartzLister{Bridge: bridge}, nil
	case "linux":
		return &WmctrlLister{Runner: runner}, nil
	default:
		return nil, fmt.Errorf("window listing is not supported on %s", goos)
	}
}
