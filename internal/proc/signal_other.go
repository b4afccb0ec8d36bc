//go:build !unix

package proc

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

func configureGroup(cmd *exec.Cmd) {}

// signalGroup has no group semantics here; any signal kills the process.
func signalGroup(pid int, sig syscall.Signal) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// groupMembers is empty without process groups; Stop falls back to the
// descendant sweep.
func groupMembers(pgid int) []*process.Process {
	return nil
}
