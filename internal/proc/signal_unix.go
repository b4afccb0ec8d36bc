//go:build unix

package proc

import (
	"errors"
	"os/exec"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// configureGroup puts the process in a new process group so the whole
// tree can be signalled at once.
func configureGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup delivers sig to the process group led by pid.
// A group that no longer exists is not an error.
func signalGroup(pid int, sig syscall.Signal) error {
	err := unix.Kill(-pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

// groupMembers returns the live processes whose process group is pgid.
// Zombies are skipped: they hold no resources and may linger until init
// reaps them.
func groupMembers(pgid int) []*process.Process {
	if pgid <= 0 {
		return nil
	}
	all, err := process.Processes()
	if err != nil {
		return nil
	}
	var out []*process.Process
	for _, p := range all {
		g, err := unix.Getpgid(int(p.Pid))
		if err != nil || g != pgid {
			continue
		}
		if isZombie(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
