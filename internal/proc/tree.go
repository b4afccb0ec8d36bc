package proc

import (
	"log/slog"

	"github.com/shirou/gopsutil/v3/process"
)

// IsRunning reports whether pid names a live process.
func IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := p.IsRunning()
	return err == nil && running
}

// ProcessName returns the executable name of pid, or "" when unknown.
func ProcessName(pid int) string {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return name
}

// descendants returns every transitive child of pid, parents first.
//
// The process table is read once and walked by parent pid, which works
// where pgrep is unavailable.
func descendants(pid int) []*process.Process {
	all, err := process.Processes()
	if err != nil {
		return nil
	}

	byParent := make(map[int32][]*process.Process)
	for _, p := range all {
		ppid, err := p.Ppid()
		if err != nil {
			continue
		}
		byParent[ppid] = append(byParent[ppid], p)
	}

	var out []*process.Process
	queue := []int32{int32(pid)}
	seen := map[int32]bool{int32(pid): true}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range byParent[parent] {
			if seen[child.Pid] {
				continue
			}
			seen[child.Pid] = true
			out = append(out, child)
			queue = append(queue, child.Pid)
		}
	}
	return out
}

// isZombie reports whether p has exited but not been reaped.
func isZombie(p *process.Process) bool {
	status, err := p.Status()
	if err != nil {
		return false
	}
	for _, s := range status {
		if s == process.Zombie {
			return true
		}
	}
	return false
}

// killAll SIGKILLs every process in ps that is still running.
func killAll(ps []*process.Process, logger *slog.Logger) {
	for _, p := range ps {
		running, err := p.IsRunning()
		if err != nil || !running {
			continue
		}
		logger.Debug("killing orphaned descendant", "child_pid", p.Pid)
		if err := p.Kill(); err != nil {
			logger.Debug("kill descendant failed", "child_pid", p.Pid, "error", err)
		}
	}
}
