// Package proc supervises the external processes a harness run owns.
//
// It covers three shapes of subprocess:
//
//   - Build: a bounded, blocking invocation whose exit code and the tail of
//     its output decide whether the run may continue.
//   - Child: a detached, long-lived process (the application under test or
//     a screen recorder) started in its own process group so that signals
//     reach every descendant.
//   - Teardown: graceful signal, bounded wait, then SIGKILL to the group and
//     a sweep of any descendant that escaped the group.
//
// Liveness and descendant discovery use gopsutil so that the checks do not
// depend on the process being our direct child.
package proc
