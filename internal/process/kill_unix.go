//go:build !windows

package process

import "syscall"

// KillTree kills a process and all its children by sending SIGKILL to the
// process group (negative PID). Chrome spawns renderer, GPU and utility
// helpers in its own group, so killing only the parent would orphan them.
// A non-positive pid is ignored.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; launcher.Kill() is the fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// Alive reports whether a process with the given pid still exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}
