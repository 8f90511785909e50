//go:build !windows

// Package process tears down a headless browser together with its helper
// processes (renderer, GPU, zygote).
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the whole process group led by pid.
// Non-positive pids are ignored: -0 and -(-n) would hit unrelated groups.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Errors are ignored; launcher.Kill() is the fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
