//go:build !windows

// Package process terminates the headless Chrome process tree left behind by
// a browser launcher.
package process

import "syscall"

// KillGroup sends SIGKILL to the process group led by pid, taking renderer
// and GPU helper processes down with the browser.
func KillGroup(pid int) error {
	if pid <= 0 {
		return nil
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}
