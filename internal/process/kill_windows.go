//go:build windows

// Package process terminates the headless Chrome process tree left behind by
// a browser launcher.
package process

import (
	"os/exec"
	"strconv"
)

// KillGroup force-kills pid and its children with taskkill.
func KillGroup(pid int) error {
	if pid <= 0 {
		return nil
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is numeric
}
