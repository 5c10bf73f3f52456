//go:build unix

package executor

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setNewProcessGroup configures cmd so its child starts its own process
// group, letting terminateGroup signal the whole tree (the recipe's
// shell plus anything it spawns) instead of only the direct child.
func setNewProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateGroup sends sig to the process group rooted at pid. Callers
// use it first with SIGTERM, then with SIGKILL after the grace period
// if the group has not exited.
func terminateGroup(pid int, sig syscall.Signal) error {
	return unix.Kill(-pid, sig)
}
