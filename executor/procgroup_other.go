//go:build !unix

package executor

import (
	"fmt"
	"os/exec"
	"syscall"
)

// setNewProcessGroup is a no-op outside Unix: only the direct child is
// tracked, so a recipe that spawns grandchildren may leave them running
// after a timeout.
func setNewProcessGroup(cmd *exec.Cmd) {}

// terminateGroup is unavailable outside Unix; callers fall back to
// killing the direct child only.
func terminateGroup(pid int, sig syscall.Signal) error {
	return fmt.Errorf("process-group termination unsupported on this platform")
}
