//go:build unix

package executor

import (
	"os/exec"
	"syscall"
)

// isolateProcessGroup starts the child in its own process group so a timeout kills
// everything it spawned, not just the direct child.
func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
