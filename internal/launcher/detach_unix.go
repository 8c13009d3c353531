//go:build unix

package launcher

import (
	"os/exec"
	"syscall"
)

// detach puts the child in its own process group so interrupt signals aimed
// at a job never propagate to the orchestrator, and vice versa.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
