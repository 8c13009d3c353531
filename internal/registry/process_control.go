package registry

import (
	"os"
	"runtime"
	"syscall"
)

// osProcessControl implements Prober and Signaller against the host OS.
//
// Liveness uses signal 0 on Unix: delivery is a no-op but fails with ESRCH
// when the PID is gone. Windows has no equivalent, so there FindProcess
// failing is the only (weaker) signal available.
type osProcessControl struct{}

func (osProcessControl) Probe(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func (osProcessControl) Interrupt(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(os.Interrupt)
}

func (osProcessControl) Kill(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
