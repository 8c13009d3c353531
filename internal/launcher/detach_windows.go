//go:build windows

package launcher

import "os/exec"

// detach is a no-op on Windows; process groups there would need job objects,
// and the registry's stop path already falls back to a forceful terminate.
func detach(cmd *exec.Cmd) {}
