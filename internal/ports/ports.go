// Package ports finds free loopback TCP ports for interactive runner
// processes by probing candidate ports in ascending order.
package ports

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"locustmcp/internal/protocol"
)

// Allocate scans ascending from start and returns the first port that accepts
// a loopback bind with address reuse enabled. The probe listener is closed
// before returning, so the port is only known free at probe time; the spawned
// runner binds it itself. That window between probe and bind is accepted.
//
// Returns a resource_exhausted error after maxTries consecutive failed probes.
func Allocate(start, maxTries int) (int, error) {
	if start <= 0 || start > 65535 {
		return 0, protocol.InvalidInputf("port scan start %d out of range", start)
	}
	if maxTries <= 0 {
		return 0, protocol.InvalidInputf("port scan window must be positive, got %d", maxTries)
	}

	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
			})
		},
	}

	for port := start; port < start+maxTries && port <= 65535; port++ {
		ln, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port, nil
	}

	return 0, protocol.ResourceExhaustedf("no free port in [%d, %d)", start, start+maxTries)
}
