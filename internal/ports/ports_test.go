package ports

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locustmcp/internal/protocol"
)

func TestAllocate_ReturnsBindablePort(t *testing.T) {
	port, err := Allocate(28000, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 28000)
	assert.Less(t, port, 28100)

	// The returned port must still be bindable by this process: no
	// double-allocation within one run.
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	ln.Close()
}

func TestAllocate_SkipsOccupiedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	occupied := ln.Addr().(*net.TCPAddr).Port

	port, err := Allocate(occupied, 50)
	require.NoError(t, err)
	assert.NotEqual(t, occupied, port)
	assert.Greater(t, port, occupied)
}

func TestAllocate_ExhaustedWindow(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	occupied := ln.Addr().(*net.TCPAddr).Port

	_, err = Allocate(occupied, 1)
	require.Error(t, err)
	assert.Equal(t, protocol.CodeResourceExhausted, protocol.CodeOf(err))
}

func TestAllocate_RejectsBadArguments(t *testing.T) {
	_, err := Allocate(0, 10)
	assert.Equal(t, protocol.CodeInvalidInput, protocol.CodeOf(err))

	_, err = Allocate(70000, 10)
	assert.Equal(t, protocol.CodeInvalidInput, protocol.CodeOf(err))

	_, err = Allocate(28000, 0)
	assert.Equal(t, protocol.CodeInvalidInput, protocol.CodeOf(err))
}
